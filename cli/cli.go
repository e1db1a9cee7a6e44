package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/js-lib-com/wood-sub003/cli/cmd"
	"github.com/js-lib-com/wood-sub003/pkg"
)

// CLI is the top-level command-line interface for wood.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit"                                         short:"V"`
	Dir     string           `help:"Start the search for wood.toml here" default:"." placeholder:"DIR" short:"C" type:"existingdir"`

	Resolve cmd.Resolve `cmd:"" default:"withargs" help:"Resolve the placeholders of source files"`
	Eval    cmd.Eval    `cmd:""                    help:"Evaluate expressions"`
	Vars    cmd.Vars    `cmd:""                    help:"Print the variables visible from a directory"`
	Watch   cmd.Watch   `cmd:""                    help:"Reload variables and resolve files on change"`
	Repl    cmd.Repl    `cmd:""                    help:"Interactive shell"`
	Init    cmd.Init    `cmd:""                    help:"Write a default wood.toml or CLI configuration"`
}

// Run executes the wood CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version,
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(strings.TrimSuffix(pkg.EnvPrefix, "_")),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(loadYAML, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithProjectDir(ctx, cli.Dir)

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	stop, err := cli.Pprof.start(ctx)
	if err != nil {
		return err
	}
	defer stop()

	return ktx.Run()
}
