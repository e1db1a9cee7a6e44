package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/profile"
	"github.com/js-lib-com/wood-sub003/project"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the CLI configuration file.
const defaultConfigIndent = 2

// Init writes a default wood.toml in the project directory, or with --config
// the CLI configuration file holding the current flag values.
type Init struct {
	Force  bool `help:"Overwrite an existing file"                              short:"f"`
	Config bool `help:"Write the CLI configuration file instead of wood.toml"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if i.Config {
		return i.writeCLIConfig(ctx)
	}

	return i.writeProject(ctx)
}

func (i *Init) create(path string) (*os.File, error) {
	_, err := os.Stat(path)
	if err == nil && !i.Force {
		return nil, ErrWriteConfig.
			With(slog.String("file", path)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	return file, nil
}

func (i *Init) writeProject(ctx context.Context) error {
	dir, err := filepath.Abs(projectDirFrom(ctx))
	if err != nil {
		return ErrWriteConfig.With(slog.String("dir", projectDirFrom(ctx))).Wrap(err)
	}

	path := filepath.Join(dir, project.FileName)

	file, err := i.create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := project.Default(dir).Encode(file); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized project", slog.String("path", path))

	return nil
}

func (i *Init) writeCLIConfig(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	data, err := yaml.MarshalContext(ctx, i.flagValues(ktx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	file, err := i.create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file", slog.String("path", path))

	return nil
}

// flagValues collects the set flags in declaration order. Keys use
// underscores in place of hyphens.
func (i *Init) flagValues(ktx *kong.Context) yaml.MapSlice {
	var out yaml.MapSlice

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := flagValue(ktx.FlagValue(flag)); v != nil {
			out = append(out, yaml.MapItem{Key: strings.ReplaceAll(flag.Name, "-", "_"), Value: v})
		}
	}

	return out
}

// flagValue returns the configuration value of a flag, or nil if unset.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case map[string]string:
		if len(v) == 0 {
			return nil
		}

		return v

	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v

	case interface{ String() string }:
		if s := v.String(); s != "" {
			return s
		}

		return nil

	default:
		return v
	}
}
