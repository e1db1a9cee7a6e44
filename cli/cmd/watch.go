package cmd

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/metrics"
	"github.com/js-lib-com/wood-sub003/project"
	"github.com/js-lib-com/wood-sub003/vars"
	"github.com/js-lib-com/wood-sub003/watch"
)

// Watch reloads the variables whenever a definition file changes. With
// --output, the given files are resolved again after every change.
type Watch struct {
	Files  []string          `arg:"" help:"Source files to resolve on change"                   name:"file" optional:"" type:"existingfile"`
	Locale string            `       help:"Locale of the resolved text (project default)"                                          short:"l"`
	Param  map[string]string `       help:"Value answering @param/NAME, as NAME=VALUE"                                             short:"p"`
	Output string            `       help:"Directory receiving the resolved files"                                                 short:"o" type:"path"`
	Listen string            `       help:"Serve metrics on this address (wood.toml watch.listen)" placeholder:"ADDR"              short:"L"`
}

// Run executes the watch command. It returns when ctx is done.
func (c *Watch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	s, err := OpenSession(ctx, projectDirFrom(ctx), logger)
	if err != nil {
		return err
	}

	s.SetParams(c.Param)

	build := Resolve{Files: c.Files, Locale: c.Locale, Output: c.Output}

	targets := make(map[string]bool, len(c.Files))
	for _, f := range c.Files {
		origin, err := s.Origin(f)
		if err != nil {
			return err
		}

		targets[origin] = true
	}

	if len(c.Files) > 0 && c.Output != "" {
		if err := build.run(ctx, s); err != nil {
			return err
		}
	}

	w, err := c.watcher(s, targets, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	listen := c.Listen
	if listen == "" {
		listen = s.Config().Watch.Listen
	}

	logger.InfoContext(ctx, "watching",
		slog.String("root", s.Root()),
		slog.Int("dirs", len(w.Watched())),
		slog.String("listen", listen),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(ctx, func(ctx context.Context, paths []string) error {
			return c.onChange(ctx, s, &build, targets, paths)
		})
	})

	if listen != "" {
		g.Go(func() error { return metrics.Serve(ctx, listen, logger) })
	}

	return g.Wait()
}

// watcher watches the project and its extra search directories for
// definition files and the files to resolve.
func (c *Watch) watcher(s *Session, targets map[string]bool, logger log.Logger) (*watch.Watcher, error) {
	cfg := s.Config()

	filter := func(rel string) bool {
		if path.IsAbs(rel) {
			return vars.IsDefinition(rel)
		}

		if rel == project.FileName || targets[rel] {
			return true
		}

		return cfg.Match(rel) && vars.IsDefinition(rel)
	}

	w, err := watch.New(s.Root(),
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithRate(cfg.Watch.Rate, cfg.Watch.Burst),
		watch.WithExclude(cfg.Source.Exclude...),
		watch.WithFilter(filter),
		watch.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	dirs := append([]string{s.Root()}, cfg.SearchPath(os.Getenv(project.EnvPath))...)
	if err := w.Add(dirs...); err != nil {
		_ = w.Close()

		return nil, err
	}

	return w, nil
}

func (c *Watch) onChange(
	ctx context.Context,
	s *Session,
	build *Resolve,
	targets map[string]bool,
	paths []string,
) error {
	if slices.ContainsFunc(paths, func(p string) bool {
		return filepath.Base(p) == project.FileName
	}) {
		log.WarnContext(ctx, "project configuration changed, restart to apply",
			slog.String("file", project.FileName),
		)
	}

	changed, err := s.Reload(ctx)
	if err != nil {
		return err
	}

	touched := slices.ContainsFunc(paths, func(p string) bool {
		origin, err := s.Origin(p)

		return err == nil && targets[origin]
	})

	log.DebugContext(ctx, "change",
		slog.String("files", strings.Join(paths, ",")),
		slog.Bool("changed", changed),
		slog.Bool("touched", touched),
	)

	if build.Output == "" || len(build.Files) == 0 || (!changed && !touched) {
		return nil
	}

	return build.run(ctx, s)
}
