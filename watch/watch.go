package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"golang.org/x/time/rate"

	"github.com/js-lib-com/wood-sub003/log"
)

// Defaults for a [Watcher] built without options.
const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultRate     = 2.0
	DefaultBurst    = 1
)

// ChangeFunc receives a batch of changed files, sorted. An error is logged
// and the watcher keeps running.
type ChangeFunc func(ctx context.Context, paths []string) error

// Option configures a [Watcher].
type Option func(*Watcher) error

// WithDebounce sets the quiet interval that ends a batch.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d > 0 {
			w.debounce = d
		}

		return nil
	}
}

// WithRate limits change callbacks to r per second with the given burst.
func WithRate(r float64, burst int) Option {
	return func(w *Watcher) error {
		if r > 0 && burst > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}

		return nil
	}
}

// WithExclude ignores files and directories whose slash separated path
// relative to the root matches one of the glob patterns.
func WithExclude(patterns ...string) Option {
	return func(w *Watcher) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return ErrPattern.Wrap(err).With(slog.String("pattern", p))
			}

			w.exclude = append(w.exclude, g)
		}

		return nil
	}
}

// WithFilter ignores files for which keep returns false. It receives the
// slash separated path relative to the root.
func WithFilter(keep func(rel string) bool) Option {
	return func(w *Watcher) error {
		w.filter = keep

		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) error {
		w.logger = logger.Component("watch")

		return nil
	}
}

// Watcher collects file system changes into debounced batches.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	debounce time.Duration
	limiter  *rate.Limiter
	exclude  []glob.Glob
	filter   func(string) bool
	logger   log.Logger
	pending  map[string]struct{}
}

// New returns a watcher for root. Paths passed to filters and exclude
// patterns are relative to root.
func New(root string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRate), DefaultBurst),
		pending:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ErrWatch.Wrap(err)
	}

	w.fs = fsw

	return w, nil
}

// Add watches dirs and every directory below them. Missing directories are
// ignored.
func (w *Watcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		if err := w.addTree(dir, false); err != nil {
			return err
		}
	}

	return nil
}

// Watched returns the watched directories.
func (w *Watcher) Watched() []string {
	list := w.fs.WatchList()
	slices.Sort(list)

	return list
}

// Close releases the underlying watches. A running [Watcher.Run] returns.
func (w *Watcher) Close() error {
	if err := w.fs.Close(); err != nil {
		return ErrWatch.Wrap(err)
	}

	return nil
}

// Run dispatches batches to onChange until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}

			if w.handle(ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}

			w.logger.WarnContext(ctx, "watch", slog.Any("error", err))
		case <-timer.C:
			paths := w.drain()
			if len(paths) == 0 {
				continue
			}

			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}

			w.logger.DebugContext(ctx, "changed", slog.Int("files", len(paths)))

			if err := onChange(ctx, paths); err != nil {
				w.logger.ErrorContext(ctx, "change", slog.Any("error", err))
			}
		}
	}
}

// handle records ev and reports whether it extended the pending batch.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addTree(ev.Name, true); err != nil {
				w.logger.Warn("watch new directory",
					slog.String("dir", ev.Name),
					slog.Any("error", err),
				)
			}

			return len(w.pending) > 0
		}
	}

	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	if !w.keep(ev.Name, false) {
		return false
	}

	w.pending[ev.Name] = struct{}{}

	return true
}

func (w *Watcher) drain() []string {
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}

	clear(w.pending)
	slices.Sort(paths)

	return paths
}

// addTree watches the directories below dir. With enqueue set, the files
// found are added to the pending batch, since their create events happened
// before the watch existed.
func (w *Watcher) addTree(dir string, enqueue bool) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			if enqueue && w.keep(p, false) {
				w.pending[p] = struct{}{}
			}

			return nil
		}

		if !w.keep(p, true) {
			return filepath.SkipDir
		}

		return w.fs.Add(p)
	})
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return ErrWatch.Wrap(err).With(slog.String("dir", dir))
	}

	return nil
}

func (w *Watcher) keep(p string, dir bool) bool {
	if strings.HasPrefix(filepath.Base(p), ".") && filepath.Clean(p) != w.root {
		return false
	}

	rel := w.rel(p)

	if slices.ContainsFunc(w.exclude, func(g glob.Glob) bool { return g.Match(rel) }) {
		return false
	}

	return dir || w.filter == nil || w.filter(rel)
}

func (w *Watcher) rel(p string) string {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(p)
	}

	return filepath.ToSlash(rel)
}
