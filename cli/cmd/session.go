package cmd

import (
	"context"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/js-lib-com/wood-sub003/eval"
	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/metrics"
	"github.com/js-lib-com/wood-sub003/project"
	"github.com/js-lib-com/wood-sub003/ref"
	"github.com/js-lib-com/wood-sub003/resolve"
	"github.com/js-lib-com/wood-sub003/vars"
)

// stdinOrigin is the origin of text read from stdin. It belongs to the
// project root directory.
const stdinOrigin = "stdin"

// Session is an open project: its configuration, the variables loaded from
// its definition files and the operators of its expressions.
type Session struct {
	config    *project.Config
	store     *vars.Store
	evaluator *eval.Evaluator
	logger    log.Logger
	params    map[string]string
	root      string // config root with symlinks resolved
}

// OpenSession loads the project containing dir.
func OpenSession(ctx context.Context, dir string, logger log.Logger) (*Session, error) {
	config, err := project.Find(dir)
	if err != nil {
		return nil, err
	}

	registry, err := config.Registry()
	if err != nil {
		return nil, err
	}

	s := &Session{
		config:    config,
		evaluator: eval.New(eval.WithRegistry(metrics.Instrument(registry)), eval.WithLogger(logger)),
		logger:    logger,
		root:      config.Root(),
	}

	if root, err := filepath.EvalSymlinks(s.root); err == nil {
		s.root = root
	}

	snap, err := vars.Build(ctx, config.Layout(logger))
	if err != nil {
		return nil, err
	}

	metrics.ObserveReload(true, snap.Sources(), nil)

	s.store = vars.NewStore(snap, s.options()...)

	logger.DebugContext(ctx, "project open",
		slog.String("name", config.Name),
		slog.String("root", s.root),
		slog.String("locale", config.Locale),
		slog.Int("sources", snap.Sources()),
	)

	return s, nil
}

func (s *Session) options() []resolve.Option {
	return []resolve.Option{
		resolve.WithEvaluator(s.evaluator),
		resolve.WithStrict(s.config.Strict),
		resolve.WithLogger(s.logger),
	}
}

// SetParams sets the values answering "@param/NAME" references.
func (s *Session) SetParams(params map[string]string) { s.params = params }

// Config returns the project configuration.
func (s *Session) Config() *project.Config { return s.config }

// Snapshot returns the current variables.
func (s *Session) Snapshot() *vars.Snapshot { return s.store.Snapshot() }

// Root returns the project directory.
func (s *Session) Root() string { return s.root }

// Locale returns the project default locale.
func (s *Session) Locale() string { return s.config.Locale }

func (s *Session) locale(l string) string {
	if l == "" {
		return s.config.Locale
	}

	return l
}

// Handler returns the handler for one resolution in locale: variables from
// the store, then parameters, project fields and media files.
func (s *Session) Handler(locale string) resolve.Handler {
	locale = s.locale(locale)

	return metrics.Handler(s.store.Lookup(locale, s.config.Handler(locale, s.params)))
}

// Resolve replaces the placeholders of text as found in origin.
func (s *Session) Resolve(text, origin, locale string) (string, error) {
	start := time.Now()
	out, err := resolve.String(text, origin, s.Handler(locale), s.options()...)
	metrics.ObserveResolve(start, err)

	return out, err
}

// Copy resolves src as found in origin into w.
func (s *Session) Copy(w io.Writer, src io.Reader, origin, locale string) (int64, error) {
	start := time.Now()
	n, err := resolve.Copy(w, src, origin, s.Handler(locale), s.options()...)
	metrics.ObserveResolve(start, err)

	return n, err
}

// Eval evaluates one expression without resolving references.
func (s *Session) Eval(expr string) (string, error) {
	start := time.Now()
	out, err := s.evaluator.Eval(expr)
	metrics.ObserveResolve(start, err)

	return out, err
}

// Raw returns the unresolved value of a variable reference as seen from
// origin.
func (s *Session) Raw(reference, origin, locale string) (string, bool) {
	r := ref.Parse(reference, origin)
	if !r.IsVariable() {
		return "", false
	}

	return s.store.Snapshot().Value(r.Key(), s.locale(locale), path.Dir(origin))
}

// References lists every defined variable in placeholder syntax.
func (s *Session) References() []string {
	keys := s.store.Snapshot().Keys()
	out := make([]string, 0, len(keys))

	for _, k := range keys {
		out = append(out, k.String())
	}

	return out
}

// Opcodes lists the expression opcodes.
func (s *Session) Opcodes() []string { return s.evaluator.Registry().Opcodes() }

// Reload rebuilds the variables from disk. A failed reload keeps the
// current ones.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	changed, err := s.store.Reload(ctx, s.config.Layout(s.logger))
	metrics.ObserveReload(changed, s.store.Snapshot().Sources(), err)

	return changed, err
}

// Origin returns the slash separated path of file relative to the project
// root.
func (s *Session) Origin(file string) (string, error) {
	if file == stdinSource {
		return stdinOrigin, nil
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return "", ErrOutside.Wrap(err).With(slog.String("file", file))
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutside.With(slog.String("file", file), slog.String("root", s.root))
	}

	return filepath.ToSlash(rel), nil
}

// Dir cleans dir, a directory relative to the project root, into the form
// used by the variable scopes.
func (s *Session) Dir(dir string) (string, error) {
	rel := path.Clean(filepath.ToSlash(dir))
	if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ErrOutside.With(slog.String("dir", dir), slog.String("root", s.root))
	}

	return rel, nil
}
