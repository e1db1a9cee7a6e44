package profile

import (
	"log/slog"
	"slices"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/pkg"
)

// ErrMode is returned by [Start] for a mode missing from [Modes].
var ErrMode = pkg.NewError("unsupported profile mode")

// Profiler is a running profile. Stop flushes it to disk and is safe to call
// more than once.
type Profiler interface{ Stop() }

type settings struct {
	mode   string
	dir    string
	quiet  bool
	logger log.Logger
}

// Option configures [Start].
type Option func(*settings)

// WithMode selects the profile kind, one of [Modes].
func WithMode(mode string) Option { return func(s *settings) { s.mode = mode } }

// WithDir sets the output directory of the profile.
func WithDir(dir string) Option { return func(s *settings) { s.dir = dir } }

// WithQuiet suppresses the messages printed by the profiler itself.
func WithQuiet(quiet bool) Option { return func(s *settings) { s.quiet = quiet } }

// WithLogger logs start and stop through logger.
func WithLogger(logger log.Logger) Option { return func(s *settings) { s.logger = logger } }

// Start starts profiling. Without a mode it returns a profiler whose Stop
// does nothing.
func Start(opts ...Option) (Profiler, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if s.mode == "" {
		return nop{}, nil
	}

	if !slices.Contains(Modes(), s.mode) {
		return nil, ErrMode.With(slog.String("mode", s.mode), slog.Bool("enabled", Enabled))
	}

	s.logger.Debug("pprof start", slog.String("mode", s.mode), slog.String("dir", s.dir))

	return &stopper{settings: s, p: start(s)}, nil
}

type stopper struct {
	settings

	p       Profiler
	stopped bool
}

func (s *stopper) Stop() {
	if s.stopped {
		return
	}

	s.stopped = true
	s.p.Stop()
	s.logger.Debug("pprof stop", slog.String("mode", s.mode), slog.String("dir", s.dir))
}

type nop struct{}

func (nop) Stop() {}
