package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// ComponentKey is the attribute naming the package that emitted a record.
const ComponentKey = "component"

// Logger provides a concurrency-safe simplified logging interface.
//
// The zero value discards every message, so packages can hold a Logger
// without checking whether one was configured.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a new [Logger] that writes to the specified writer.
// The default configuration is [DefaultFormat], [DefaultLevel],
// [DefaultTimeLayout], and caller info disabled.
//
// Optional configuration can be applied using functional options like
// [WithFormat], [WithLevel], [WithTimeLayout], and [WithCaller].
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// Wrap returns a new [Logger] using the current configuration as the base,
// with opts overriding specific values.
func (l Logger) Wrap(opts ...Option) Logger {
	var cfg config

	// The clone owns a fresh mutex, so opts run while nothing else can see it.
	l.read(func() { cfg = l.clone(opts...) })

	return Logger{
		config: cfg,
		Logger: slog.New(cfg.handler()),
	}
}

// With returns a new [Logger] that includes the given attributes in each log
// message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	var cfg config

	l.read(func() { cfg = l.clone() })

	return Logger{
		config: cfg,
		Logger: slog.New(l.Logger.Handler().WithAttrs(attrs)),
	}
}

// Component returns a [Logger] tagging each message with the emitting
// component, such as "resolve" or "watch".
func (l Logger) Component(name string) Logger {
	return l.With(slog.String(ComponentKey, name))
}

// Level returns the current minimum log level.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	level := DefaultLevel

	l.read(func() { level = l.level })

	return level
}

// Format returns the current log output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	format := DefaultFormat

	l.read(func() { format = l.format })

	return format
}

// Tracing reports whether messages at [LevelTrace] are written. Callers on
// hot paths check it before building trace attributes.
func (l Logger) Tracing() bool {
	return l.Logger != nil && l.Enabled(DefaultContextProvider(), slog.Level(LevelTrace))
}

// read calls fn holding the read lock, if l has a mutex.
func (l Logger) read(fn func()) {
	if l.mutex != nil {
		l.mutex.RLock()
		defer l.mutex.RUnlock()
	}

	fn()
}

// TraceContext logs a message at Trace level with the provided context.
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelTrace, msg, attrs)
}

// Trace logs a message at Trace level.
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs a message at Debug level with the provided context.
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelDebug, msg, attrs)
}

// Debug logs a message at Debug level.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs a message at Info level with the provided context.
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelInfo, msg, attrs)
}

// Info logs a message at Info level.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs a message at Warn level with the provided context.
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelWarn, msg, attrs)
}

// Warn logs a message at Warn level.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs a message at Error level with the provided context.
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelError, msg, attrs)
}

// Error logs a message at Error level.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), LevelError, msg, attrs)
}

// callerSkip is the number of frames between runtime.Callers and the code
// that logged: runtime.Callers, log and the level method or package-level
// function.
const callerSkip = 3

// log writes a record at level. The record carries the PC of the code that
// logged, so caller information points at it rather than at this package.
func (l Logger) log(ctx context.Context, level Level, msg string, attrs []slog.Attr) {
	if l.Logger == nil {
		return
	}

	var enabled bool

	l.read(func() { enabled = l.Enabled(ctx, slog.Level(level)) })

	if !enabled {
		return
	}

	var pcs [1]uintptr

	runtime.Callers(callerSkip, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)

	l.read(func() { _ = l.Handler().Handle(ctx, r) })
}
