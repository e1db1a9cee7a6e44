package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/js-lib-com/wood-sub003/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so that errors reported while kong is still
// parsing already use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) start(ctx context.Context) func() {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() {}
}

// scan applies the logger flags found in args before kong parses them, so
// that the logger is configured regardless of flag position. Boolean flags
// such as --log-pretty never reach an encoding.TextUnmarshaler.
func (f *logConfig) scan(args []string) {
	valued := map[string]func(string){
		"level":  func(v string) { _ = f.Level.UnmarshalText([]byte(v)) },
		"format": func(v string) { _ = f.Format.UnmarshalText([]byte(v)) },
	}

	boolean := map[string]func(bool){
		"pretty": func(v bool) { f.Pretty = v; log.Config(log.WithPretty(v)) },
		"caller": func(v bool) { f.Caller = v; log.Config(log.WithCaller(v)) },
	}

	for i := 0; i < len(args); i++ {
		arg, negated := args[i], false

		name, ok := strings.CutPrefix(arg, "--log-")
		if !ok {
			if name, ok = strings.CutPrefix(arg, "--no-log-"); !ok {
				continue
			}

			negated = true
		}

		name, value, assigned := strings.Cut(name, "=")

		if set, ok := valued[name]; ok && !negated {
			// Consume the next argument unless assigned with "=".
			if !assigned && i+1 < len(args) && args[i+1] != "" && args[i+1][0] != '-' {
				value = args[i+1]
				i++
			}

			set(value)

			continue
		}

		if set, ok := boolean[name]; ok {
			v := true

			if assigned {
				parsed, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				v = parsed
			}

			set(v != negated)
		}
	}
}
