// Package log is the structured logger of wood, a thin concurrency-safe
// layer over [log/slog].
//
// A [Logger] is configured once with functional options and then passed by
// value to the packages that log. The zero Logger discards everything, which
// is what the core packages use unless a caller hands them one:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON))
//
//	r := resolve.NewReader(src, "page/index.htm", handler,
//		resolve.WithLogger(logger))
//
// Attributes are always [slog.Attr] values:
//
//	logger.Info("reload", slog.Int("sources", 12), slog.Bool("changed", true))
//
// [Logger.Component] tags every record with the package that emitted it, and
// [Logger.Tracing] lets hot paths such as the resolver skip building trace
// attributes.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is rendered as "TRACE". It logs
// every resolved reference and evaluated expression. [ParseLevel] accepts
// the level names of [Levels] plus offsets such as "info+2".
//
// # Formats
//
// [FormatText] (the default) writes key=value lines, colorized by
// [WithPretty]. [FormatJSON] writes one JSON object per line.
//
// # Timestamps
//
// [WithTimeLayout] accepts any layout of the [time] package by name
// ("RFC3339", "kitchen", "ms") or verbatim. An empty layout or "none" omits
// the timestamp.
//
// # Package Logger
//
// The package-level functions ([Info], [DebugContext], ...) write through
// [Default], which the CLI reconfigures from its --log-* flags with
// [Config].
package log
