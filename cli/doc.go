// Package cli contains the command line interface for wood.
//
// # Usage
//
//	wood [flags] <command> [args]
//
// Without a command, the arguments are source files to resolve:
//
//	wood page/index.htm > index.htm
//	wood -C site --locale ro resolve page/index.htm --param user=ana
//	wood eval 'add 1px 2px'
//	wood vars page --format yaml
//	wood watch page/index.htm --output build --listen :9090
//	wood repl
//	wood init
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.yaml.json in the user
// configuration directory (for example ~/.config/wood). The YAML file maps
// flag names to values, with underscores or hyphens:
//
//	log_level: debug
//	log_format: json
//	locale: ro
//
// "wood init --config" writes the current flag values to that file. Every
// flag can also be set from an environment variable named after it with
// the WOOD_ prefix, as in WOOD_LOG_LEVEL.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o wood .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/wood/pprof)
package cli
