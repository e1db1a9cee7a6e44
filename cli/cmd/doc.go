// Package cmd implements the wood subcommands: resolve, eval, vars, watch,
// repl and init. Every command opens a [Session] on the project found by
// walking up from the working directory to the nearest wood.toml.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the CLI configuration file.
	ConfigIdentifier = "config"
)
