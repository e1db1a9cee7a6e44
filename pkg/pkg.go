//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// version is the raw content of the embedded VERSION file.
//
//go:embed VERSION
var version string

// Version is the semantic version of the wood module embedded at build time.
// It is printed by the CLI when users pass the --version flag.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "wood"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Resource reference resolver and expression evaluator"
	// EnvPrefix prefixes every environment variable read by the tool.
	EnvPrefix = "WOOD_"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"js-lib-com", "contact@js-lib.com"},
}
