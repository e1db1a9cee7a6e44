package vars

import (
	"path/filepath"
	"regexp"
	"strings"
)

// localePattern matches a language code with an optional region, as in "de"
// or "en-US".
var localePattern = regexp.MustCompile(`^([a-z]{2})(?:[-_]([A-Z]{2}))?$`)

// ParseLocale validates s as a locale tag and returns it in canonical
// "ll" or "ll-RR" form.
func ParseLocale(s string) (string, bool) {
	m := localePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	if m[2] == "" {
		return m[1], true
	}

	return m[1] + "-" + m[2], true
}

// FileVariant splits the base name of path into its stem and locale variant.
// "strings_de.xml" has stem "strings" and locale "de"; "strings.xml" has no
// locale.
func FileVariant(path string) (stem, locale string) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	i := strings.LastIndexByte(base, '_')
	if i <= 0 {
		return base, ""
	}

	if l, ok := ParseLocale(base[i+1:]); ok {
		return base[:i], l
	}

	return base, ""
}

// IsDefinition reports whether path names a variables definition source: an
// XML or YAML file whose stem differs from its parent directory name. A file
// named after its directory is the component descriptor.
func IsDefinition(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".yaml", ".yml":
	default:
		return false
	}

	stem, _ := FileVariant(path)

	return stem != filepath.Base(filepath.Dir(path))
}
