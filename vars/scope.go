package vars

import (
	"maps"
	"slices"

	"github.com/js-lib-com/wood-sub003/ref"
)

// DefaultLocale is the locale of definitions loaded from files without a
// locale variant.
const DefaultLocale = ""

// Scope holds the variables defined in one directory, keyed by reference
// key and locale.
type Scope struct {
	Dir    string
	values map[ref.Key]map[string]string
}

// NewScope returns an empty scope for dir.
func NewScope(dir string) *Scope {
	return &Scope{Dir: dir, values: make(map[ref.Key]map[string]string)}
}

// Set defines the value of key for locale, replacing any earlier value.
func (s *Scope) Set(key ref.Key, locale, value string) {
	m, ok := s.values[key]
	if !ok {
		m = make(map[string]string, 1)
		s.values[key] = m
	}

	m[locale] = value
}

// Add defines every value in doc.
func (s *Scope) Add(doc *Document) {
	for name, value := range doc.Values {
		s.Set(ref.Key{Category: doc.Category, Name: name}, doc.Locale, value)
	}
}

// Get returns the value of key for locale, or for the default locale when
// locale has none. An empty value is reported as missing.
func (s *Scope) Get(key ref.Key, locale string) (string, bool) {
	if s == nil {
		return "", false
	}

	m := s.values[key]

	v := m[locale]
	if v == "" && locale != DefaultLocale {
		v = m[DefaultLocale]
	}

	return v, v != ""
}

// Len returns the number of keys defined in s.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}

	return len(s.values)
}

// Keys returns the keys defined in s in category then name order.
func (s *Scope) Keys() []ref.Key {
	if s == nil {
		return nil
	}

	return slices.SortedFunc(maps.Keys(s.values), compareKeys)
}

// Locales returns the locales that have at least one value in s, sorted with
// the default locale first.
func (s *Scope) Locales() []string {
	if s == nil {
		return nil
	}

	set := make(map[string]struct{})

	for _, m := range s.values {
		for l := range m {
			set[l] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(set))
}

func compareKeys(a, b ref.Key) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}

	switch {
	case a.Name < b.Name:
		return -1
	case a.Name > b.Name:
		return 1
	default:
		return 0
	}
}
