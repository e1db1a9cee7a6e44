package ref

import "strings"

const (
	// Mark introduces every placeholder in source text.
	Mark = '@'
	// Separator splits the category from the name, and path segments within
	// a media name.
	Separator = '/'
)

// Key identifies a reference independently of where it occurs.
// Two references are equal when their keys are equal.
type Key struct {
	Category Category
	Name     string
}

// String formats the key in placeholder syntax.
func (k Key) String() string {
	return string(Mark) + k.Category.String() + string(Separator) + k.Name
}

// Reference is one placeholder occurrence: a category, a name, and the file
// it was found in. The origin is carried for diagnostics and scoping only;
// it takes no part in equality.
type Reference struct {
	Category Category
	Name     string
	Origin   string
}

// New returns a reference to name in category c found in origin.
func New(c Category, name, origin string) Reference {
	return Reference{Category: c, Name: name, Origin: origin}
}

// Parse parses a placeholder token of the form "@category/name". The leading
// mark is optional.
//
// Parse never fails. A token without separator, with an empty name, or with
// an unrecognized category yields a reference of category [Unknown] holding
// the whole token as its name; callers decide whether that is fatal.
func Parse(token, origin string) Reference {
	body := strings.TrimPrefix(token, string(Mark))

	keyword, name, ok := strings.Cut(body, string(Separator))
	if !ok || name == "" {
		return Reference{Category: Unknown, Name: body, Origin: origin}
	}

	c := ParseCategory(keyword)
	if c == Unknown {
		return Reference{Category: Unknown, Name: body, Origin: origin}
	}

	return Reference{Category: c, Name: name, Origin: origin}
}

// Key returns the category and name pair identifying r.
func (r Reference) Key() Key { return Key{Category: r.Category, Name: r.Name} }

// Equal reports whether r and other name the same resource.
func (r Reference) Equal(other Reference) bool { return r.Key() == other.Key() }

// String serializes r back to placeholder syntax. For every supported
// category, Parse(r.String(), "").String() == r.String().
func (r Reference) String() string {
	if r.Category == Unknown {
		return string(Mark) + r.Name
	}

	return r.Key().String()
}

// Path returns the directory part of a slash separated name, or "" when the
// name has no path.
func (r Reference) Path() string {
	i := strings.LastIndexByte(r.Name, Separator)
	if i < 0 {
		return ""
	}

	return r.Name[:i]
}

// Base returns the last segment of a slash separated name.
func (r Reference) Base() string {
	return r.Name[strings.LastIndexByte(r.Name, Separator)+1:]
}

// IsVariable reports whether r is resolved by a variable store.
func (r Reference) IsVariable() bool { return r.Category.IsVariable() }

// IsMedia reports whether r names an image, audio or video file.
func (r Reference) IsMedia() bool { return r.Category.IsMedia() }

// IsParameter reports whether r is resolved from a caller parameter map.
func (r Reference) IsParameter() bool { return r.Category == Param }

// IsProject reports whether r names a project descriptor property.
func (r Reference) IsProject() bool { return r.Category == Project }

// IsUnknown reports whether r never resolves.
func (r Reference) IsUnknown() bool { return r.Category == Unknown }
