package ref

import "strings"

// Category classifies the resource a [Reference] points to.
type Category uint8

// Supported categories. The zero value is [Unknown].
const (
	Unknown Category = iota // unknown
	String                  // string
	Text                    // text
	Color                   // color
	Dimen                   // dimen
	Style                   // style
	Audio                   // audio
	Image                   // image
	Video                   // video
	Project                 // project
	Param                   // param
)

var categoryName = [...]string{
	Unknown: "unknown",
	String:  "string",
	Text:    "text",
	Color:   "color",
	Dimen:   "dimen",
	Style:   "style",
	Audio:   "audio",
	Image:   "image",
	Video:   "video",
	Project: "project",
	Param:   "param",
}

// String returns the lower-case keyword used in placeholder syntax.
func (c Category) String() string {
	if int(c) < len(categoryName) {
		return categoryName[c]
	}

	return categoryName[Unknown]
}

// ParseCategory returns the category named by keyword, ignoring case.
// Unrecognized keywords yield [Unknown].
func ParseCategory(keyword string) Category {
	for c, name := range categoryName {
		if c != int(Unknown) && strings.EqualFold(name, keyword) {
			return Category(c)
		}
	}

	return Unknown
}

// Categories returns every category except [Unknown], in declaration order.
func Categories() []Category {
	all := make([]Category, 0, len(categoryName)-1)
	for c := String; c <= Param; c++ {
		all = append(all, c)
	}

	return all
}

// IsVariable reports whether values of this category live in a variable
// store.
func (c Category) IsVariable() bool {
	switch c {
	case String, Text, Color, Dimen, Style:
		return true
	default:
		return false
	}
}

// IsMedia reports whether the category names a media file.
func (c Category) IsMedia() bool {
	return c == Image || c == Audio || c == Video
}
