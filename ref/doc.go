// Package ref defines the value type for one resource placeholder found in
// source text.
//
// # Syntax
//
// A placeholder is written "@category/name" where category is one of the
// lower-case keywords string, text, color, dimen, style, audio, image, video,
// project or param:
//
//	@string/title
//	@dimen/gutter
//	@image/icons/logo
//
// [Parse] never fails. Malformed tokens come back with category [Unknown]
// so that the scanner can decide whether to report them or pass them
// through.
//
// # Equality
//
// References compare by [Key], the (category, name) pair. The origin file is
// kept for diagnostics and for choosing the variable scope, but two
// occurrences of the same placeholder in different files are equal.
package ref
