// Package resolve replaces "@" placeholders in a stream of text.
//
// The recognized placeholders are
//
//	@category/name   a variable, media file or parameter reference
//	@eval(expr)      a prefix expression, see package eval
//	@@               a literal "@"
//
// A reference name ends at the first space, tab, CR, LF, quote, apostrophe,
// '<', ';' or ')'. The terminator itself is copied to the output, so
//
//	<h1>@string/title</h1>
//
// keeps its closing tag. Values come from a [Handler]; package vars answers
// variable references and callers answer media files and parameters.
// A missing value aborts the stream with [ErrNotFound].
//
// Anything else that starts with "@", such as a CSS at-rule or an e-mail
// address, is copied unchanged.
package resolve
