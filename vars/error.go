package vars

import "github.com/js-lib-com/wood-sub003/pkg"

// Predefined errors (sentinel values).
var (
	ErrCircularReference = pkg.NewError("circular variable references")
	ErrBadResourceType   = pkg.NewError("bad resource type")
	ErrNestedElement     = pkg.NewError("not allowed nested element")
	ErrMalformed         = pkg.NewError("malformed variables definition")
	ErrReadSource        = pkg.NewError("read variables source")
)
