package resolve

import "github.com/js-lib-com/wood-sub003/pkg"

// Predefined errors (sentinel values).
var (
	ErrNotFound         = pkg.NewError("reference not found")
	ErrUnterminated     = pkg.NewError("unterminated expression")
	ErrInvalidReference = pkg.NewError("invalid reference")
	ErrRead             = pkg.NewError("read source")
)
