package watch

import "github.com/js-lib-com/wood-sub003/pkg"

// Predefined errors (sentinel values).
var (
	ErrWatch   = pkg.NewError("watch directory")
	ErrPattern = pkg.NewError("invalid exclude pattern")
)
