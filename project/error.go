package project

import "github.com/js-lib-com/wood-sub003/pkg"

// Predefined errors (sentinel values).
var (
	ErrNotFound = pkg.NewError("project configuration not found")
	ErrDecode   = pkg.NewError("decode project configuration")
	ErrInvalid  = pkg.NewError("invalid project configuration")
	ErrEncode   = pkg.NewError("encode project configuration")
	ErrMedia    = pkg.NewError("read media directory")
)
