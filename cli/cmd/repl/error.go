package repl

import "github.com/js-lib-com/wood-sub003/pkg"

// Predefined errors (sentinel values).
var (
	ErrOutOfBounds  = pkg.NewError("history index out of range")
	ErrEditDeclined = pkg.NewError("decline edit")
	ErrNoSession    = pkg.NewError("no project session")
	ErrHistory      = pkg.NewError("history file")
)
