package eval

import "github.com/js-lib-com/wood-sub003/pkg"

// Predefined errors (sentinel values).
var (
	ErrSyntax              = pkg.NewError("invalid expression")
	ErrOpcodeTooLong       = pkg.NewError("opcode too long")
	ErrUnimplementedOpcode = pkg.NewError("unimplemented opcode")
	ErrArgumentCount       = pkg.NewError("too few arguments")
	ErrBadNumericArgument  = pkg.NewError("bad numeric argument")
	ErrDifferentUnits      = pkg.NewError("different measure units")
	ErrDivisionByZero      = pkg.NewError("division by zero")
	ErrOperatorCompile     = pkg.NewError("operator compilation failed")
)
