package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/pkg"
)

// Eval evaluates expressions such as "add 1px 2px" or "(max 3 (sub 9 4))".
type Eval struct {
	Exprs []string `arg:"" help:"Expressions, with or without the enclosing parentheses" name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := OpenSession(ctx, projectDirFrom(ctx), log.Default())
	if err != nil {
		return err
	}

	out := outputFrom(ctx)

	for _, expr := range e.Exprs {
		expr = strings.TrimSpace(expr)
		if !strings.HasPrefix(expr, "(") {
			expr = "(" + expr + ")"
		}

		result, err := s.Eval(expr)
		if err != nil {
			return pkg.WrapError(err).With(slog.String("command", "eval"))
		}

		if _, err := fmt.Fprintln(out, result); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
