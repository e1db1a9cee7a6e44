package eval

import (
	"log/slog"
	"sync"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/pkg"
)

// Evaluator parses and runs expressions against an operator [Registry].
// An Evaluator is safe for concurrent use once its registry is populated.
type Evaluator struct {
	registry *Registry
	logger   log.Logger
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithRegistry sets the operator registry. The default is [NewRegistry].
func WithRegistry(r *Registry) Option {
	return func(e *Evaluator) { e.registry = r }
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(e *Evaluator) { e.logger = logger.Component("eval") }
}

// New returns an evaluator configured with opts.
func New(opts ...Option) *Evaluator {
	e := new(Evaluator)

	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = NewRegistry()
	}

	return e
}

// Registry returns the operator registry backing e.
func (e *Evaluator) Registry() *Registry { return e.registry }

// Eval parses text as an expression and evaluates it.
func (e *Evaluator) Eval(text string) (string, error) {
	x, err := Parse(text)
	if err != nil {
		return "", err
	}

	result, err := e.Exec(x)
	if err != nil {
		return "", pkg.WrapError(err).With(slog.String("expression", text))
	}

	return result, nil
}

// Exec evaluates x depth first and left to right: nested expressions are
// reduced to strings before the enclosing operator runs.
func (e *Evaluator) Exec(x *Expression) (string, error) {
	op, err := e.registry.Lookup(x.Opcode)
	if err != nil {
		return "", err
	}

	args := make([]string, len(x.Args))

	for i, a := range x.Args {
		if !a.IsExpr() {
			args[i] = a.Literal

			continue
		}

		args[i], err = e.Exec(a.Expr)
		if err != nil {
			return "", err
		}
	}

	result, err := op.Exec(args...)
	if err != nil {
		return "", pkg.WrapError(err).With(slog.String("opcode", x.Opcode))
	}

	e.logger.Trace("eval",
		slog.String("opcode", x.Opcode),
		slog.Int("args", len(args)),
		slog.String("result", result),
	)

	return result, nil
}

var defaultEvaluator = sync.OnceValue(func() *Evaluator { return New() })

// Default returns the shared evaluator holding only the built-in operators.
func Default() *Evaluator { return defaultEvaluator() }

// Eval evaluates text with the built-in operators.
func Eval(text string) (string, error) {
	return defaultEvaluator().Eval(text)
}
