package eval

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// MinArgs is the smallest argument count any operator accepts.
const MinArgs = 2

// Operator executes one opcode over already evaluated arguments.
type Operator interface {
	Exec(args ...string) (string, error)
}

// OperatorFunc adapts a function to the [Operator] interface.
type OperatorFunc func(args ...string) (string, error)

// Exec implements [Operator].
func (f OperatorFunc) Exec(args ...string) (string, error) { return f(args...) }

// Registry maps opcodes to operators. Opcodes are matched without regard to
// case. The zero value is an empty registry ready for use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operator
}

// NewRegistry returns a registry holding the built-in operators add, sub,
// mul and div.
func NewRegistry() *Registry {
	r := new(Registry)

	for name, op := range builtins() {
		r.Register(name, op)
	}

	return r
}

// Register adds or replaces the operator for opcode.
func (r *Registry) Register(opcode string, op Operator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ops == nil {
		r.ops = make(map[string]Operator)
	}

	r.ops[strings.ToLower(opcode)] = op
}

// RegisterExpr compiles source as the fold step of a new arithmetic operator
// and registers it under opcode. The step is an expr-lang expression over
// the float64 variables acc (the running result, seeded with the first
// argument) and x (the next argument), for example "max(acc, x)".
//
// Arguments follow the same rules as sub and mul: each must be a decimal with
// an optional unit, and all units must agree.
func (r *Registry) RegisterExpr(opcode, source string) error {
	step, err := compileStep(source)
	if err != nil {
		return ErrOperatorCompile.
			With(slog.String("opcode", opcode)).
			Wrap(err)
	}

	r.Register(opcode, foldQuantities(step))

	return nil
}

// Lookup returns the operator registered for opcode. Opcodes longer than
// [MaxOpcodeLen] fail with [ErrOpcodeTooLong]; unknown opcodes fail with
// [ErrUnimplementedOpcode].
func (r *Registry) Lookup(opcode string) (Operator, error) {
	if len(opcode) > MaxOpcodeLen {
		return nil, ErrOpcodeTooLong.
			With(slog.String("opcode", opcode)).
			With(slog.Int("max", MaxOpcodeLen))
	}

	r.mu.RLock()
	op, ok := r.ops[strings.ToLower(opcode)]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrUnimplementedOpcode.
			With(slog.String("opcode", opcode)).
			With(slog.String("supported", strings.Join(r.Opcodes(), ",")))
	}

	return op, nil
}

// Opcodes returns the registered opcodes in sorted order.
func (r *Registry) Opcodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.ops))
}

// step is a compiled binary fold step.
type step struct {
	source  string
	program *vm.Program
}

// compileStep compiles a fold step against an environment declaring acc and
// x as float64, forcing a float64 result.
func compileStep(source string) (step, error) {
	env := map[string]any{"acc": float64(0), "x": float64(0)}

	program, err := expr.Compile(source, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return step{}, err
	}

	return step{source: source, program: program}, nil
}

// mustCompileStep is compileStep for the built-in sources.
func mustCompileStep(source string) step {
	s, err := compileStep(source)
	if err != nil {
		panic("internal error: " + err.Error())
	}

	return s
}

// fold reduces values left to right, seeding the accumulator with the
// first value.
func (s step) fold(values []float64) (float64, error) {
	acc := values[0]

	for _, x := range values[1:] {
		out, err := vm.Run(s.program, map[string]any{"acc": acc, "x": x})
		if err != nil {
			return 0, ErrBadNumericArgument.
				With(slog.String("step", s.source)).
				Wrap(err)
		}

		v, ok := out.(float64)
		if !ok {
			return 0, ErrBadNumericArgument.
				With(slog.String("step", s.source)).
				With(slog.Any("result", out))
		}

		acc = v
	}

	return acc, nil
}

// checkArgs enforces [MinArgs].
func checkArgs(args []string) error {
	if len(args) < MinArgs {
		return ErrArgumentCount.
			With(slog.Int("count", len(args))).
			With(slog.Int("min", MinArgs))
	}

	return nil
}
