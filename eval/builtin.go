package eval

import (
	"log/slog"
	"strings"
)

// builtins returns a fresh set of the built-in operators keyed by opcode.
func builtins() map[string]Operator {
	return map[string]Operator{
		"add": OperatorFunc(add),
		"sub": foldQuantities(mustCompileStep("acc - x")),
		"mul": foldQuantities(mustCompileStep("acc * x")),
		"div": OperatorFunc(div),
	}
}

var (
	addStep = mustCompileStep("acc + x")
	divStep = mustCompileStep("acc / x")
)

// add sums numbers and measures, and concatenates anything else.
func add(args ...string) (string, error) {
	if err := checkArgs(args); err != nil {
		return "", err
	}

	switch ClassifyAll(args...) {
	case Number:
		return addNumbers(args)
	case Measure:
		return addMeasures(args)
	default:
		return strings.Join(args, ""), nil
	}
}

func addNumbers(args []string) (string, error) {
	values := make([]float64, len(args))

	for i, arg := range args {
		v, err := parseNumber(arg)
		if err != nil {
			return "", err
		}

		values[i] = v
	}

	sum, err := addStep.fold(values)
	if err != nil {
		return "", err
	}

	return formatDecimal(sum), nil
}

// addMeasures sums measures that share one unit. Scalars may be mixed in and
// take the unit of the others.
func addMeasures(args []string) (string, error) {
	values := make([]float64, len(args))
	units := ""

	for i, arg := range args {
		q, err := parseMeasure(arg)
		if err != nil {
			return "", err
		}

		values[i] = q.value

		switch {
		case q.scalar():
		case units == "":
			units = q.units
		case units != q.units:
			return "", ErrDifferentUnits.
				With(slog.String("units", units)).
				With(slog.String("argument", arg))
		}
	}

	sum, err := addStep.fold(values)
	if err != nil {
		return "", err
	}

	return formatDecimal(sum) + units, nil
}

// foldQuantities returns an operator that folds strictly formatted measures
// with s and reports the result in compact form with the common unit.
func foldQuantities(s step) Operator {
	return OperatorFunc(func(args ...string) (string, error) {
		if err := checkArgs(args); err != nil {
			return "", err
		}

		values, units, err := parseQuantities(args...)
		if err != nil {
			return "", err
		}

		result, err := s.fold(values)
		if err != nil {
			return "", err
		}

		return formatCompact(result) + units, nil
	})
}

// div is like sub and mul but rejects a zero divisor.
func div(args ...string) (string, error) {
	if err := checkArgs(args); err != nil {
		return "", err
	}

	values, units, err := parseQuantities(args...)
	if err != nil {
		return "", err
	}

	for i, v := range values[1:] {
		if v == 0 {
			return "", ErrDivisionByZero.With(slog.String("argument", args[i+1]))
		}
	}

	result, err := divStep.fold(values)
	if err != nil {
		return "", err
	}

	return formatCompact(result) + units, nil
}
