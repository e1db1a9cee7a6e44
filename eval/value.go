package eval

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Type classifies an operator argument by its characters, not by a declared
// type.
type Type uint8

const (
	Number  Type = iota // number
	Measure             // measure
	String              // string
)

var typeName = [...]string{Number: "number", Measure: "measure", String: "string"}

func (t Type) String() string { return typeName[t] }

// Classify returns the type of a single argument.
//
// Number characters are decimal digits, '+', '-' and '.'. An argument whose
// first character is not a number character is a [String]; one that starts
// with a number character but contains any other character later is a
// [Measure]; otherwise it is a [Number]. The empty string is a [String].
func Classify(arg string) Type {
	if arg == "" {
		return String
	}

	for i, r := range arg {
		if isNumberRune(r) {
			continue
		}

		if i == 0 {
			return String
		}

		return Measure
	}

	return Number
}

// ClassifyAll returns the type of a whole argument list: [String] if any
// argument is a string, else [Measure] if any is a measure, else [Number].
func ClassifyAll(args ...string) Type {
	found := Number

	for _, arg := range args {
		switch Classify(arg) {
		case String:
			return String
		case Measure:
			found = Measure
		case Number:
		}
	}

	return found
}

func isNumberRune(r rune) bool {
	return unicode.IsDigit(r) || r == '-' || r == '+' || r == '.'
}

// parseNumber parses a plain decimal argument.
func parseNumber(arg string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, ErrBadNumericArgument.With(slog.String("argument", arg))
	}

	return v, nil
}

// quantity is a number with an optional unit suffix. An empty unit marks a
// scalar.
type quantity struct {
	value float64
	units string
}

func (q quantity) scalar() bool { return q.units == "" }

// parseMeasure splits a loosely formatted measure such as "12.34 px" into
// its numeric prefix and its trimmed unit suffix.
func parseMeasure(arg string) (quantity, error) {
	end := 0

	for i, r := range arg {
		if unicode.IsDigit(r) || r == '.' || (i == 0 && (r == '-' || r == '+')) {
			end = i + 1

			continue
		}

		break
	}

	v, err := strconv.ParseFloat(arg[:end], 64)
	if err != nil {
		return quantity{}, ErrBadNumericArgument.With(slog.String("argument", arg))
	}

	return quantity{value: v, units: strings.TrimSpace(arg[end:])}, nil
}

// strictMeasure is the only form accepted by the arithmetic operators other
// than add: an optionally signed decimal and an optional alphabetic unit.
var strictMeasure = regexp.MustCompile(`(?i)^([-+]?[0-9]+(?:\.[0-9]+)?)([a-z]*)$`)

// parseQuantities parses every argument with [strictMeasure] and returns the
// values along with the common unit. The unit is taken from the first
// argument that has one; every other non-empty unit must match it.
func parseQuantities(args ...string) ([]float64, string, error) {
	values := make([]float64, len(args))
	units := ""

	for i, arg := range args {
		m := strictMeasure.FindStringSubmatch(arg)
		if m == nil {
			return nil, "", ErrBadNumericArgument.With(slog.String("argument", arg))
		}

		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, "", ErrBadNumericArgument.With(slog.String("argument", arg)).Wrap(err)
		}

		values[i] = v

		switch {
		case m[2] == "":
		case units == "":
			units = m[2]
		case units != m[2]:
			return nil, "", ErrDifferentUnits.
				With(slog.String("units", units)).
				With(slog.String("argument", arg))
		}
	}

	return values, units, nil
}
