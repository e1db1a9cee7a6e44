package eval

import (
	"math"
	"strconv"
	"strings"
)

// maxFractionDigits bounds the fraction of results produced by the strict
// arithmetic operators.
const maxFractionDigits = 3

// formatDecimal renders v the way add reports its results: the shortest
// decimal that round-trips, always with a fraction part ("3.0", "69.12"), and
// scientific notation outside [1e-3, 1e7) ("1.0E7").
func formatDecimal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	if abs := math.Abs(v); v != 0 && (abs < 1e-3 || abs >= 1e7) {
		return formatScientific(v)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}

func formatScientific(v float64) string {
	s := strconv.FormatFloat(v, 'E', -1, 64)

	mantissa, exponent, _ := strings.Cut(s, "E")
	if !strings.ContainsRune(mantissa, '.') {
		mantissa += ".0"
	}

	exp, _ := strconv.Atoi(exponent)

	return mantissa + "E" + strconv.Itoa(exp)
}

// formatCompact renders v with at most three fraction digits, rounding half
// to even, and drops a zero fraction entirely ("40", "40.5", "0.333").
func formatCompact(v float64) string {
	s := strconv.FormatFloat(v, 'f', maxFractionDigits, 64)
	s = strings.TrimRight(s, "0")

	return strings.TrimSuffix(s, ".")
}
