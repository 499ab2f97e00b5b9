package textutil

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat spells v the way Python's repr does: shortest round-trip
// digits, a trailing ".0" on integral values, and exponent notation outside
// [1e-4, 1e16). Dashboards built against earlier exports parse this form.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	exp := strconv.FormatFloat(v, 'e', -1, 64)
	idx := strings.LastIndexByte(exp, 'e')
	power, _ := strconv.Atoi(exp[idx+1:])
	if v != 0 && (power < -4 || power >= 16) {
		mantissa, suffix := exp[:idx], exp[idx+1:]
		sign := suffix[:1]
		digits := strings.TrimLeft(suffix[1:], "0")
		if len(digits) < 2 {
			digits = strings.Repeat("0", 2-len(digits)) + digits
		}
		return mantissa + "e" + sign + digits
	}

	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".") {
		out += ".0"
	}
	return out
}
