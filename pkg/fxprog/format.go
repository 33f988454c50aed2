package fxprog

import (
	"math"
	"strconv"
	"strings"

	"nickandperla.net/fxprog/internal/calc"
)

// FormatValue renders v the way the calculator display shows it under d.
func FormatValue(v float64, d calc.DisplayDigits) string {
	if v == 0 {
		return "0"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	a := math.Abs(v)
	switch d.Kind {
	case calc.Fix:
		if a < 1e10 {
			return strconv.FormatFloat(v, 'f', d.N, 64)
		}
	case calc.Sci:
		return scientific(v, d.N, false)
	}
	lower := 1e-9
	if d.Kind == calc.Norm && d.N == 1 {
		lower = 1e-2
	}
	if a >= 1e10 || a < lower {
		return scientific(v, 10, true)
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 10, 64), 64)
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// scientific writes v with n significant digits as mantissa "E" exponent.
func scientific(v float64, n int, trim bool) string {
	s := strconv.FormatFloat(v, 'e', n-1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	if trim && strings.Contains(mant, ".") {
		mant = strings.TrimRight(strings.TrimRight(mant, "0"), ".")
	}
	e, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(e)
}
