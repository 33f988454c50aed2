// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"math"
	"strconv"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/token"
)

// mathError is a domain or range failure; the evaluator pins it to a token.
type mathError string

func (e mathError) Error() string { return string(e) }

const (
	errDomain   = mathError("Math domain error")
	errOverflow = mathError("Overflow")
	errDivZero  = mathError("Division by zero")
)

// Values at or beyond this magnitude do not fit the display.
const maxMagnitude = 1e100

func checkRange(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= maxMagnitude {
		return errOverflow
	}
	return nil
}

func isInt(x float64) bool { return x == math.Trunc(x) }

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (e *evaluator) binaryValue(t *token.Type, l, r float64) (float64, error) {
	if t == nil {
		return l * r, nil
	}
	switch t.ID {
	case token.Plus:
		return l + r, nil
	case token.Minus:
		return l - r, nil
	case token.Multiply:
		return l * r, nil
	case token.Divide:
		if r == 0 {
			return 0, errDivZero
		}
		return l / r, nil
	case token.Permutation:
		return permComb(l, r, false)
	case token.Combination:
		return permComb(l, r, true)
	case token.Equal:
		return boolValue(l == r), nil
	case token.NotEqual:
		return boolValue(l != r), nil
	case token.Greater:
		return boolValue(l > r), nil
	case token.Less:
		return boolValue(l < r), nil
	case token.GreaterEq:
		return boolValue(l >= r), nil
	case token.LessEq:
		return boolValue(l <= r), nil
	}
	panic("expr: not a binary operator: " + t.Source)
}

func permComb(n, r float64, comb bool) (float64, error) {
	if !isInt(n) || !isInt(r) || r < 0 || r > n || n >= 1e10 {
		return 0, errDomain
	}
	ans := 1.0
	for k := 0.0; k < r; k++ {
		ans *= n - k
		if comb {
			ans /= k + 1
		}
		if math.IsInf(ans, 0) {
			return 0, errOverflow
		}
	}
	return ans, nil
}

func mixedFraction(whole, num, den float64) (float64, error) {
	if den == 0 {
		return 0, errDivZero
	}
	if num == 0 {
		return whole, nil
	}
	if whole == 0 {
		return num / den, nil
	}
	sign := 1.0
	for _, x := range []float64{whole, num, den} {
		if x < 0 {
			sign = -sign
		}
	}
	return sign * (math.Abs(whole) + math.Abs(num)/math.Abs(den)), nil
}

func (e *evaluator) suffixValue(t *token.Type, x float64) (float64, error) {
	cur := e.c.Setup.Angle.ToRad()
	switch t.ID {
	case token.Reciprocal:
		if x == 0 {
			return 0, errDivZero
		}
		return 1 / x, nil
	case token.Factorial:
		if !isInt(x) || x < 0 || x > 69 {
			return 0, errDomain
		}
		f := 1.0
		for k := 2.0; k <= x; k++ {
			f *= k
		}
		return f, nil
	case token.Square:
		return x * x, nil
	case token.Cube:
		return x * x * x, nil
	case token.Percent:
		return x / 100, nil
	case token.AsDeg:
		return x * calc.Deg.ToRad() / cur, nil
	case token.AsRad:
		return x * calc.Rad.ToRad() / cur, nil
	case token.AsGra:
		return x * calc.Gra.ToRad() / cur, nil
	}
	panic("expr: not a suffix function: " + t.Source)
}

func (e *evaluator) infixValue(t *token.Type, l, r float64) (float64, error) {
	switch t.ID {
	case token.Power:
		if l == 0 && r <= 0 {
			return 0, errDomain
		}
		if l < 0 && !isInt(r) {
			return 0, errDomain
		}
		return math.Pow(l, r), nil
	case token.Root:
		// l is the index, r the radicand.
		if l == 0 {
			return 0, errDomain
		}
		if r < 0 {
			if !isInt(l) || math.Mod(l, 2) == 0 {
				return 0, errDomain
			}
			return -math.Pow(-r, 1/l), nil
		}
		return math.Pow(r, 1/l), nil
	}
	panic("expr: not an infix parenthesis: " + t.Source)
}

// maxTrigDegrees bounds trigonometric arguments, measured in degrees.
const maxTrigDegrees = 9e9

func (e *evaluator) call(t *token.Type, args []float64) (float64, error) {
	x := args[0]
	unit := e.c.Setup.Angle
	switch t.ID {
	case token.OpenBracket:
		return x, nil
	case token.Abs:
		return math.Abs(x), nil
	case token.Sqrt:
		if x < 0 {
			return 0, errDomain
		}
		return math.Sqrt(x), nil
	case token.Cbrt:
		return math.Cbrt(x), nil
	case token.Log:
		if len(args) == 2 {
			base, v := args[0], args[1]
			if base <= 0 || base == 1 || v <= 0 {
				return 0, errDomain
			}
			return math.Log(v) / math.Log(base), nil
		}
		if x <= 0 {
			return 0, errDomain
		}
		return math.Log10(x), nil
	case token.Ln:
		if x <= 0 {
			return 0, errDomain
		}
		return math.Log(x), nil
	case token.TenPow:
		return math.Pow(10, x), nil
	case token.EPow:
		return math.Exp(x), nil
	case token.Sin, token.Cos, token.Tan:
		return trig(t.ID, x, unit)
	case token.Asin:
		if x < -1 || x > 1 {
			return 0, errDomain
		}
		return math.Asin(x) / unit.ToRad(), nil
	case token.Acos:
		if x < -1 || x > 1 {
			return 0, errDomain
		}
		return math.Acos(x) / unit.ToRad(), nil
	case token.Atan:
		return math.Atan(x) / unit.ToRad(), nil
	case token.Sinh:
		return math.Sinh(x), nil
	case token.Cosh:
		return math.Cosh(x), nil
	case token.Tanh:
		return math.Tanh(x), nil
	case token.Asinh:
		return math.Asinh(x), nil
	case token.Acosh:
		if x < 1 {
			return 0, errDomain
		}
		return math.Acosh(x), nil
	case token.Atanh:
		if x <= -1 || x >= 1 {
			return 0, errDomain
		}
		return math.Atanh(x), nil
	case token.Pol:
		r := math.Hypot(args[0], args[1])
		theta := math.Atan2(args[1], args[0]) / unit.ToRad()
		e.c.Vars.Set(calc.X, r)
		e.c.Vars.Set(calc.Y, theta)
		return r, nil
	case token.Rec:
		r, theta := args[0], args[1]
		cos, err := trig(token.Cos, theta, unit)
		if err != nil {
			return 0, err
		}
		sin, _ := trig(token.Sin, theta, unit)
		e.c.Vars.Set(calc.X, r*cos)
		e.c.Vars.Set(calc.Y, r*sin)
		return r * cos, nil
	case token.Rnd:
		return Round(x, e.c.Setup.Digits), nil
	}
	panic("expr: not a function: " + t.Source)
}

// trig evaluates sin, cos or tan with the argument in unit. Multiples of a
// right angle give exact results.
func trig(id token.ID, x float64, unit calc.AngleUnit) (float64, error) {
	if math.Abs(x*unit.ToRad()) >= maxTrigDegrees*math.Pi/180 {
		return 0, errDomain
	}
	q := x / unit.RightAngle()
	if isInt(q) {
		quarter := int(math.Mod(q, 4))
		if quarter < 0 {
			quarter += 4
		}
		switch id {
		case token.Sin:
			return [4]float64{0, 1, 0, -1}[quarter], nil
		case token.Cos:
			return [4]float64{1, 0, -1, 0}[quarter], nil
		default:
			if quarter%2 == 1 {
				return 0, errDomain
			}
			return 0, nil
		}
	}
	rad := x * unit.ToRad()
	switch id {
	case token.Sin:
		return math.Sin(rad), nil
	case token.Cos:
		return math.Cos(rad), nil
	}
	return math.Tan(rad), nil
}

// Round rounds x to what the display format shows: Fix n decimals, Sci n
// significant digits and Norm ten significant digits.
func Round(x float64, d calc.DisplayDigits) float64 {
	var s string
	switch d.Kind {
	case calc.Fix:
		s = strconv.FormatFloat(x, 'f', d.N, 64)
	case calc.Sci:
		s = strconv.FormatFloat(x, 'e', d.N-1, 64)
	default:
		s = strconv.FormatFloat(x, 'e', 9, 64)
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
