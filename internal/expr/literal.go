// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"math"
	"strconv"
	"strings"

	"nickandperla.net/fxprog/internal/calcerr"
	"nickandperla.net/fxprog/internal/token"
)

// literal consumes digits, '.', 'E' and an optional degree/minute/second
// tail, and stores the number.
func (e *evaluator) literal() error {
	if !e.expecting() {
		return e.fail(calcerr.Syntax, "Unexpected number")
	}
	v, err := e.scanLiteral()
	if err != nil {
		return err
	}
	if e.it.CurIs(token.DegMark) {
		if v, err = e.sexagesimal(v); err != nil {
			return err
		}
	}
	return e.nums.Replace(operand{v: v})
}

// scanLiteral reads digits(.digits)?(E signs digits{1,2})?. A leading E has
// an implied significand of 1. Sign runs between E and its digits fold into a
// single sign.
func (e *evaluator) scanLiteral() (float64, error) {
	var (
		mant    strings.Builder
		dot     bool
		exp     bool
		expNeg  bool
		expVal  int
		expLen  int
		atStart = true
	)
	for e.it.InBound() {
		tok, _ := e.it.Cur()
		switch tok.Type.Class {
		case token.ClassDigit:
			if exp {
				if expLen == 2 {
					return 0, e.fail(calcerr.Syntax, "Exponents cannot have more than 2 digits")
				}
				expVal = expVal*10 + tok.Type.Digit
				expLen++
			} else {
				mant.WriteByte(byte('0' + tok.Type.Digit))
			}
		case token.ClassDot:
			if exp || dot {
				return 0, e.fail(calcerr.Syntax, "Unexpected dot")
			}
			dot = true
			mant.WriteByte('.')
		case token.ClassExp:
			if exp {
				return 0, e.fail(calcerr.Syntax, "Unexpected exponent")
			}
			if atStart {
				mant.WriteByte('1')
			}
			exp = true
			e.it.Next()
			for e.it.CurIs(token.Plus) || e.it.CurIs(token.Minus) || e.it.CurIs(token.Neg) {
				if !e.it.CurIs(token.Plus) {
					expNeg = !expNeg
				}
				e.it.Next()
			}
			next, ok := e.it.Cur()
			if !ok || next.Type.Class != token.ClassDigit {
				return 0, e.fail(calcerr.Syntax, "Missing number after exponent")
			}
			atStart = false
			continue
		default:
			return literalValue(mant.String(), expNeg, expVal), nil
		}
		atStart = false
		e.it.Next()
	}
	return literalValue(mant.String(), expNeg, expVal), nil
}

func literalValue(mant string, expNeg bool, exp int) float64 {
	if strings.HasPrefix(mant, ".") {
		mant = "0" + mant
	}
	if strings.HasSuffix(mant, ".") {
		mant += "0"
	}
	if exp != 0 {
		sign := ""
		if expNeg {
			sign = "-"
		}
		mant += "e" + sign + strconv.Itoa(exp)
	}
	v, err := strconv.ParseFloat(mant, 64)
	if err != nil {
		panic("expr: malformed literal " + mant)
	}
	return v
}

// sexagesimal folds "a deg b deg c deg" into a + b/60 + c/3600. The last
// mark may be omitted.
func (e *evaluator) sexagesimal(v float64) (float64, error) {
	parts := 1
	for {
		e.it.Next()
		if e.it.CurIs(token.DegMark) {
			return 0, e.fail(calcerr.Syntax, "Unexpected degree mark")
		}
		tok, ok := e.it.Cur()
		if !ok || !tok.Type.IsLiteral() {
			return v, nil
		}
		if parts == 3 {
			return 0, e.fail(calcerr.Syntax, "Too many sexagesimal parts")
		}
		part, err := e.scanLiteral()
		if err != nil {
			return 0, err
		}
		v += part / math.Pow(60, float64(parts))
		parts++
		if !e.it.CurIs(token.DegMark) {
			return v, nil
		}
	}
}
