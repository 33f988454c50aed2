// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"errors"
	"fmt"

	"fortio.org/log"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/calcerr"
	"nickandperla.net/fxprog/internal/stack"
	"nickandperla.net/fxprog/internal/token"
)

type evaluator struct {
	it       *token.Iterator
	c        *calc.Context
	isolated bool
	nums     *stack.Stack[operand]
	cmds     *stack.Stack[command]
	ended    bool // M+, M- and ClrMemory close the expression
}

// Evaluate reads one expression starting at the iterator and returns its
// value, leaving the iterator on the token that stopped it.
//
// Evaluation stops at the end of input, ':', '=>' or 'disp'. When isolated is
// false any other non-expression key also stops it; when true such a key is
// a syntax error.
func Evaluate(it *token.Iterator, c *calc.Context, isolated bool) (float64, error) {
	e := &evaluator{
		it:       it,
		c:        c,
		isolated: isolated,
		nums:     stack.New[operand](OperandCap),
		cmds:     stack.New[command](CommandCap),
	}
	e.nums.Push(placeholder)

	for !e.ended && it.InBound() {
		tok, _ := it.Cur()
		if IsTerminator(tok.Type) {
			break
		}
		if !tok.Type.IsExpression() {
			if isolated {
				return 0, e.fail(calcerr.Syntax, "Unexpected token")
			}
			break
		}
		if err := e.step(tok); err != nil {
			log.LogVf("expr: %v", err)
			return 0, err
		}
		if log.LogDebug() {
			log.Debugf("expr: after %s nums=%d cmds=%d", tok.Type.Source, e.nums.Len(), e.cmds.Len())
		}
	}
	return e.finish()
}

// EvaluateAll evaluates a whole token slice as one isolated expression.
func EvaluateAll(toks []token.Token, c *calc.Context) (float64, error) {
	it := token.NewIterator(toks)
	v, err := Evaluate(it, c, true)
	if err != nil {
		return 0, err
	}
	if it.InBound() {
		return 0, calcerr.At(calcerr.Syntax, toks, it.I, "Unexpected token")
	}
	return v, nil
}

// IsTerminator reports whether t ends a statement.
func IsTerminator(t *token.Type) bool {
	switch t.ID {
	case token.Separator, token.FatArrow, token.Disp:
		return true
	}
	return false
}

func (e *evaluator) step(tok token.Token) error {
	t := tok.Type
	if t.IsValued() {
		return e.valued(t)
	}
	switch t.Class {
	case token.ClassDigit, token.ClassExp, token.ClassDot:
		return e.literal()
	case token.ClassPlus:
		if e.expecting() {
			e.it.Next()
			return nil
		}
		return e.binary(t)
	case token.ClassMinus:
		if e.expecting() {
			return e.negate(t)
		}
		return e.binary(t)
	case token.ClassNeg:
		if !e.expecting() {
			return e.fail(calcerr.Syntax, "Negative sign cannot follow a number")
		}
		return e.negate(t)
	case token.ClassInfix, token.ClassRelation:
		return e.binary(t)
	case token.ClassFrac:
		return e.frac(t)
	case token.ClassSuffix:
		return e.suffix(t)
	case token.ClassDeg:
		return e.fail(calcerr.Syntax, "Degree mark must follow a number")
	case token.ClassInfixParen:
		return e.infixParen(t)
	case token.ClassParenFunc:
		return e.open(t)
	case token.ClassComma:
		return e.comma()
	case token.ClassCloseBracket:
		return e.closeBracket()
	case token.ClassMemory:
		return e.memory(t)
	case token.ClassClrMemory:
		return e.clrMemory()
	}
	return e.fail(calcerr.Syntax, "Unexpected token")
}

func (e *evaluator) fail(kind calcerr.Kind, msg string) error {
	return calcerr.At(kind, e.it.Tokens, e.it.I, msg)
}

func (e *evaluator) overflow(err error) error {
	if errors.Is(err, stack.ErrOverflow) {
		return e.fail(calcerr.Stack, "Stack overflow")
	}
	panic(fmt.Sprintf("expr: %v at token %d", err, e.it.I))
}

func (e *evaluator) expecting() bool {
	top, err := e.nums.Peek()
	return err == nil && top.hole
}

func (e *evaluator) pushCmd(c command) error {
	if err := e.cmds.Push(c); err != nil {
		return e.overflow(err)
	}
	return nil
}

func (e *evaluator) pushNum(o operand) error {
	if err := e.nums.Push(o); err != nil {
		return e.overflow(err)
	}
	return nil
}

func (e *evaluator) popNum() float64 {
	o, err := e.nums.Pop()
	if err != nil || o.hole {
		panic(fmt.Sprintf("expr: operand missing at token %d", e.it.I))
	}
	return o.v
}

// setValue stores v in the pending placeholder, or in a fresh slot behind an
// omitted multiplication when a number is already present.
func (e *evaluator) setValue(v float64) error {
	if e.expecting() {
		return e.nums.Replace(operand{v: v})
	}
	if err := e.omittedMul(); err != nil {
		return err
	}
	return e.pushNum(operand{v: v})
}

func (e *evaluator) omittedMul() error {
	if err := e.evalUntil(L7); err != nil {
		return err
	}
	return e.pushCmd(command{kind: opOmittedMul, prec: L7})
}

// evalUntil fires deferred commands from the top of the stack while they
// accept the requested precedence.
func (e *evaluator) evalUntil(pre Precedence) error {
	for !e.cmds.Empty() {
		top, _ := e.cmds.Peek()
		fired, cont, err := e.attempt(top, pre)
		if err != nil {
			return err
		}
		if !fired || !cont {
			return nil
		}
	}
	return nil
}

// attempt fires c if it accepts pre. cont reports whether lower commands may
// fire as well.
func (e *evaluator) attempt(c command, pre Precedence) (fired, cont bool, err error) {
	switch c.kind {
	case opBinary, opOmittedMul:
		if pre > c.prec {
			return false, false, nil
		}
		e.cmds.Pop()
		r := e.popNum()
		l := e.popNum()
		v, err := e.binaryValue(c.typ, l, r)
		return true, true, e.result(v, err)
	case opNegate:
		if pre > c.prec {
			return false, false, nil
		}
		e.cmds.Pop()
		return true, true, e.result(-e.popNum(), nil)
	case opFrac:
		if pre >= L9 {
			return false, false, nil
		}
		e.cmds.Pop()
		den := e.popNum()
		num := e.popNum()
		if den == 0 {
			return true, true, e.fail(calcerr.Math, "Division by zero")
		}
		return true, true, e.result(num/den, nil)
	case opMixedFrac:
		if pre >= L9 {
			return false, false, nil
		}
		e.cmds.Pop()
		den := e.popNum()
		num := e.popNum()
		whole := e.popNum()
		v, err := mixedFraction(whole, num, den)
		return true, true, e.result(v, err)
	case opParen:
		if pre > PrecCloseBracket || pre == PrecComma {
			return false, false, nil
		}
		argc := e.nums.Len() - c.start
		if !c.typ.Arity.Allows(argc) {
			return true, false, e.fail(calcerr.Syntax, "Wrong number of arguments")
		}
		e.cmds.Pop()
		args := make([]float64, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = e.popNum()
		}
		var v float64
		if c.typ.Class == token.ClassInfixParen {
			v, err = e.infixValue(c.typ, e.popNum(), args[0])
		} else {
			v, err = e.call(c.typ, args)
		}
		return true, pre != PrecCloseBracket, e.result(v, err)
	}
	panic("expr: unknown command " + c.String())
}

// result pushes a computed value, converting domain failures and overflow
// into Math errors at the current token.
func (e *evaluator) result(v float64, err error) error {
	if err != nil {
		var me mathError
		if errors.As(err, &me) {
			return e.fail(calcerr.Math, string(me))
		}
		return err
	}
	if err := checkRange(v); err != nil {
		return e.fail(calcerr.Math, string(err.(mathError)))
	}
	return e.pushNum(operand{v: v})
}

func (e *evaluator) finish() (float64, error) {
	if e.expecting() {
		return 0, e.fail(calcerr.Syntax, "Missing number")
	}
	if err := e.evalUntil(PrecLowest); err != nil {
		return 0, err
	}
	if !e.cmds.Empty() || e.nums.Len() != 1 {
		panic(fmt.Sprintf("expr: %d commands and %d operands left", e.cmds.Len(), e.nums.Len()))
	}
	return e.popNum(), nil
}

func (e *evaluator) valued(t *token.Type) error {
	var v float64
	switch t.Class {
	case token.ClassVariable:
		v = e.c.Vars.Get(t.Var)
	case token.ClassConstant:
		v = t.Value
	case token.ClassRandom:
		v = float64(int(e.c.Random()*1000)) / 1000
	}
	if err := e.setValue(v); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) binary(t *token.Type) error {
	if e.expecting() {
		return e.fail(calcerr.Syntax, "Operator cannot follow an operator")
	}
	prec := binaryPrec(t)
	if err := e.evalUntil(prec); err != nil {
		return err
	}
	if err := e.pushCmd(command{kind: opBinary, typ: t, prec: prec}); err != nil {
		return err
	}
	if err := e.pushNum(placeholder); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) negate(t *token.Type) error {
	if err := e.pushCmd(command{kind: opNegate, typ: t, prec: L9}); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) frac(t *token.Type) error {
	if e.expecting() {
		return e.fail(calcerr.Syntax, "Fraction needs a number before it")
	}
	if err := e.evalUntil(L10); err != nil {
		return err
	}
	top, err := e.cmds.Peek()
	switch {
	case err == nil && top.kind == opMixedFrac:
		return e.fail(calcerr.Syntax, "3 Frac not allowed")
	case err == nil && top.kind == opFrac:
		e.cmds.Replace(command{kind: opMixedFrac, typ: t, prec: L10})
	default:
		if err := e.pushCmd(command{kind: opFrac, typ: t, prec: L10}); err != nil {
			return err
		}
	}
	if err := e.pushNum(placeholder); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) suffix(t *token.Type) error {
	if e.expecting() {
		return e.fail(calcerr.Syntax, "Function needs a number before it")
	}
	if err := e.evalUntil(L11); err != nil {
		return err
	}
	v, err := e.suffixValue(t, e.popNum())
	if err := e.result(v, err); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) infixParen(t *token.Type) error {
	if e.expecting() {
		return e.fail(calcerr.Syntax, "Operator cannot follow an operator")
	}
	if err := e.evalUntil(L11); err != nil {
		return err
	}
	if err := e.pushCmd(command{kind: opParen, typ: t, prec: L11, start: e.nums.Len()}); err != nil {
		return err
	}
	if err := e.pushNum(placeholder); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) open(t *token.Type) error {
	if !e.expecting() {
		if err := e.omittedMul(); err != nil {
			return err
		}
		if err := e.pushNum(placeholder); err != nil {
			return err
		}
	}
	if err := e.pushCmd(command{kind: opParen, typ: t, prec: PrecCloseBracket, start: e.nums.Len() - 1}); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) comma() error {
	if e.expecting() {
		return e.fail(calcerr.Syntax, "Missing argument")
	}
	if err := e.evalUntil(PrecComma); err != nil {
		return err
	}
	top, err := e.cmds.Peek()
	if err != nil || top.kind != opParen || !top.typ.Arity.Allows(e.nums.Len()-top.start+1) {
		return e.fail(calcerr.Syntax, "Unexpected comma")
	}
	if err := e.pushNum(placeholder); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) closeBracket() error {
	if e.expecting() {
		return e.fail(calcerr.Syntax, "Missing number")
	}
	open := false
	for i := range e.cmds.Len() {
		if c, _ := e.cmds.At(i); c.kind == opParen {
			open = true
			break
		}
	}
	if !open {
		return e.fail(calcerr.Syntax, "Unmatched bracket")
	}
	if err := e.evalUntil(PrecCloseBracket); err != nil {
		return err
	}
	e.it.Next()
	return nil
}

func (e *evaluator) memory(t *token.Type) error {
	if e.expecting() {
		return e.fail(calcerr.Syntax, "Missing number")
	}
	if err := e.evalUntil(PrecLowest); err != nil {
		return err
	}
	top, _ := e.nums.Peek()
	m := e.c.Vars.Get(calc.M)
	if t.ID == token.MMinus {
		m -= top.v
	} else {
		m += top.v
	}
	if err := checkRange(m); err != nil {
		return e.fail(calcerr.Math, string(err.(mathError)))
	}
	e.c.Vars.Set(calc.M, m)
	return e.end()
}

func (e *evaluator) clrMemory() error {
	if !e.expecting() || !e.cmds.Empty() || e.nums.Len() != 1 {
		return e.fail(calcerr.Syntax, "ClrMemory must stand alone")
	}
	e.c.Vars.Clear()
	e.nums.Replace(operand{v: 0})
	return e.end()
}

// end closes the expression after a key that must be its last one.
func (e *evaluator) end() error {
	e.ended = true
	e.it.Next()
	if tok, ok := e.it.Cur(); ok && tok.Type.IsExpression() {
		return e.fail(calcerr.Syntax, "Expression must end here")
	}
	return nil
}
