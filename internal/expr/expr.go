// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr evaluates calculator expressions with an operand stack and a
// stack of deferred commands, following the calculator's precedence rules.
package expr

import "nickandperla.net/fxprog/internal/token"

// Stack limits of the calculator.
const (
	OperandCap = 11
	CommandCap = 24
)

// Precedence orders deferred commands. A command fires when the requested
// precedence is at or below its own.
type Precedence int

const (
	PrecLowest Precedence = iota
	PrecComma
	PrecCloseBracket
	L1  // relations
	L2  // Base-N or/xor/xnor
	L3  // Base-N and
	L4  // + -
	L5  // × ÷
	L6  // nPr nCr
	L7  // omitted multiplication
	L8  // regression estimators
	L9  // prefix negation
	L10 // fraction
	L11 // suffix functions, ^( and x√(
)

var precNames = [...]string{"Lowest", "Comma", "CloseBracket",
	"L1", "L2", "L3", "L4", "L5", "L6", "L7", "L8", "L9", "L10", "L11"}

func (p Precedence) String() string {
	if p < 0 || int(p) >= len(precNames) {
		return "Prec(?)"
	}
	return precNames[p]
}

// opKind is the variant tag of a deferred command.
type opKind int

const (
	opBinary opKind = iota
	opOmittedMul
	opNegate
	opFrac
	opMixedFrac
	opParen
)

func (k opKind) String() string {
	switch k {
	case opBinary:
		return "binary"
	case opOmittedMul:
		return "omitted×"
	case opNegate:
		return "negate"
	case opFrac:
		return "frac"
	case opMixedFrac:
		return "mixed-frac"
	case opParen:
		return "paren"
	}
	return "op(?)"
}

// command is a deferred operation waiting on the command stack.
type command struct {
	kind opKind
	typ  *token.Type // producing key; nil for omitted multiplication
	prec Precedence
	// start is the operand depth at which the first argument of a
	// parenthesis sits.
	start int
}

func (c command) String() string {
	if c.typ == nil {
		return c.kind.String()
	}
	return c.kind.String() + " " + c.typ.Source
}

// operand is a number or the placeholder marking that a number is expected.
type operand struct {
	v    float64
	hole bool
}

var placeholder = operand{hole: true}

func binaryPrec(t *token.Type) Precedence {
	switch t.ID {
	case token.Plus, token.Minus:
		return L4
	case token.Multiply, token.Divide:
		return L5
	case token.Permutation, token.Combination:
		return L6
	}
	if t.Class == token.ClassRelation {
		return L1
	}
	panic("expr: no binary precedence for " + t.Source)
}
