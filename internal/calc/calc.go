// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package calc holds the calculator state shared by the evaluator and the
// interpreter: calculation mode, setup settings and the variable registers.
package calc

import (
	"math"
	"math/rand/v2"
	"strconv"
)

// Var names one of the eight registers.
type Var int

const (
	A Var = iota
	B
	C
	D
	X
	Y
	M
	Ans

	NumVars
)

var varNames = [NumVars]string{"A", "B", "C", "D", "X", "Y", "M", "Ans"}

func (v Var) String() string {
	if v < 0 || v >= NumVars {
		return "Var(?)"
	}
	return varNames[v]
}

// ParseVar returns the register with the given name.
func ParseVar(name string) (Var, bool) {
	for i, n := range varNames {
		if n == name {
			return Var(i), true
		}
	}
	return 0, false
}

// Variables is the fixed register file. The zero value has every register at 0.
type Variables [NumVars]float64

// Get returns the value of a register.
func (vs *Variables) Get(v Var) float64 { return vs[v] }

// Set stores a value in a register.
func (vs *Variables) Set(v Var, x float64) { vs[v] = x }

// Clear zeroes the memory registers. Ans is kept.
func (vs *Variables) Clear() {
	for v := A; v < Ans; v++ {
		vs[v] = 0
	}
}

// Mode is the calculation mode. Regression modes share Index 5 and differ by Sub.
type Mode struct {
	Index int
	Sub   int
}

var (
	Comp     = Mode{Index: 1}
	Cmplx    = Mode{Index: 2}
	Base     = Mode{Index: 3}
	SD       = Mode{Index: 4}
	RegLin   = Mode{Index: 5, Sub: 1}
	RegLog   = Mode{Index: 5, Sub: 2}
	RegExp   = Mode{Index: 5, Sub: 3}
	RegPwr   = Mode{Index: 5, Sub: 4}
	RegInv   = Mode{Index: 5, Sub: 5}
	RegQuad  = Mode{Index: 5, Sub: 6}
	RegABExp = Mode{Index: 5, Sub: 7}
)

func (m Mode) String() string {
	switch m {
	case Comp:
		return "COMP"
	case Cmplx:
		return "CMPLX"
	case Base:
		return "BASE"
	case SD:
		return "SD"
	case RegLin:
		return "REG Lin"
	case RegLog:
		return "REG Log"
	case RegExp:
		return "REG Exp"
	case RegPwr:
		return "REG Pwr"
	case RegInv:
		return "REG Inv"
	case RegQuad:
		return "REG Quad"
	case RegABExp:
		return "REG AB-Exp"
	}
	return "Mode(?)"
}

// AngleUnit selects how trigonometric arguments are interpreted.
type AngleUnit int

const (
	Deg AngleUnit = iota
	Rad
	Gra
)

// ToRad returns the factor converting one unit into radians.
func (u AngleUnit) ToRad() float64 {
	switch u {
	case Rad:
		return 1
	case Gra:
		return math.Pi / 200
	}
	return math.Pi / 180
}

// RightAngle is a quarter turn expressed in the unit.
func (u AngleUnit) RightAngle() float64 {
	switch u {
	case Rad:
		return math.Pi / 2
	case Gra:
		return 100
	}
	return 90
}

func (u AngleUnit) String() string {
	switch u {
	case Rad:
		return "Rad"
	case Gra:
		return "Gra"
	}
	return "Deg"
}

// ParseAngleUnit parses "Deg", "Rad" or "Gra" (case-insensitive first letter).
func ParseAngleUnit(s string) (AngleUnit, bool) {
	switch s {
	case "Deg", "deg", "D", "d":
		return Deg, true
	case "Rad", "rad", "R", "r":
		return Rad, true
	case "Gra", "gra", "G", "g":
		return Gra, true
	}
	return Deg, false
}

// DigitsKind is the display format family.
type DigitsKind int

const (
	Norm DigitsKind = iota
	Fix
	Sci
)

// DisplayDigits is a display format with its digit count:
// Fix 0-9 decimals, Sci 1-10 significant digits, Norm 1 or 2.
type DisplayDigits struct {
	Kind DigitsKind
	N    int
}

// Valid reports whether N is in range for Kind.
func (d DisplayDigits) Valid() bool {
	switch d.Kind {
	case Fix:
		return d.N >= 0 && d.N <= 9
	case Sci:
		return d.N >= 1 && d.N <= 10
	case Norm:
		return d.N == 1 || d.N == 2
	}
	return false
}

func (d DisplayDigits) String() string {
	switch d.Kind {
	case Fix:
		return "Fix " + strconv.Itoa(d.N)
	case Sci:
		return "Sci " + strconv.Itoa(d.N%10)
	}
	return "Norm " + strconv.Itoa(d.N)
}

// FractionFormat selects mixed or improper fraction display.
type FractionFormat int

const (
	Mixed FractionFormat = iota
	Improper
)

// ComplexFormat selects rectangular or polar complex display.
type ComplexFormat int

const (
	Rectangular ComplexFormat = iota
	Polar
)

// Setup is the set of user-selected settings.
type Setup struct {
	Angle    AngleUnit
	Digits   DisplayDigits
	Fraction FractionFormat
	Complex  ComplexFormat
	FreqOn   bool
}

// DefaultSetup returns the power-on settings.
func DefaultSetup() Setup {
	return Setup{
		Angle:  Deg,
		Digits: DisplayDigits{Kind: Norm, N: 2},
		FreqOn: true,
	}
}

// Context is the mutable calculator state. It is not safe for concurrent use.
type Context struct {
	Mode  Mode
	Setup Setup
	Vars  Variables

	rng *rand.Rand
}

// New returns a Context in COMP mode with default settings and zeroed registers.
func New() *Context {
	return &Context{Mode: Comp, Setup: DefaultSetup()}
}

// Seed makes Random deterministic.
func (c *Context) Seed(a, b uint64) {
	c.rng = rand.New(rand.NewPCG(a, b))
}

// Random returns a value in [0, 1).
func (c *Context) Random() float64 {
	if c.rng == nil {
		return rand.Float64()
	}
	return c.rng.Float64()
}

// Equal compares mode, settings and registers.
func (c *Context) Equal(o *Context) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Mode == o.Mode && c.Setup == o.Setup && c.Vars == o.Vars
}

// Clone returns a copy sharing the random source.
func (c *Context) Clone() *Context {
	cp := *c
	return &cp
}
