// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the calculator key catalog, scanned tokens and the
// cursor used to walk them.
package token

import (
	"strings"

	"nickandperla.net/fxprog/internal/calc"
)

// ID identifies one key of the catalog.
type ID int

const (
	Num0 ID = iota
	Num1
	Num2
	Num3
	Num4
	Num5
	Num6
	Num7
	Num8
	Num9
	Exp
	Dot

	VarA
	VarB
	VarC
	VarD
	VarX
	VarY
	VarM
	VarAns

	// Constants
	Pi
	Euler
	ProtonMass
	NeutronMass
	ElectronMass
	MuonMass
	BohrRadius
	Planck
	NuclearMagneton
	BohrMagneton
	ReducedPlanck
	FineStructure
	ElectronRadius
	ComptonWavelength
	ProtonGyromagnetic
	ProtonCompton
	NeutronCompton
	Rydberg
	AtomicMass
	ProtonMoment
	ElectronMoment
	NeutronMoment
	MuonMoment
	Faraday
	ElementaryCharge
	Avogadro
	Boltzmann
	MolarVolume
	GasConstant
	LightSpeed
	FirstRadiation
	SecondRadiation
	StefanBoltzmann
	ElectricConstant
	MagneticConstant
	FluxQuantum
	Gravity
	ConductanceQuantum
	Impedance
	CelsiusZero
	Gravitation
	Atmosphere

	// Suffix functions
	Reciprocal
	Factorial
	Cube
	Square
	Percent
	AsDeg
	AsRad
	AsGra

	// Relations
	Equal
	NotEqual
	Greater
	Less
	GreaterEq
	LessEq

	// Infix
	Multiply
	Divide
	Permutation
	Combination

	// Infix opened with a parenthesis
	Power
	Root

	// Parenthetical functions
	Cbrt
	Sqrt
	Log
	TenPow
	Ln
	EPow
	Sin
	Asin
	Sinh
	Asinh
	Cos
	Acos
	Cosh
	Acosh
	Tan
	Atan
	Tanh
	Atanh
	Pol
	Rec
	Rnd
	Abs
	OpenBracket

	Ran
	Frac
	Neg
	DegMark
	CloseBracket
	Comma
	MPlus
	MMinus
	Plus
	Minus
	ClrMemory

	// Setup
	SetupDeg
	SetupRad
	SetupGra
	SetupFix
	SetupSci
	SetupNorm
	FreqOn
	FreqOff

	// Program
	Prompt
	Assign
	Separator
	Disp
	FatArrow
	Goto
	Lbl
	While
	WhileEnd
	Next
	Break
	For
	To
	Step
	Else
	IfEnd
	If
	Then

	NumIDs
)

// Class is the variant tag of a Type. Only the fields the class needs are set.
type Class int

const (
	ClassDigit Class = iota
	ClassExp
	ClassDot
	ClassVariable
	ClassConstant
	ClassRandom
	ClassSuffix
	ClassRelation
	ClassInfix
	ClassInfixParen
	ClassParenFunc
	ClassFrac
	ClassNeg
	ClassDeg
	ClassCloseBracket
	ClassComma
	ClassMemory
	ClassPlus
	ClassMinus
	ClassClrMemory
	ClassSetup
	ClassProgram
)

// Arity is the set of accepted argument counts of a parenthetical function.
type Arity uint16

// Args builds an Arity from the listed counts.
func Args(n ...int) Arity {
	var a Arity
	for _, k := range n {
		a |= 1 << k
	}
	return a
}

// Allows reports whether n arguments are accepted.
func (a Arity) Allows(n int) bool {
	return n >= 0 && n < 16 && a&(1<<n) != 0
}

// Type is one catalog entry. Types are singletons; compare them by pointer or ID.
type Type struct {
	ID     ID
	Source string
	Shown  string
	Class  Class

	Digit int      // ClassDigit
	Var   calc.Var // ClassVariable
	Value float64  // ClassConstant
	Arity Arity    // ClassParenFunc, ClassInfixParen
}

func (t *Type) String() string {
	if t.Shown != "" {
		return t.Shown
	}
	return t.Source
}

// IsLiteral reports whether t is part of a numeric literal.
func (t *Type) IsLiteral() bool {
	return t.Class == ClassDigit || t.Class == ClassExp || t.Class == ClassDot
}

// IsValued reports whether t produces a value on its own.
func (t *Type) IsValued() bool {
	return t.Class == ClassVariable || t.Class == ClassConstant || t.Class == ClassRandom
}

// IsExpression reports whether t may appear inside an expression.
func (t *Type) IsExpression() bool {
	return t.Class != ClassSetup && t.Class != ClassProgram
}

// IsSetup reports whether t is a setup key.
func (t *Type) IsSetup() bool { return t.Class == ClassSetup }

// IsProgram reports whether t is a program command key.
func (t *Type) IsProgram() bool { return t.Class == ClassProgram }

var types = [NumIDs]Type{
	Num0: {Source: "0", Class: ClassDigit, Digit: 0},
	Num1: {Source: "1", Class: ClassDigit, Digit: 1},
	Num2: {Source: "2", Class: ClassDigit, Digit: 2},
	Num3: {Source: "3", Class: ClassDigit, Digit: 3},
	Num4: {Source: "4", Class: ClassDigit, Digit: 4},
	Num5: {Source: "5", Class: ClassDigit, Digit: 5},
	Num6: {Source: "6", Class: ClassDigit, Digit: 6},
	Num7: {Source: "7", Class: ClassDigit, Digit: 7},
	Num8: {Source: "8", Class: ClassDigit, Digit: 8},
	Num9: {Source: "9", Class: ClassDigit, Digit: 9},
	Exp:  {Source: "E", Class: ClassExp},
	Dot:  {Source: ".", Class: ClassDot},

	VarA:   {Source: "A", Class: ClassVariable, Var: calc.A},
	VarB:   {Source: "B", Class: ClassVariable, Var: calc.B},
	VarC:   {Source: "C", Class: ClassVariable, Var: calc.C},
	VarD:   {Source: "D", Class: ClassVariable, Var: calc.D},
	VarX:   {Source: "X", Class: ClassVariable, Var: calc.X},
	VarY:   {Source: "Y", Class: ClassVariable, Var: calc.Y},
	VarM:   {Source: "M", Class: ClassVariable, Var: calc.M},
	VarAns: {Source: "Ans", Class: ClassVariable, Var: calc.Ans},

	Pi:                 {Source: "pi", Shown: "π", Class: ClassConstant, Value: 3.1415926535898},
	Euler:              {Source: "e", Class: ClassConstant, Value: 2.71828182845904},
	ProtonMass:         {Source: "mp", Class: ClassConstant, Value: 1.672621777e-27},
	NeutronMass:        {Source: "mn", Class: ClassConstant, Value: 1.674927351e-27},
	ElectronMass:       {Source: "me", Class: ClassConstant, Value: 9.10938291e-31},
	MuonMass:           {Source: "mmu", Shown: "mμ", Class: ClassConstant, Value: 1.883531475e-28},
	BohrRadius:         {Source: "a0", Class: ClassConstant, Value: 5.2917721092e-11},
	Planck:             {Source: "h", Class: ClassConstant, Value: 6.62606957e-34},
	NuclearMagneton:    {Source: "muN", Shown: "μN", Class: ClassConstant, Value: 5.05078353e-27},
	BohrMagneton:       {Source: "muB", Shown: "μB", Class: ClassConstant, Value: 9.27400968e-24},
	ReducedPlanck:      {Source: "hbar", Shown: "ħ", Class: ClassConstant, Value: 1.054571726e-34},
	FineStructure:      {Source: "alpha", Shown: "α", Class: ClassConstant, Value: 7.2973525698e-3},
	ElectronRadius:     {Source: "re", Class: ClassConstant, Value: 2.8179403267e-15},
	ComptonWavelength:  {Source: "lambdap", Shown: "λc", Class: ClassConstant, Value: 2.4263102389e-12},
	ProtonGyromagnetic: {Source: "gammap", Shown: "γp", Class: ClassConstant, Value: 2.675222005e8},
	ProtonCompton:      {Source: "lambdacp", Shown: "λcp", Class: ClassConstant, Value: 1.32140985623e-15},
	NeutronCompton:     {Source: "lambdacn", Shown: "λcn", Class: ClassConstant, Value: 1.3195909068e-15},
	Rydberg:            {Source: "Rinf", Shown: "R∞", Class: ClassConstant, Value: 10973731.568539},
	AtomicMass:         {Source: "u", Class: ClassConstant, Value: 1.660538921e-27},
	ProtonMoment:       {Source: "mup", Shown: "μp", Class: ClassConstant, Value: 1.410606743e-26},
	ElectronMoment:     {Source: "mue", Shown: "μe", Class: ClassConstant, Value: -9.2847643e-24},
	NeutronMoment:      {Source: "mun", Shown: "μn", Class: ClassConstant, Value: -9.6623647e-27},
	MuonMoment:         {Source: "mumu", Shown: "μμ", Class: ClassConstant, Value: -4.49044807e-26},
	Faraday:            {Source: "F", Class: ClassConstant, Value: 96485.3365},
	ElementaryCharge:   {Source: "eC", Shown: "e", Class: ClassConstant, Value: 1.602176565e-19},
	Avogadro:           {Source: "NA", Class: ClassConstant, Value: 6.02214129e23},
	Boltzmann:          {Source: "k", Class: ClassConstant, Value: 1.3806488e-23},
	MolarVolume:        {Source: "Vm", Class: ClassConstant, Value: 0.022413968},
	GasConstant:        {Source: "R", Class: ClassConstant, Value: 8.3144621},
	LightSpeed:         {Source: "c0", Class: ClassConstant, Value: 299792458},
	FirstRadiation:     {Source: "c1", Class: ClassConstant, Value: 3.74177153e-16},
	SecondRadiation:    {Source: "c2", Class: ClassConstant, Value: 0.01438777},
	StefanBoltzmann:    {Source: "sigma", Shown: "σ", Class: ClassConstant, Value: 5.670373e-8},
	ElectricConstant:   {Source: "epsilon0", Shown: "ε0", Class: ClassConstant, Value: 8.854187817e-12},
	MagneticConstant:   {Source: "mu0", Shown: "μ0", Class: ClassConstant, Value: 1.2566370614e-6},
	FluxQuantum:        {Source: "phi0", Shown: "φ0", Class: ClassConstant, Value: 2.067833758e-15},
	Gravity:            {Source: "g", Class: ClassConstant, Value: 9.80665},
	ConductanceQuantum: {Source: "G0", Class: ClassConstant, Value: 7.7480917346e-5},
	Impedance:          {Source: "Z0", Class: ClassConstant, Value: 376.730313461},
	CelsiusZero:        {Source: "t", Class: ClassConstant, Value: 273.15},
	Gravitation:        {Source: "G", Class: ClassConstant, Value: 6.67384e-11},
	Atmosphere:         {Source: "atm", Class: ClassConstant, Value: 101325},

	Reciprocal: {Source: "^-1", Shown: "⁻¹", Class: ClassSuffix},
	Factorial:  {Source: "!", Class: ClassSuffix},
	Cube:       {Source: "^3", Shown: "³", Class: ClassSuffix},
	Square:     {Source: "^2", Shown: "²", Class: ClassSuffix},
	Percent:    {Source: "%", Class: ClassSuffix},
	AsDeg:      {Source: "asD", Shown: "°", Class: ClassSuffix},
	AsRad:      {Source: "asR", Shown: "ʳ", Class: ClassSuffix},
	AsGra:      {Source: "asG", Shown: "ᵍ", Class: ClassSuffix},

	Equal:     {Source: "=", Class: ClassRelation},
	NotEqual:  {Source: "<>", Shown: "≠", Class: ClassRelation},
	Greater:   {Source: ">", Class: ClassRelation},
	Less:      {Source: "<", Class: ClassRelation},
	GreaterEq: {Source: ">=", Shown: "≥", Class: ClassRelation},
	LessEq:    {Source: "<=", Shown: "≤", Class: ClassRelation},

	Multiply:    {Source: "*", Shown: "×", Class: ClassInfix},
	Divide:      {Source: "div", Shown: "÷", Class: ClassInfix},
	Permutation: {Source: "Per", Shown: "P", Class: ClassInfix},
	Combination: {Source: "Com", Shown: "C", Class: ClassInfix},

	Power: {Source: "^(", Class: ClassInfixParen, Arity: 1 << 1},
	Root:  {Source: "rt(", Shown: "x√(", Class: ClassInfixParen, Arity: 1 << 1},

	Cbrt:        {Source: "cbrt(", Shown: "∛(", Class: ClassParenFunc, Arity: 1 << 1},
	Sqrt:        {Source: "sqrt(", Shown: "√(", Class: ClassParenFunc, Arity: 1 << 1},
	Log:         {Source: "log(", Class: ClassParenFunc, Arity: 1<<1 | 1<<2},
	TenPow:      {Source: "10^(", Class: ClassParenFunc, Arity: 1 << 1},
	Ln:          {Source: "ln(", Class: ClassParenFunc, Arity: 1 << 1},
	EPow:        {Source: "e^(", Class: ClassParenFunc, Arity: 1 << 1},
	Sin:         {Source: "sin(", Class: ClassParenFunc, Arity: 1 << 1},
	Asin:        {Source: "asin(", Shown: "sin⁻¹(", Class: ClassParenFunc, Arity: 1 << 1},
	Sinh:        {Source: "sinh(", Class: ClassParenFunc, Arity: 1 << 1},
	Asinh:       {Source: "asinh(", Shown: "sinh⁻¹(", Class: ClassParenFunc, Arity: 1 << 1},
	Cos:         {Source: "cos(", Class: ClassParenFunc, Arity: 1 << 1},
	Acos:        {Source: "acos(", Shown: "cos⁻¹(", Class: ClassParenFunc, Arity: 1 << 1},
	Cosh:        {Source: "cosh(", Class: ClassParenFunc, Arity: 1 << 1},
	Acosh:       {Source: "acosh(", Shown: "cosh⁻¹(", Class: ClassParenFunc, Arity: 1 << 1},
	Tan:         {Source: "tan(", Class: ClassParenFunc, Arity: 1 << 1},
	Atan:        {Source: "atan(", Shown: "tan⁻¹(", Class: ClassParenFunc, Arity: 1 << 1},
	Tanh:        {Source: "tanh(", Class: ClassParenFunc, Arity: 1 << 1},
	Atanh:       {Source: "atanh(", Shown: "tanh⁻¹(", Class: ClassParenFunc, Arity: 1 << 1},
	Pol:         {Source: "Pol(", Class: ClassParenFunc, Arity: 1 << 2},
	Rec:         {Source: "Rec(", Class: ClassParenFunc, Arity: 1 << 2},
	Rnd:         {Source: "Rnd(", Class: ClassParenFunc, Arity: 1 << 1},
	Abs:         {Source: "Abs(", Class: ClassParenFunc, Arity: 1 << 1},
	OpenBracket: {Source: "(", Class: ClassParenFunc, Arity: 1 << 1},

	Ran:          {Source: "Ran#", Class: ClassRandom},
	Frac:         {Source: "/", Shown: "┘", Class: ClassFrac},
	Neg:          {Source: "neg", Shown: "(-)", Class: ClassNeg},
	DegMark:      {Source: "deg", Shown: "°'\"", Class: ClassDeg},
	CloseBracket: {Source: ")", Class: ClassCloseBracket},
	Comma:        {Source: ",", Class: ClassComma},
	MPlus:        {Source: "M+", Class: ClassMemory},
	MMinus:       {Source: "M-", Class: ClassMemory},
	Plus:         {Source: "+", Class: ClassPlus},
	Minus:        {Source: "-", Class: ClassMinus},
	ClrMemory:    {Source: "ClrMemory", Class: ClassClrMemory},

	SetupDeg:  {Source: "Deg", Class: ClassSetup},
	SetupRad:  {Source: "Rad", Class: ClassSetup},
	SetupGra:  {Source: "Gra", Class: ClassSetup},
	SetupFix:  {Source: "Fix", Class: ClassSetup},
	SetupSci:  {Source: "Sci", Class: ClassSetup},
	SetupNorm: {Source: "Norm", Class: ClassSetup},
	FreqOn:    {Source: "FreqOn", Class: ClassSetup},
	FreqOff:   {Source: "FreqOff", Class: ClassSetup},

	Prompt:    {Source: "?", Class: ClassProgram},
	Assign:    {Source: "->", Shown: "→", Class: ClassProgram},
	Separator: {Source: ":", Class: ClassProgram},
	Disp:      {Source: "disp", Shown: "◢", Class: ClassProgram},
	FatArrow:  {Source: "=>", Shown: "⇒", Class: ClassProgram},
	Goto:      {Source: "Goto", Class: ClassProgram},
	Lbl:       {Source: "Lbl", Class: ClassProgram},
	While:     {Source: "While", Class: ClassProgram},
	WhileEnd:  {Source: "WhileEnd", Class: ClassProgram},
	Next:      {Source: "Next", Class: ClassProgram},
	Break:     {Source: "Break", Class: ClassProgram},
	For:       {Source: "For", Class: ClassProgram},
	To:        {Source: "To", Class: ClassProgram},
	Step:      {Source: "Step", Class: ClassProgram},
	Else:      {Source: "Else", Class: ClassProgram},
	IfEnd:     {Source: "IfEnd", Class: ClassProgram},
	If:        {Source: "If", Class: ClassProgram},
	Then:      {Source: "Then", Class: ClassProgram},
}

func init() {
	for i := range types {
		types[i].ID = ID(i)
	}
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) *Type {
	return &types[id]
}

// All returns every catalog entry in ID order.
func All() []*Type {
	out := make([]*Type, NumIDs)
	for i := range types {
		out[i] = &types[i]
	}
	return out
}

// Position locates a token in the source. Index is a byte offset; Line and
// Column are 0-based.
type Position struct {
	Index  int
	Line   int
	Column int
}

// Token is one scanned key with its source span.
type Token struct {
	Type  *Type
	Start Position
	End   Position
}

// Is reports whether the token has the given ID.
func (t Token) Is(id ID) bool { return t.Type != nil && t.Type.ID == id }

func (t Token) String() string { return t.Type.String() }

// Source renders tokens with their canonical spellings, separated by spaces.
func Source(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Type.Source
	}
	return strings.Join(parts, " ")
}

// Shown renders tokens the way the display shows them.
func Shown(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Type.String())
	}
	return b.String()
}

// Iterator is the cursor over a token slice shared by the interpreter and the
// evaluator. Only the current holder advances it.
type Iterator struct {
	Tokens []Token
	I      int
}

// NewIterator returns a cursor at the first token.
func NewIterator(toks []Token) *Iterator {
	return &Iterator{Tokens: toks}
}

// InBound reports whether the cursor points at a token.
func (it *Iterator) InBound() bool {
	return it.I >= 0 && it.I < len(it.Tokens)
}

// Cur returns the current token. ok is false past the end.
func (it *Iterator) Cur() (Token, bool) {
	if !it.InBound() {
		return Token{}, false
	}
	return it.Tokens[it.I], true
}

// CurIs reports whether the current token has the given ID.
func (it *Iterator) CurIs(id ID) bool {
	t, ok := it.Cur()
	return ok && t.Is(id)
}

// Next advances the cursor.
func (it *Iterator) Next() { it.I++ }

// Prev moves the cursor back one token.
func (it *Iterator) Prev() { it.I-- }

// Len is the number of tokens.
func (it *Iterator) Len() int { return len(it.Tokens) }

// Slice returns tokens in [from, to), clamped to the slice.
func (it *Iterator) Slice(from, to int) []Token {
	if to > len(it.Tokens) {
		to = len(it.Tokens)
	}
	if from > to {
		from = to
	}
	return it.Tokens[from:to]
}
