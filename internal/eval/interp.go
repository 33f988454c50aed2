// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval runs calculator programs: line units separated by ':' or
// 'disp', with prompts, assignments, conditional jumps and labels. A program
// restarts from its first token after the last line.
package eval

import (
	"context"
	"errors"

	"fortio.org/log"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/calcerr"
	"nickandperla.net/fxprog/internal/expr"
	"nickandperla.net/fxprog/internal/token"
)

var (
	// ErrStop may be returned by a prompt or display callback to end the run
	// without error.
	ErrStop = errors.New("eval: stopped")
	// ErrNoPrompt is returned when a program prompts and no handler is set.
	ErrNoPrompt = errors.New("eval: no prompt handler")
)

// Display is one display event: the token range the calculator echoes, the
// current value, and whether execution paused on 'disp'.
type Display struct {
	Context *calc.Context
	Tokens  []token.Token
	Value   float64
	IsDisp  bool
}

// PromptFunc answers a '?' prompt for the named register.
type PromptFunc func(c *calc.Context, v calc.Var) (float64, error)

// DisplayFunc receives display events.
type DisplayFunc func(d Display) error

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithPrompt sets the prompt handler.
func WithPrompt(f PromptFunc) Option {
	return func(in *Interpreter) { in.prompt = f }
}

// WithDisplay sets the display handler.
func WithDisplay(f DisplayFunc) Option {
	return func(in *Interpreter) { in.display = f }
}

// WithSinglePass stops after the last line instead of restarting.
func WithSinglePass() Option {
	return func(in *Interpreter) { in.singlePass = true }
}

// Interpreter runs one tokenized program against a Context.
type Interpreter struct {
	tokens     []token.Token
	calc       *calc.Context
	prompt     PromptFunc
	display    DisplayFunc
	singlePass bool
	labels     *labelIndex
}

// New creates an Interpreter for toks.
func New(toks []token.Token, c *calc.Context, opts ...Option) *Interpreter {
	in := &Interpreter{
		tokens: toks,
		calc:   c,
		prompt: func(*calc.Context, calc.Var) (float64, error) { return 0, ErrNoPrompt },
		labels: newLabelIndex(toks),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// state is the per-pass execution state.
type state struct {
	it    *token.Iterator
	value float64
	from  int // first token of the range echoed by the next display
}

// Run executes the program until a runtime error, a callback error or ctx
// is done. A callback returning ErrStop ends the run with a nil error.
func (in *Interpreter) Run(ctx context.Context) error {
	err := in.run(ctx)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

func (in *Interpreter) run(ctx context.Context) error {
	if len(in.tokens) == 0 {
		return calcerr.At(calcerr.Syntax, nil, 0, "Empty program")
	}
	for pass := 1; ; pass++ {
		log.LogVf("eval: pass %d", pass)
		x := &state{it: token.NewIterator(in.tokens)}
		for x.it.InBound() {
			if err := ctx.Err(); err != nil {
				return err
			}
			x.from = x.it.I
			if err := in.command(x); err != nil {
				return err
			}
			shown := x.it.Slice(x.from, x.it.I)
			tok, ok := x.it.Cur()
			switch {
			case !ok:
				if err := in.show(shown, x.value, false); err != nil {
					return err
				}
			case tok.Is(token.Separator):
				x.it.Next()
				if !x.it.InBound() {
					if err := in.show(shown, x.value, false); err != nil {
						return err
					}
				}
			case tok.Is(token.Disp):
				if err := in.show(shown, x.value, true); err != nil {
					return err
				}
				x.it.Next()
				if !x.it.InBound() {
					if err := in.show(nil, x.value, false); err != nil {
						return err
					}
				}
			default:
				return in.fail(x, calcerr.Syntax, "Ending expected")
			}
		}
		if in.singlePass {
			return nil
		}
	}
}

func (in *Interpreter) show(toks []token.Token, v float64, isDisp bool) error {
	log.LogVf("eval: display %q = %v disp=%v", token.Source(toks), v, isDisp)
	if in.display == nil {
		return nil
	}
	return in.display(Display{Context: in.calc, Tokens: toks, Value: v, IsDisp: isDisp})
}

func (in *Interpreter) fail(x *state, kind calcerr.Kind, msg string) error {
	return calcerr.At(kind, in.tokens, x.it.I, msg)
}

// command interprets one line unit starting at the current token.
func (in *Interpreter) command(x *state) error {
	tok, _ := x.it.Cur()
	switch {
	case tok.Is(token.Prompt):
		return in.ask(x)
	case tok.Type.IsExpression():
		return in.expression(x)
	case tok.Is(token.FatArrow):
		return in.fail(x, calcerr.Syntax, "Fat arrow can only follow an expression")
	case tok.Is(token.Lbl):
		return in.label(x)
	case tok.Is(token.Goto):
		return in.jump(x)
	case tok.Type.IsSetup():
		return in.setup(x)
	}
	return in.fail(x, calcerr.Stack, "Unexpected token")
}

// expectEnd requires the end of input, ':' or 'disp'.
func (in *Interpreter) expectEnd(x *state, kind calcerr.Kind) error {
	if x.it.InBound() && !x.it.CurIs(token.Separator) && !x.it.CurIs(token.Disp) {
		return in.fail(x, kind, "Ending expected")
	}
	return nil
}

// assignment reads "-> var" followed by the end of the line unit.
func (in *Interpreter) assignment(x *state) (calc.Var, error) {
	if !x.it.CurIs(token.Assign) {
		return 0, in.fail(x, calcerr.Syntax, "Expected ->")
	}
	x.it.Next()
	tok, ok := x.it.Cur()
	if !ok || tok.Type.Class != token.ClassVariable || tok.Is(token.VarAns) {
		return 0, in.fail(x, calcerr.Syntax, "Expected a variable")
	}
	x.it.Next()
	if err := in.expectEnd(x, calcerr.Syntax); err != nil {
		return 0, err
	}
	return tok.Type.Var, nil
}

func (in *Interpreter) ask(x *state) error {
	x.from = x.it.I
	x.it.Next()
	v, err := in.assignment(x)
	if err != nil {
		return err
	}
	log.LogVf("eval: prompt %v", v)
	answer, err := in.prompt(in.calc, v)
	if err != nil {
		return err
	}
	in.calc.Vars.Set(v, answer)
	x.value = answer
	return nil
}

func (in *Interpreter) expression(x *state) error {
	v, err := expr.Evaluate(x.it, in.calc, false)
	if err != nil {
		return err
	}
	in.calc.Vars.Set(calc.Ans, v)
	x.value = v
	switch {
	case x.it.CurIs(token.Assign):
		target, err := in.assignment(x)
		if err != nil {
			return err
		}
		in.calc.Vars.Set(target, v)
	case x.it.CurIs(token.FatArrow):
		return in.fatArrow(x)
	}
	return nil
}

// skippable lists what may follow a false condition.
func skippable(t *token.Type) bool {
	if t.IsExpression() || t.IsSetup() {
		return true
	}
	switch t.ID {
	case token.Prompt, token.Goto, token.Lbl, token.Break, token.To, token.Step:
		return true
	}
	return false
}

func (in *Interpreter) fatArrow(x *state) error {
	x.it.Next()
	tok, ok := x.it.Cur()
	if !ok {
		return in.fail(x, calcerr.Syntax, "Fat arrow expects a statement")
	}

	if in.calc.Vars.Get(calc.Ans) == 0 {
		if !skippable(tok.Type) {
			return in.fail(x, calcerr.Syntax, "Unexpected token")
		}
		for x.it.InBound() && !x.it.CurIs(token.Separator) && !x.it.CurIs(token.Disp) {
			x.it.Next()
		}
		if x.it.CurIs(token.Disp) {
			x.it.Next()
			x.from = x.it.I
			if x.it.InBound() {
				return in.command(x)
			}
		}
		return nil
	}

	switch {
	case tok.Type.IsExpression():
		return in.expression(x)
	case tok.Type.IsSetup():
		return in.setup(x)
	case tok.Is(token.Prompt):
		return in.ask(x)
	case tok.Is(token.Goto):
		return in.jump(x)
	case tok.Is(token.Lbl):
		return in.label(x)
	case tok.Is(token.Break):
		return in.fail(x, calcerr.Syntax, "Break outside a loop")
	}
	return in.fail(x, calcerr.Syntax, "Unexpected token")
}

// labelDigit reads the single digit operand of Lbl or Goto.
func (in *Interpreter) labelDigit(x *state) (int, error) {
	x.it.Next()
	tok, ok := x.it.Cur()
	if !ok || tok.Type.Class != token.ClassDigit {
		return 0, in.fail(x, calcerr.Argument, "Expected a label number")
	}
	x.it.Next()
	if err := in.expectEnd(x, calcerr.Argument); err != nil {
		return 0, err
	}
	return tok.Type.Digit, nil
}

func (in *Interpreter) label(x *state) error {
	_, err := in.labelDigit(x)
	return err
}

func (in *Interpreter) jump(x *state) error {
	digit, err := in.labelDigit(x)
	if err != nil {
		return err
	}
	if x.it.CurIs(token.Disp) {
		if err := in.show(x.it.Slice(x.from, x.it.I), x.value, true); err != nil {
			return err
		}
	}
	target, ok := in.labels.find(digit)
	if !ok {
		x.it.Prev()
		return calcerr.Atf(calcerr.Goto, in.tokens, x.it.I, "Label %d not found", digit)
	}
	log.LogVf("eval: Goto %d -> token %d", digit, target)
	x.it.I = target
	x.from = target
	return in.command(x)
}

func (in *Interpreter) setup(x *state) error {
	tok, _ := x.it.Cur()
	x.it.Next()
	s := &in.calc.Setup
	switch tok.Type.ID {
	case token.SetupDeg:
		s.Angle = calc.Deg
	case token.SetupRad:
		s.Angle = calc.Rad
	case token.SetupGra:
		s.Angle = calc.Gra
	case token.FreqOn:
		s.FreqOn = true
	case token.FreqOff:
		s.FreqOn = false
	case token.SetupFix, token.SetupSci, token.SetupNorm:
		d, ok := x.it.Cur()
		if !ok || d.Type.Class != token.ClassDigit {
			return in.fail(x, calcerr.Argument, "Expected a digit")
		}
		digits := calc.DisplayDigits{N: d.Type.Digit}
		switch tok.Type.ID {
		case token.SetupFix:
			digits.Kind = calc.Fix
		case token.SetupSci:
			digits.Kind = calc.Sci
			if digits.N == 0 {
				digits.N = 10
			}
		default:
			digits.Kind = calc.Norm
		}
		if !digits.Valid() {
			return in.fail(x, calcerr.Argument, "Digit out of range")
		}
		x.it.Next()
		s.Digits = digits
	}
	return in.expectEnd(x, calcerr.Syntax)
}
