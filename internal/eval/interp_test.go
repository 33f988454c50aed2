// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"context"
	"errors"
	"testing"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/calcerr"
	"nickandperla.net/fxprog/internal/scanner"
	"nickandperla.net/fxprog/internal/token"
)

// step is one expected event: a prompt (answered with answer) or a display.
type step struct {
	prompt calc.Var
	answer float64
	isAsk  bool

	shown  string
	value  float64
	isDisp bool
}

func ask(v calc.Var, answer float64) step { return step{prompt: v, answer: answer, isAsk: true} }

func show(shown string, value float64, isDisp bool) step {
	return step{shown: shown, value: value, isDisp: isDisp}
}

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, errs := scanner.Scan(src)
	if len(errs) != 0 {
		t.Fatalf("Scan(%q): unknown characters at %v", src, errs)
	}
	return toks
}

func sameTokens(got []token.Token, want []token.Token) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Type != want[i].Type {
			return false
		}
	}
	return true
}

// script runs src, checks the events against steps and stops after the last
// one. It returns the run error.
func script(t *testing.T, src string, c *calc.Context, steps []step, opts ...Option) error {
	t.Helper()
	i := 0
	next := func() (step, bool) {
		if i >= len(steps) {
			return step{}, false
		}
		s := steps[i]
		i++
		return s, true
	}
	opts = append(opts,
		WithPrompt(func(_ *calc.Context, v calc.Var) (float64, error) {
			s, ok := next()
			if !ok {
				return 0, ErrStop
			}
			if !s.isAsk {
				t.Errorf("%q event %d: got prompt for %v, want display %q", src, i-1, v, s.shown)
				return 0, ErrStop
			}
			if s.prompt != v {
				t.Errorf("%q event %d: prompt for %v, want %v", src, i-1, v, s.prompt)
			}
			return s.answer, nil
		}),
		WithDisplay(func(d Display) error {
			s, ok := next()
			if !ok {
				return ErrStop
			}
			if s.isAsk {
				t.Errorf("%q event %d: got display %q, want prompt", src, i-1, token.Source(d.Tokens))
				return ErrStop
			}
			if !sameTokens(d.Tokens, lex(t, s.shown)) || d.Value != s.value || d.IsDisp != s.isDisp {
				t.Errorf("%q event %d: got (%q, %v, %v), want (%q, %v, %v)", src, i-1,
					token.Source(d.Tokens), d.Value, d.IsDisp, s.shown, s.value, s.isDisp)
			}
			return nil
		}),
	)
	err := New(lex(t, src), c, opts...).Run(context.Background())
	if i < len(steps) && err == nil {
		t.Errorf("%q: run ended after %d of %d events", src, i, len(steps))
	}
	return err
}

func wantError(t *testing.T, src string, err error, kind calcerr.Kind, index int) {
	t.Helper()
	var e *calcerr.Error
	if !errors.As(err, &e) {
		t.Errorf("%q: got %v, want %v error at %d", src, err, kind, index)
		return
	}
	if e.Kind != kind || e.Index != index {
		t.Errorf("%q: got %v at %d (%s), want %v at %d", src, e.Kind, e.Index, e.Msg, kind, index)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		src   string
		kind  calcerr.Kind
		index int
	}{
		{"", calcerr.Syntax, 0},
		{"?", calcerr.Syntax, 1},
		{"?A", calcerr.Syntax, 1},
		{"??", calcerr.Syntax, 1},
		{"? ->", calcerr.Syntax, 2},
		{"? -> 6", calcerr.Syntax, 2},
		{"? -> ->", calcerr.Syntax, 2},
		{"? -> ?", calcerr.Syntax, 2},
		{"? -> A ->", calcerr.Syntax, 3},
		{"? -> Ans", calcerr.Syntax, 2},
		{"? -> Ans ->", calcerr.Syntax, 2},
		{"6: 1 div 0", calcerr.Math, 5},
		{"1+2 -> A6", calcerr.Syntax, 5},
		{"3: 0 => =>", calcerr.Syntax, 4},
		{"3: 0 => While 1", calcerr.Syntax, 4},
		{"3: 0 => WhileEnd", calcerr.Syntax, 4},
		{"3: 0 => Next", calcerr.Syntax, 4},
		{"3: 0 => Else", calcerr.Syntax, 4},
		{"1 =>", calcerr.Syntax, 2},
		{"1 => Break", calcerr.Syntax, 2},
		{"1 => While", calcerr.Syntax, 2},
		{"=> 1", calcerr.Syntax, 0},
		{"disp", calcerr.Stack, 0},
		{"1: : 2", calcerr.Stack, 2},
		{"While 1", calcerr.Stack, 0},
		{"1 Goto 1", calcerr.Syntax, 1},
		{"Lbl", calcerr.Argument, 1},
		{"Lbl .", calcerr.Argument, 1},
		{"Lbl 10", calcerr.Argument, 2},
		{"Lbl 01", calcerr.Argument, 2},
		{"Lbl 1+2", calcerr.Argument, 2},
		{"Lbl sqrt(5", calcerr.Argument, 1},
		{"Lbl Lbl", calcerr.Argument, 1},
		{"Lbl FreqOn", calcerr.Argument, 1},
		{"Lbl 2^2", calcerr.Argument, 2},
		{"Lbl 2?", calcerr.Argument, 2},
		{"Goto .", calcerr.Argument, 1},
		{"Goto 10", calcerr.Argument, 2},
		{"Goto 01", calcerr.Argument, 2},
		{"Goto 1+2", calcerr.Argument, 2},
		{"Goto sqrt(5", calcerr.Argument, 1},
		{"Goto Lbl", calcerr.Argument, 1},
		{"Goto FreqOn", calcerr.Argument, 1},
		{"Goto 2^2", calcerr.Argument, 2},
		{"Goto 2?", calcerr.Argument, 2},
		{"Goto 0", calcerr.Goto, 1},
		{"Goto 9", calcerr.Goto, 1},
		{"Lbl 1: Goto 2", calcerr.Goto, 4},
		{"Norm 3", calcerr.Argument, 1},
		{"Fix", calcerr.Argument, 1},
		{"Fix 12", calcerr.Syntax, 2},
		{"Deg 1", calcerr.Syntax, 1},
	}
	for _, tt := range tests {
		err := script(t, tt.src, calc.New(), nil)
		wantError(t, tt.src, err, tt.kind, tt.index)
	}
}

func TestAnsKeptOnAssignmentError(t *testing.T) {
	c := calc.New()
	err := script(t, "1+2 -> Ans", c, nil)
	wantError(t, "1+2 -> Ans", err, calcerr.Syntax, 4)
	if c.Vars.Get(calc.Ans) != 3 {
		t.Errorf("Ans = %v, want 3", c.Vars.Get(calc.Ans))
	}

	c = calc.New()
	err = script(t, "5 -> A: 1 div 0 -> A:", c, nil)
	wantError(t, "5 -> A: 1 div 0 -> A:", err, calcerr.Math, 7)
	if c.Vars.Get(calc.A) != 5 || c.Vars.Get(calc.Ans) != 5 {
		t.Errorf("A = %v, Ans = %v; want 5, 5", c.Vars.Get(calc.A), c.Vars.Get(calc.Ans))
	}
}

func TestGotoMissingAfterPrompt(t *testing.T) {
	c := calc.New()
	err := script(t, "2: ? -> A: Goto 6", c, []step{ask(calc.A, 3)})
	wantError(t, "2: ? -> A: Goto 6", err, calcerr.Goto, 7)
	var e *calcerr.Error
	if errors.As(err, &e) && e.Msg != "Label 6 not found" {
		t.Errorf("message = %q, want %q", e.Msg, "Label 6 not found")
	}

	err = script(t, "2: ? -> A: Goto 6 disp", calc.New(), []step{
		ask(calc.A, 3),
		show("Goto 6", 3, true),
	})
	wantError(t, "2: ? -> A: Goto 6 disp", err, calcerr.Goto, 7)
}

func TestFalseConditionSkips(t *testing.T) {
	tests := []struct {
		src   string
		shown string
	}{
		{"0 => 1 div 0", "0 => 1 div 0"},
		{"0 => Goto", "0 => Goto"},
		{"0 => Lbl", "0 => Lbl"},
		{"3: 0 => Break", "0 => Break"},
		{"3: 0 => To", "0 => To"},
		{"0 => ,", "0 => ,"},
		{"0 => =", "0 => ="},
		{"0 => 1 div 0 => 1 div 0", "0 => 1 div 0 => 1 div 0"},
		{"0 => Fix 9", "0 => Fix 9"},
	}
	for _, tt := range tests {
		err := script(t, tt.src, calc.New(), []step{show(tt.shown, 0, false), show(tt.shown, 0, false)})
		if err != nil {
			t.Errorf("%q: %v", tt.src, err)
		}
	}
}

func TestDisplaySequences(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		steps []step
	}{
		{"disp then end", "1+2 disp", []step{
			show("1+2", 3, true), show("", 3, false),
			show("1+2", 3, true), show("", 3, false),
		}},
		{"loop through label", "4*5: Lbl 3 disp Ans + 2: Goto 3", []step{
			show("Lbl 3", 20, true), show("Lbl 3", 22, true), show("Lbl 3", 24, true),
		}},
		{"jump to last line", "4*5: Goto 3: Ans + 2: Lbl 3", []step{
			show("Lbl 3", 20, false), show("Lbl 3", 20, false), show("Lbl 3", 20, false),
		}},
		{"countdown", "5 -> A: Lbl 2: A-1 -> A disp A => Goto 2: ", []step{
			show("A-1 -> A", 4, true),
			show("A-1 -> A", 3, true),
			show("A-1 -> A", 2, true),
			show("A-1 -> A", 1, true),
			show("A-1 -> A", 0, true),
			show("A => Goto 2", 0, false),
			show("A-1 -> A", 4, true),
		}},
		{"true condition runs label", "9 => Lbl 1 disp 10 disp Lbl 1: 11 disp Goto 1: 12", []step{
			show("9 => Lbl 1", 9, true),
			show("10", 10, true),
			show("11", 11, true),
			show("Lbl 1", 11, true),
			show("10", 10, true),
			show("11", 11, true),
		}},
		{"false condition skips to disp", "0 => Lbl sqrt(121 disp 10 disp Lbl 1: 11 disp Goto 1: 12", []step{
			show("10", 10, true),
			show("11", 11, true),
			show("11", 11, true),
			show("11", 11, true),
		}},
		{"jumps both ways", "0 disp Goto 7: 1 disp Lbl 8: 2 disp Lbl 7: 3 disp Goto 8: 4", []step{
			show("0", 0, true),
			show("3", 3, true),
			show("2", 2, true),
			show("3", 3, true),
			show("2", 2, true),
		}},
		{"nested condition", "1 => 0 => 3", []step{show("1 => 0 => 3", 0, false)}},
		{"nested condition with disp", "1 => 0 => 3 disp 8", []step{show("8", 8, false)}},
		{"skip then disp", "3: 0 => 1 disp 5", []step{show("5", 5, false)}},
		{"lone label", "Lbl 0", []step{show("Lbl 0", 0, false)}},
		{"prompt then label", "2: ? -> A: Lbl 6", []step{
			ask(calc.A, 3),
			show("Lbl 6", 3, false),
			ask(calc.A, 4),
			show("Lbl 6", 4, false),
		}},
		{"prompt after condition", "1-3 => ? -> A", []step{
			ask(calc.A, 7),
			show("? -> A", 7, false),
		}},
		{"trailing separator", "1+1:", []step{show("1+1", 2, false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := script(t, tt.src, calc.New(), tt.steps); err != nil {
				t.Fatalf("%q: %v", tt.src, err)
			}
		})
	}
}

func TestAssignmentDisplay(t *testing.T) {
	c := calc.New()
	steps := []step{show("1+2 -> A", 3, false), show("1+2 -> A", 3, false)}
	if err := script(t, "1+2 -> A", c, steps); err != nil {
		t.Fatal(err)
	}
	if c.Vars.Get(calc.A) != 3 || c.Vars.Get(calc.Ans) != 3 {
		t.Errorf("A = %v, Ans = %v; want 3, 3", c.Vars.Get(calc.A), c.Vars.Get(calc.Ans))
	}
}

func TestPromptLeavesAns(t *testing.T) {
	c := calc.New()
	c.Vars.Set(calc.Ans, 9)
	if err := script(t, "? -> B", c, []step{ask(calc.B, 4), show("? -> B", 4, false)}); err != nil {
		t.Fatal(err)
	}
	if c.Vars.Get(calc.B) != 4 || c.Vars.Get(calc.Ans) != 9 {
		t.Errorf("B = %v, Ans = %v; want 4, 9", c.Vars.Get(calc.B), c.Vars.Get(calc.Ans))
	}
}

func TestSetupStatements(t *testing.T) {
	c := calc.New()
	steps := []step{show("Rnd(Ans", 0.67, false)}
	if err := script(t, "Fix 2: Rad: FreqOff: 2 div 3: Rnd(Ans", c, steps); err != nil {
		t.Fatal(err)
	}
	if c.Setup.Digits != (calc.DisplayDigits{Kind: calc.Fix, N: 2}) {
		t.Errorf("digits = %v", c.Setup.Digits)
	}
	if c.Setup.Angle != calc.Rad || c.Setup.FreqOn {
		t.Errorf("setup = %+v", c.Setup)
	}

	c = calc.New()
	if err := script(t, "Sci 0: 1 => Gra", c, []step{show("1 => Gra", 1, false)}); err != nil {
		t.Fatal(err)
	}
	if c.Setup.Digits != (calc.DisplayDigits{Kind: calc.Sci, N: 10}) || c.Setup.Angle != calc.Gra {
		t.Errorf("setup = %+v", c.Setup)
	}
}

func TestSinglePass(t *testing.T) {
	c := calc.New()
	err := script(t, "1+2: 4 disp 5", c, []step{
		show("4", 4, true),
		show("5", 5, false),
	}, WithSinglePass())
	if err != nil {
		t.Fatal(err)
	}
	if c.Vars.Get(calc.Ans) != 5 {
		t.Errorf("Ans = %v, want 5", c.Vars.Get(calc.Ans))
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(lex(t, "Lbl 1: Goto 1"), calc.New()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestNoPromptHandler(t *testing.T) {
	err := New(lex(t, "? -> A"), calc.New()).Run(context.Background())
	if !errors.Is(err, ErrNoPrompt) {
		t.Errorf("Run = %v, want ErrNoPrompt", err)
	}
}

func TestEvents(t *testing.T) {
	c := calc.New()
	in := New(lex(t, "? -> A: A*2"), c)
	var got []float64
	for ev, err := range in.Events(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		switch ev := ev.(type) {
		case *PromptEvent:
			if ev.Var != calc.A {
				t.Errorf("prompt for %v, want A", ev.Var)
			}
			ev.Respond(21)
		case *DisplayEvent:
			got = append(got, ev.Value)
		}
		if len(got) == 2 {
			break
		}
	}
	if len(got) != 2 || got[0] != 42 || got[1] != 42 {
		t.Errorf("displays = %v, want [42 42]", got)
	}
	if c.Vars.Get(calc.A) != 21 {
		t.Errorf("A = %v, want 21", c.Vars.Get(calc.A))
	}
}

func TestEventsError(t *testing.T) {
	in := New(lex(t, "Goto 5"), calc.New())
	n := 0
	for ev, err := range in.Events(context.Background()) {
		n++
		if ev != nil {
			t.Errorf("unexpected event %T", ev)
		}
		wantError(t, "Goto 5", err, calcerr.Goto, 1)
	}
	if n != 1 {
		t.Errorf("got %d pairs, want 1", n)
	}
}

func TestEventsUnanswered(t *testing.T) {
	in := New(lex(t, "? -> A"), calc.New())
	var last error
	for _, err := range in.Events(context.Background()) {
		last = err
	}
	if !errors.Is(last, ErrNoAnswer) {
		t.Errorf("last error = %v, want ErrNoAnswer", last)
	}
}

func TestLabelIndex(t *testing.T) {
	idx := newLabelIndex(lex(t, "Lbl 1: Lbl 1: Lbl 2: Lbl"))
	tests := []struct {
		digit int
		pos   int
		ok    bool
	}{
		{1, 0, true},
		{2, 6, true},
		{3, -1, false},
	}
	for _, tt := range tests {
		pos, ok := idx.find(tt.digit)
		if pos != tt.pos || ok != tt.ok {
			t.Errorf("find(%d) = %d, %v; want %d, %v", tt.digit, pos, ok, tt.pos, tt.ok)
		}
	}
}
