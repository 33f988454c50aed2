package eval

import (
	"context"
	"errors"
	"iter"

	"nickandperla.net/fxprog/internal/calc"
)

// ErrNoAnswer is returned when a PromptEvent was not answered before the
// consumer asked for the next event.
var ErrNoAnswer = errors.New("eval: prompt not answered")

// Event is a PromptEvent or a DisplayEvent.
type Event interface {
	isEvent()
}

// DisplayEvent wraps a Display.
type DisplayEvent struct {
	Display
}

// PromptEvent asks for a register value. Call Respond before advancing.
type PromptEvent struct {
	Context *calc.Context
	Var     calc.Var

	answer   float64
	answered bool
}

// Respond answers the prompt.
func (p *PromptEvent) Respond(v float64) {
	p.answer = v
	p.answered = true
}

func (*DisplayEvent) isEvent() {}
func (*PromptEvent) isEvent()  {}

// Events runs the program as a generator. Breaking out of the loop stops the
// program; a runtime error is delivered as the final pair with a nil Event.
func (in *Interpreter) Events(ctx context.Context) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		run := *in
		run.prompt = func(c *calc.Context, v calc.Var) (float64, error) {
			ev := &PromptEvent{Context: c, Var: v}
			if !yield(ev, nil) {
				return 0, ErrStop
			}
			if !ev.answered {
				return 0, ErrNoAnswer
			}
			return ev.answer, nil
		}
		run.display = func(d Display) error {
			if !yield(&DisplayEvent{Display: d}, nil) {
				return ErrStop
			}
			return nil
		}
		if err := run.Run(ctx); err != nil {
			yield(nil, err)
		}
	}
}
