// Package fxprog provides the public API for the calculator runtime.
package fxprog

import (
	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/eval"
	"nickandperla.net/fxprog/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		if r.err != nil {
			return
		}
		s, err := store.NewSQLite(path)
		if err != nil {
			r.err = err
			return
		}
		r.setStore(s)
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.setStore(store.NewMemory())
	}
}

// WithStore uses a caller-provided store. The runtime closes it on Close.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.setStore(s)
	}
}

// setStore replaces the configured store, closing the one it replaces.
func (r *Runtime) setStore(s Store) {
	if r.store != nil && r.store != s {
		r.store.Close()
	}
	r.store = s
}

// WithPrompt sets the handler answering '?' prompts.
func WithPrompt(f PromptFunc) Option {
	return func(r *Runtime) {
		r.prompt = f
	}
}

// WithDisplay sets the handler receiving display events.
func WithDisplay(f DisplayFunc) Option {
	return func(r *Runtime) {
		r.display = f
	}
}

// WithAngleUnit sets the initial angle unit.
func WithAngleUnit(u calc.AngleUnit) Option {
	return func(r *Runtime) {
		r.setup = append(r.setup, func(c *calc.Context) { c.Setup.Angle = u })
	}
}

// WithDigits sets the initial display digits, used by Rnd(.
func WithDigits(d calc.DisplayDigits) Option {
	return func(r *Runtime) {
		r.setup = append(r.setup, func(c *calc.Context) { c.Setup.Digits = d })
	}
}

// WithSeed makes Ran# deterministic.
func WithSeed(a, b uint64) Option {
	return func(r *Runtime) {
		r.setup = append(r.setup, func(c *calc.Context) { c.Seed(a, b) })
	}
}

// WithSinglePass stops programs after their last line instead of restarting.
func WithSinglePass() Option {
	return func(r *Runtime) {
		r.singlePass = true
	}
}

// WithoutPersistence skips loading and saving calculator state. Programs
// are still read from and written to the store.
func WithoutPersistence() Option {
	return func(r *Runtime) {
		r.noPersist = true
	}
}

// WithNoDefaults skips seeding DefaultPrograms into an empty store.
func WithNoDefaults() Option {
	return func(r *Runtime) {
		r.noDefaults = true
	}
}

// Store interface for custom stores.
type Store = store.Store

// Program is a named program source.
type Program = store.Program

// Display is one display event.
type Display = eval.Display

// PromptFunc answers a '?' prompt for a register.
type PromptFunc = eval.PromptFunc

// DisplayFunc receives display events.
type DisplayFunc = eval.DisplayFunc

// Event is a *PromptEvent or a *DisplayEvent yielded by Runtime.Events.
type Event = eval.Event

// PromptEvent asks for a register value; answer it with Respond.
type PromptEvent = eval.PromptEvent

// DisplayEvent carries one Display.
type DisplayEvent = eval.DisplayEvent

// ErrStop may be returned by a prompt or display handler to end a run.
var ErrStop = eval.ErrStop

// ErrNotFound is returned for unknown program names.
var ErrNotFound = store.ErrNotFound
