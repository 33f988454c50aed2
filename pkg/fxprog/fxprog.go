package fxprog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"fortio.org/log"

	"nickandperla.net/fxprog/internal/calc"
	"nickandperla.net/fxprog/internal/eval"
	"nickandperla.net/fxprog/internal/expr"
	"nickandperla.net/fxprog/internal/scanner"
	"nickandperla.net/fxprog/internal/token"
)

// Runtime is the calculator runtime: one Context, an optional store and the
// callbacks used by programs.
type Runtime struct {
	calc       *calc.Context
	store      Store
	prompt     PromptFunc
	display    DisplayFunc
	setup      []func(*calc.Context)
	singlePass bool
	noPersist  bool
	noDefaults bool
	err        error
}

// LexError lists the positions of characters that are not calculator keys.
type LexError struct {
	Positions []token.Position
}

func (e *LexError) Error() string {
	parts := make([]string, len(e.Positions))
	for i, p := range e.Positions {
		parts[i] = fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
	}
	return "unknown symbol at " + strings.Join(parts, ", ")
}

// New creates a runtime with the given options. Saved state is restored
// from the store before the setup options apply.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{calc: calc.New()}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		if r.store != nil {
			r.store.Close()
		}
		return nil, r.err
	}

	if r.store != nil {
		if !r.noPersist {
			ok, err := r.store.LoadState(r.calc)
			if err != nil {
				r.store.Close()
				return nil, fmt.Errorf("loading state: %w", err)
			}
			log.LogVf("fxprog: state restored=%v", ok)
		}
		if !r.noDefaults {
			if err := r.seed(); err != nil {
				r.store.Close()
				return nil, err
			}
		}
	}
	for _, f := range r.setup {
		f(r.calc)
	}
	return r, nil
}

// seedKey marks a store that already received DefaultPrograms, so deleting
// them all does not bring them back on the next start.
const seedKey = "defaults_seeded"

func (r *Runtime) seed() error {
	done, err := r.store.GetMetadata(seedKey)
	if err != nil || done != "" {
		return err
	}
	names, err := r.store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		for _, p := range DefaultPrograms {
			if err := r.store.Put(p); err != nil {
				return fmt.Errorf("seeding %s: %w", p.Name, err)
			}
		}
		log.Infof("Stored %d default programs", len(DefaultPrograms))
	}
	return r.store.SetMetadata(seedKey, "1")
}

// Lex tokenizes src. Unknown characters give a *LexError along with the
// tokens that were recognized.
func (r *Runtime) Lex(src string) ([]token.Token, error) {
	toks, bad := scanner.Scan(src)
	if len(bad) > 0 {
		return toks, &LexError{Positions: bad}
	}
	return toks, nil
}

// Eval evaluates one expression and stores the result in Ans.
func (r *Runtime) Eval(src string) (float64, error) {
	v, err := r.Value(src)
	if err != nil {
		return 0, err
	}
	r.calc.Vars.Set(calc.Ans, v)
	return v, nil
}

// Value evaluates one expression without changing Ans, as when answering a
// prompt.
func (r *Runtime) Value(src string) (float64, error) {
	toks, err := r.Lex(src)
	if err != nil {
		return 0, err
	}
	return expr.EvaluateAll(toks, r.calc)
}

// Run executes a program through the configured prompt and display
// handlers until it fails, a handler returns ErrStop, or ctx is done.
func (r *Runtime) Run(ctx context.Context, src string) error {
	toks, err := r.Lex(src)
	if err != nil {
		return err
	}
	return r.interpreter(toks, r.singlePass).Run(ctx)
}

// RunOnce is Run with a single pass over the program.
func (r *Runtime) RunOnce(ctx context.Context, src string) error {
	toks, err := r.Lex(src)
	if err != nil {
		return err
	}
	return r.interpreter(toks, true).Run(ctx)
}

// RunProgram runs a stored program.
func (r *Runtime) RunProgram(ctx context.Context, name string) error {
	p, err := r.LoadProgram(name)
	if err != nil {
		return err
	}
	return r.Run(ctx, p.Source)
}

// Events runs src as a generator of prompt and display events.
func (r *Runtime) Events(ctx context.Context, src string) (iter.Seq2[Event, error], error) {
	toks, err := r.Lex(src)
	if err != nil {
		return nil, err
	}
	return r.interpreter(toks, r.singlePass).Events(ctx), nil
}

func (r *Runtime) interpreter(toks []token.Token, singlePass bool) *eval.Interpreter {
	var opts []eval.Option
	if r.prompt != nil {
		opts = append(opts, eval.WithPrompt(r.prompt))
	}
	if r.display != nil {
		opts = append(opts, eval.WithDisplay(r.display))
	}
	if singlePass {
		opts = append(opts, eval.WithSinglePass())
	}
	return eval.New(toks, r.calc, opts...)
}

var errNoStore = errors.New("fxprog: no store configured")

// SaveProgram checks that src lexes and stores it under name.
func (r *Runtime) SaveProgram(name, src string) error {
	if r.store == nil {
		return errNoStore
	}
	if _, err := r.Lex(src); err != nil {
		return err
	}
	return r.store.Put(Program{Name: name, Source: src})
}

// LoadProgram retrieves a stored program.
func (r *Runtime) LoadProgram(name string) (Program, error) {
	if r.store == nil {
		return Program{}, errNoStore
	}
	return r.store.Get(name)
}

// DeleteProgram removes a stored program.
func (r *Runtime) DeleteProgram(name string) error {
	if r.store == nil {
		return errNoStore
	}
	return r.store.Delete(name)
}

// Programs lists the stored program names in order.
func (r *Runtime) Programs() ([]string, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.List()
}

// Context returns the calculator state shared by Eval and Run.
func (r *Runtime) Context() *calc.Context {
	return r.calc
}

// Close saves the calculator state and releases the store.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	var err error
	if !r.noPersist {
		err = r.store.SaveState(r.calc)
	}
	return errors.Join(err, r.store.Close())
}
