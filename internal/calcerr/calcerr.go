// Package calcerr defines the runtime errors a calculation or program can raise.
package calcerr

import (
	"errors"
	"fmt"

	"nickandperla.net/fxprog/internal/token"
)

// Kind is the error class shown on the calculator display.
type Kind int

const (
	Syntax Kind = iota + 1
	Math
	Stack
	Argument
	Goto
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case Math:
		return "Math"
	case Stack:
		return "Stack"
	case Argument:
		return "Argument"
	case Goto:
		return "Goto"
	}
	return "Kind(?)"
}

// Error is a runtime error pinned to a token index and source position.
// Index may equal the token count when the input ran out.
type Error struct {
	Kind  Kind
	Pos   token.Position
	Index int
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s ERROR at %d:%d (%s)", e.Kind, e.Pos.Line+1, e.Pos.Column+1, e.Msg)
}

// At builds an error for tokens[i]. Past the end it points at the end of the
// last token.
func At(kind Kind, toks []token.Token, i int, msg string) *Error {
	var pos token.Position
	switch {
	case i >= 0 && i < len(toks):
		pos = toks[i].Start
	case len(toks) > 0:
		pos = toks[len(toks)-1].End
	}
	return &Error{Kind: kind, Pos: pos, Index: i, Msg: msg}
}

// Atf is At with a formatted message.
func Atf(kind Kind, toks []token.Token, i int, format string, args ...any) *Error {
	return At(kind, toks, i, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of a runtime error, or 0 when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
