// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides a streaming longest-match lexer for calculator keys.
package scanner

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"nickandperla.net/fxprog/internal/token"
)

// Scanner tokenizes input by picking, at each position, the longest catalog
// spelling that matches. Unknown characters are recorded and skipped.
type Scanner struct {
	reader *bufio.Reader
	types  []*token.Type
	maxLen int
	pos    token.Position
	errs   []token.Position
	peeked *token.Token
}

// Option restricts or adjusts a Scanner.
type Option func(*Scanner)

// WithTypes limits matching to the types accepted by keep.
func WithTypes(keep func(*token.Type) bool) Option {
	return func(s *Scanner) {
		var kept []*token.Type
		for _, t := range s.types {
			if keep(t) {
				kept = append(kept, t)
			}
		}
		s.types = kept
	}
}

// ExpressionOnly accepts only keys that may appear inside an expression.
func ExpressionOnly() Option {
	return WithTypes((*token.Type).IsExpression)
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader, opts ...Option) *Scanner {
	s := &Scanner{
		reader: bufio.NewReader(r),
		types:  token.All(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range s.types {
		s.maxLen = max(s.maxLen, len(t.Source))
	}
	return s
}

// NewFromString creates a new Scanner from a string.
func NewFromString(src string, opts ...Option) *Scanner {
	return New(strings.NewReader(src), opts...)
}

// Errors returns the positions of characters that matched no key.
func (s *Scanner) Errors() []token.Position {
	return s.errs
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() (token.Token, error) {
	if s.peeked != nil {
		return *s.peeked, nil
	}
	tok, err := s.Next()
	if err != nil {
		return token.Token{}, err
	}
	s.peeked = &tok
	return tok, nil
}

// Next returns the next token. It returns io.EOF when the input is exhausted.
func (s *Scanner) Next() (token.Token, error) {
	if s.peeked != nil {
		tok := *s.peeked
		s.peeked = nil
		return tok, nil
	}

	for {
		buf, err := s.reader.Peek(s.maxLen)
		if len(buf) == 0 {
			if err == nil || err == bufio.ErrBufferFull {
				err = io.EOF
			}
			return token.Token{}, err
		}
		if err != nil && err != io.EOF {
			return token.Token{}, err
		}

		switch buf[0] {
		case ' ', '\t', '\r':
			s.advance(1, 1)
			continue
		case '\n':
			s.reader.Discard(1)
			s.pos.Index++
			s.pos.Line++
			s.pos.Column = 0
			continue
		}

		if t := s.match(buf); t != nil {
			start := s.pos
			s.advance(len(t.Source), utf8.RuneCountInString(t.Source))
			return token.Token{Type: t, Start: start, End: s.pos}, nil
		}

		_, size := utf8.DecodeRune(buf)
		s.errs = append(s.errs, s.pos)
		s.advance(size, 1)
	}
}

func (s *Scanner) match(buf []byte) *token.Type {
	var best *token.Type
	for _, t := range s.types {
		if len(t.Source) == 0 || !bytes.HasPrefix(buf, []byte(t.Source)) {
			continue
		}
		if best == nil || len(t.Source) > len(best.Source) {
			best = t
		}
	}
	return best
}

func (s *Scanner) advance(n, cols int) {
	s.reader.Discard(n)
	s.pos.Index += n
	s.pos.Column += cols
}

// All scans the rest of the input.
func (s *Scanner) All() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
}

// Scan lexes a whole string. The second result lists unknown characters.
func Scan(src string, opts ...Option) ([]token.Token, []token.Position) {
	s := NewFromString(src, opts...)
	toks, _ := s.All() // strings.Reader never fails
	return toks, s.Errors()
}
