// Package stack provides a fixed-capacity LIFO stack.
package stack

import "errors"

var (
	// ErrOverflow is returned by Push on a full stack.
	ErrOverflow = errors.New("stack overflow")
	// ErrEmpty is returned when reading from an empty stack.
	ErrEmpty = errors.New("stack empty")
)

// Stack holds at most limit items. Push never grows it past the limit.
type Stack[T any] struct {
	items []T
	limit int
}

// New creates a stack that holds at most limit items.
func New[T any](limit int) *Stack[T] {
	return &Stack[T]{items: make([]T, 0, limit), limit: limit}
}

// Push adds v on top.
func (s *Stack[T]) Push(v T) error {
	if len(s.items) >= s.limit {
		return ErrOverflow
	}
	s.items = append(s.items, v)
	return nil
}

// Pop removes and returns the top item.
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if len(s.items) == 0 {
		return zero, ErrEmpty
	}
	v := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

// Peek returns the top item.
func (s *Stack[T]) Peek() (T, error) {
	if len(s.items) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return s.items[len(s.items)-1], nil
}

// Replace overwrites the top item.
func (s *Stack[T]) Replace(v T) error {
	if len(s.items) == 0 {
		return ErrEmpty
	}
	s.items[len(s.items)-1] = v
	return nil
}

// At returns the item i places below the top (0 is the top).
func (s *Stack[T]) At(i int) (T, error) {
	if i < 0 || i >= len(s.items) {
		var zero T
		return zero, ErrEmpty
	}
	return s.items[len(s.items)-1-i], nil
}

// Len is the number of items.
func (s *Stack[T]) Len() int { return len(s.items) }

// Empty reports whether the stack has no items.
func (s *Stack[T]) Empty() bool { return len(s.items) == 0 }
