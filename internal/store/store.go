// Package store persists named calculator programs and the calculator
// state (registers, mode and setup) between sessions.
package store

import (
	"errors"

	"nickandperla.net/fxprog/internal/calc"
)

// ErrNotFound is returned by Get and Delete for an unknown program name.
var ErrNotFound = errors.New("store: program not found")

// Program is a named program source.
type Program struct {
	Name   string
	Source string
}

// Store is the interface for program and state persistence.
type Store interface {
	// Get retrieves a program by name.
	Get(name string) (Program, error)
	// Put stores a program, overwriting one with the same name.
	Put(p Program) error
	// Delete removes a program by name.
	Delete(name string) error
	// List returns the stored program names in ascending order.
	List() ([]string, error)
	// SaveState records the registers, mode and setup of c.
	SaveState(c *calc.Context) error
	// LoadState restores state saved by SaveState into c. It reports false
	// and leaves c untouched when nothing was saved.
	LoadState(c *calc.Context) (bool, error)
	// GetMetadata returns a store-level value, "" when unset.
	GetMetadata(key string) (string, error)
	// SetMetadata records a store-level value such as schema_version.
	SetMetadata(key, value string) error
	// Close releases resources.
	Close() error
}

// ValidName reports whether name can be used as a program name.
func ValidName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
