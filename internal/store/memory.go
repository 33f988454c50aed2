package store

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"nickandperla.net/fxprog/internal/calc"
)

// Memory is an in-memory store for testing and for -db "".
type Memory struct {
	mu       sync.RWMutex
	programs *btree.BTreeG[Program]
	state    *calc.Context
	metadata map[string]string
}

func programLess(a, b Program) bool { return a.Name < b.Name }

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		programs: btree.NewG[Program](8, programLess),
		metadata: map[string]string{"schema_version": SchemaVersion},
	}
}

// Get retrieves a program by name.
func (m *Memory) Get(name string) (Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.programs.Get(Program{Name: name}); ok {
		return p, nil
	}
	return Program{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Put stores a program.
func (m *Memory) Put(p Program) error {
	if !ValidName(p.Name) {
		return fmt.Errorf("store: invalid program name %q", p.Name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs.ReplaceOrInsert(p)
	return nil
}

// Delete removes a program by name.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.programs.Delete(Program{Name: name}); !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// List returns the program names in order.
func (m *Memory) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, m.programs.Len())
	m.programs.Ascend(func(p Program) bool {
		names = append(names, p.Name)
		return true
	})
	return names, nil
}

// SaveState keeps a copy of c.
func (m *Memory) SaveState(c *calc.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = c.Clone()
	return nil
}

// LoadState copies the saved registers, mode and setup into c.
func (m *Memory) LoadState(c *calc.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return false, nil
	}
	c.Mode = m.state.Mode
	c.Setup = m.state.Setup
	c.Vars = m.state.Vars
	return true, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}
