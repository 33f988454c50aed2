package store

import (
	"database/sql"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"nickandperla.net/fxprog/internal/calc"
)

func tempDB(t *testing.T, pattern string) string {
	t.Helper()
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(path) })
	return path
}

// exercise runs the same checks against any Store.
func exercise(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: expected ErrNotFound, got %v", err)
	}
	if err := s.Put(Program{Name: "bad name", Source: "1"}); err == nil {
		t.Error("Put with invalid name should fail")
	}

	for _, p := range []Program{
		{Name: "sum", Source: "? -> A: ? -> B: A+B"},
		{Name: "count", Source: "0 -> A: Lbl 1: A+1 -> A disp Goto 1"},
		{Name: "area", Source: "? -> A: pi A x^2"},
	} {
		if err := s.Put(p); err != nil {
			t.Fatalf("Put %s failed: %v", p.Name, err)
		}
	}

	got, err := s.Get("sum")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Source != "? -> A: ? -> B: A+B" {
		t.Errorf("expected sum source, got %q", got.Source)
	}

	if err := s.Put(Program{Name: "sum", Source: "? -> A: A+A"}); err != nil {
		t.Fatalf("Put overwrite failed: %v", err)
	}
	got, _ = s.Get("sum")
	if got.Source != "? -> A: A+A" {
		t.Errorf("expected overwritten source, got %q", got.Source)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"area", "count", "sum"}; !slices.Equal(names, want) {
		t.Errorf("List: expected %v, got %v", want, names)
	}

	if err := s.Delete("count"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("count"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: expected ErrNotFound, got %v", err)
	}

	if v, err := s.GetMetadata("schema_version"); err != nil || v != SchemaVersion {
		t.Errorf("schema_version = %q, %v; want %q", v, err, SchemaVersion)
	}
	if v, err := s.GetMetadata("unset"); err != nil || v != "" {
		t.Errorf("unset metadata = %q, %v; want empty", v, err)
	}
	if err := s.SetMetadata("defaults_seeded", "1"); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := s.SetMetadata("defaults_seeded", "2"); err != nil {
		t.Fatalf("SetMetadata overwrite failed: %v", err)
	}
	if v, _ := s.GetMetadata("defaults_seeded"); v != "2" {
		t.Errorf("defaults_seeded = %q, want 2", v)
	}

	c := calc.New()
	ok, err := s.LoadState(c)
	if err != nil || ok {
		t.Fatalf("LoadState on empty store: got %v, %v", ok, err)
	}
	if !c.Equal(calc.New()) {
		t.Error("LoadState on empty store changed the context")
	}

	c.Vars.Set(calc.A, 1.5)
	c.Vars.Set(calc.M, -2e-7)
	c.Vars.Set(calc.Ans, 42)
	c.Setup.Angle = calc.Rad
	c.Setup.Digits = calc.DisplayDigits{Kind: calc.Sci, N: 4}
	c.Setup.FreqOn = false
	c.Mode = calc.SD
	if err := s.SaveState(c); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	restored := calc.New()
	ok, err = s.LoadState(restored)
	if err != nil || !ok {
		t.Fatalf("LoadState: got %v, %v", ok, err)
	}
	if !restored.Equal(c) {
		t.Errorf("LoadState: expected %+v, got %+v", c, restored)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exercise(t, s)
}

func TestMemoryStateIsCopied(t *testing.T) {
	s := NewMemory()
	c := calc.New()
	c.Vars.Set(calc.B, 7)
	s.SaveState(c)
	c.Vars.Set(calc.B, 8)

	restored := calc.New()
	s.LoadState(restored)
	if restored.Vars.Get(calc.B) != 7 {
		t.Errorf("expected saved B = 7, got %v", restored.Vars.Get(calc.B))
	}
}

func TestSQLiteStore(t *testing.T) {
	path := tempDB(t, "fxprog-test-*.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	exercise(t, s)
	s.Close()

	// Reopen and verify persistence
	s, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLite store: %v", err)
	}
	defer s.Close()

	got, err := s.Get("area")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Source != "? -> A: pi A x^2" {
		t.Errorf("expected area source after reopen, got %q", got.Source)
	}

	c := calc.New()
	if ok, err := s.LoadState(c); err != nil || !ok {
		t.Fatalf("LoadState after reopen: got %v, %v", ok, err)
	}
	if c.Vars.Get(calc.Ans) != 42 || c.Setup.Angle != calc.Rad || c.Mode != calc.SD {
		t.Errorf("unexpected state after reopen: %+v", c)
	}

	v, err := s.GetMetadata("defaults_seeded")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if v != "2" {
		t.Errorf("expected metadata to survive reopen, got %q", v)
	}
}

func TestSQLiteUnsupportedVersion(t *testing.T) {
	path := tempDB(t, "fxprog-ver-test-*.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO metadata (key, value) VALUES ('schema_version', '99');
	`)
	db.Close()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = NewSQLite(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported schema version") {
		t.Errorf("expected unsupported schema version error, got %v", err)
	}
}

func TestSQLiteCorruptSettings(t *testing.T) {
	path := tempDB(t, "fxprog-bad-test-*.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()
	if err := s.SaveState(calc.New()); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if _, err := s.db.Exec("UPDATE settings SET value = 'Turns' WHERE key = 'angle'"); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	c := calc.New()
	c.Vars.Set(calc.A, 3)
	if _, err := s.LoadState(c); err == nil {
		t.Error("expected error for unknown angle unit")
	}
	if c.Vars.Get(calc.A) != 3 {
		t.Error("failed LoadState modified the context")
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"sum", true},
		{"quad-roots_2.v1", true},
		{"", false},
		{"two words", false},
		{"semi;colon", false},
		{strings.Repeat("x", 65), false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.ok {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.ok)
		}
	}
}
