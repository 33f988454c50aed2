// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"fortio.org/log"
	_ "modernc.org/sqlite"

	"nickandperla.net/fxprog/internal/calc"
)

const driverName = "sqlite"

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS programs (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS registers (
			name TEXT PRIMARY KEY,
			value REAL NOT NULL
		);
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}
	log.LogVf("store: opened %s (schema %q)", path, version)

	return s, nil
}

// Get retrieves a program by name.
func (s *SQLite) Get(name string) (Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var source string
	err := s.db.QueryRow("SELECT source FROM programs WHERE name = ?", name).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return Program{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Program{}, err
	}
	return Program{Name: name, Source: source}, nil
}

// Put stores a program.
func (s *SQLite) Put(p Program) error {
	if !ValidName(p.Name) {
		return fmt.Errorf("store: invalid program name %q", p.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO programs (name, source) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET source = excluded.source
	`, p.Name, p.Source)
	return err
}

// Delete removes a program by name.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM programs WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// List returns the program names in order.
func (s *SQLite) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name FROM programs ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveState writes the registers, mode and setup of c in one transaction.
func (s *SQLite) SaveState(c *calc.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for v := calc.Var(0); v < calc.NumVars; v++ {
		_, err := tx.Exec(`
			INSERT INTO registers (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value
		`, v.String(), c.Vars.Get(v))
		if err != nil {
			return err
		}
	}
	for key, value := range encodeSettings(c) {
		_, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadState reads state written by SaveState into c.
func (s *SQLite) LoadState(c *calc.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := make(map[string]string)
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return false, err
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return false, err
		}
		settings[key] = value
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	if len(settings) == 0 {
		return false, nil
	}

	next := *c
	if err := decodeSettings(&next, settings); err != nil {
		return false, err
	}

	rows, err = s.db.Query("SELECT name, value FROM registers")
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return false, err
		}
		v, ok := calc.ParseVar(name)
		if !ok {
			return false, fmt.Errorf("store: unknown register %q", name)
		}
		next.Vars.Set(v, value)
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	*c = next
	return true, nil
}

func encodeSettings(c *calc.Context) map[string]string {
	return map[string]string{
		"mode":     strconv.Itoa(c.Mode.Index),
		"mode_sub": strconv.Itoa(c.Mode.Sub),
		"angle":    c.Setup.Angle.String(),
		"digits":   strconv.Itoa(int(c.Setup.Digits.Kind)),
		"digits_n": strconv.Itoa(c.Setup.Digits.N),
		"fraction": strconv.Itoa(int(c.Setup.Fraction)),
		"complex":  strconv.Itoa(int(c.Setup.Complex)),
		"freq":     strconv.FormatBool(c.Setup.FreqOn),
	}
}

func decodeSettings(c *calc.Context, m map[string]string) error {
	ints := make(map[string]int)
	for _, key := range []string{"mode", "mode_sub", "digits", "digits_n", "fraction", "complex"} {
		n, err := strconv.Atoi(m[key])
		if err != nil {
			return fmt.Errorf("store: setting %s: %w", key, err)
		}
		ints[key] = n
	}
	angle, ok := calc.ParseAngleUnit(m["angle"])
	if !ok {
		return fmt.Errorf("store: setting angle: unknown unit %q", m["angle"])
	}
	freq, err := strconv.ParseBool(m["freq"])
	if err != nil {
		return fmt.Errorf("store: setting freq: %w", err)
	}
	digits := calc.DisplayDigits{Kind: calc.DigitsKind(ints["digits"]), N: ints["digits_n"]}
	if !digits.Valid() {
		return fmt.Errorf("store: setting digits: invalid %v", digits)
	}

	c.Mode = calc.Mode{Index: ints["mode"], Sub: ints["mode_sub"]}
	c.Setup = calc.Setup{
		Angle:    angle,
		Digits:   digits,
		Fraction: calc.FractionFormat(ints["fraction"]),
		Complex:  calc.ComplexFormat(ints["complex"]),
		FreqOn:   freq,
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
