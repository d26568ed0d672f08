// Package catalog persists dataset definitions and a history of loads in
// SQLite.
package catalog

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/pointplay/internal/monitoring"
	"github.com/banshee-data/pointplay/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var logf = monitoring.Tagged("catalog")

// Store wraps the catalog database.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// MigrationsFS returns the embedded schema migrations.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// OpenDB opens the database at path and applies connection pragmas without
// touching the schema. Use Open for normal access.
func OpenDB(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return &Store{db: db, clock: timeutil.RealClock{}}, nil
}

// Open opens the catalog at path and migrates it to the latest schema.
func Open(path string) (*Store, error) {
	s, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock used for timestamps.
func (s *Store) SetClock(c timeutil.Clock) {
	s.clock = c
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
