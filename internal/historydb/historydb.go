// Package historydb implements the supplemented command-history store
// (SPEC_FULL section 3): a small sqlite-backed audit log of destructive
// commands, the concrete home for the teacher's mattn/go-sqlite3
// dependency. Grounded on internal/db's connection/schema-init shape,
// shrunk from a multi-table domain schema to one audit-log table.
package historydb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one row of the command history.
type Entry struct {
	Timestamp time.Time
	Command   string
	Args      string
	ExitCode  int
}

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	command TEXT NOT NULL,
	args TEXT NOT NULL,
	exit_code INTEGER NOT NULL
);
`

// Store is a connection to ~/.workstack/history.db.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the history database under homeDir, and
// ensures its schema exists.
func Open(homeDir string) (*Store, error) {
	dir := filepath.Join(homeDir, ".workstack")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("historydb: create config dir: %w", err)
	}
	path := filepath.Join(dir, "history.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("historydb: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("historydb: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// Record appends one history row. Failures here are swallowed by callers
// per spec section 7's best-effort-cleanup category — a history-write
// failure must never fail the command it's recording.
func (s *Store) Record(entry Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO history (timestamp, command, args, exit_code) VALUES (?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339), entry.Command, entry.Args, entry.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("historydb: record entry: %w", err)
	}
	return nil
}

// Recent returns the last n history entries, most recent first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT timestamp, command, args, exit_code FROM history ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("historydb: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&ts, &e.Command, &e.Args, &e.ExitCode); err != nil {
			return nil, fmt.Errorf("historydb: scan row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("historydb: parse timestamp %q: %w", ts, err)
		}
		e.Timestamp = parsed
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
