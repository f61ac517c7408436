/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Entry is one journaled DDL batch
type Entry struct {
	ID         int64     `json:"id"`
	Event      string    `json:"event"` // e.g. "create-table", "alter-table"
	Table      string    `json:"table"`
	Dialect    string    `json:"dialect"`
	Statements []string  `json:"statements"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store journals generated DDL batches in a local SQLite database so an
// operator can see what the tool emitted and when
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the journal at the given path
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS ddl_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event TEXT NOT NULL,
			table_name TEXT NOT NULL,
			dialect TEXT NOT NULL,
			statements TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_ddl_history_table ON ddl_history(table_name);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Record appends one batch to the journal
func (s *Store) Record(event, table, dialect string, statements []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(statements)
	if err != nil {
		return fmt.Errorf("failed to encode statements: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO ddl_history (event, table_name, dialect, statements, created_at) VALUES (?, ?, ?, ?, ?)",
		event, table, dialect, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		"SELECT id, event, table_name, dialect, statements, created_at FROM ddl_history ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var statements string
		if err := rows.Scan(&e.ID, &e.Event, &e.Table, &e.Dialect, &statements, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(statements), &e.Statements); err != nil {
			return nil, fmt.Errorf("failed to decode statements for entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListForTable returns the most recent entries for one table, newest first
func (s *Store) ListForTable(table string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		"SELECT id, event, table_name, dialect, statements, created_at FROM ddl_history WHERE table_name = ? ORDER BY id DESC LIMIT ?",
		table, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var statements string
		if err := rows.Scan(&e.ID, &e.Event, &e.Table, &e.Dialect, &statements, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(statements), &e.Statements); err != nil {
			return nil, fmt.Errorf("failed to decode statements for entry %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Path returns the journal file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the journal
func (s *Store) Close() error {
	return s.db.Close()
}
