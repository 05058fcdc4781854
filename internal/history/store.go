// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records conversion results in a local SQLite database
// and exports them as YAML or JSON.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

// timeLayout keeps started_at fixed-width so it sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the conversion history database.
type Store struct {
	db   *sql.DB
	path string
}

// ListOptions filters List and the exports.
type ListOptions struct {
	// Limit caps the number of results; zero or less means no cap.
	Limit int

	// FailedOnly restricts results to failed conversions.
	FailedOnly bool
}

// Open opens or creates the history database at path, creating the parent
// directory and the schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			success INTEGER NOT NULL,
			error_kind TEXT,
			error TEXT,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			backend TEXT,
			pages INTEGER,
			duration_ms INTEGER,
			started_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_started_at ON conversions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_success ON conversions(success)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores r. Recording the same ID twice replaces the earlier row.
func (s *Store) Record(ctx context.Context, r types.ConversionResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, success, error_kind, error, input, output, backend, pages, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			success = excluded.success,
			error_kind = excluded.error_kind,
			error = excluded.error,
			input = excluded.input,
			output = excluded.output,
			backend = excluded.backend,
			pages = excluded.pages,
			duration_ms = excluded.duration_ms,
			started_at = excluded.started_at`,
		r.ID, r.Success, string(r.ErrorKind), r.Error, r.Input, r.Output, r.Backend, r.Pages, r.DurationMS,
		r.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording conversion %s: %w", r.ID, err)
	}
	return nil
}

// List returns recorded conversions, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.ConversionResult, error) {
	query := `SELECT id, success, error_kind, error, input, output, backend, pages, duration_ms, started_at
		FROM conversions`
	if opts.FailedOnly {
		query += ` WHERE success = 0`
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var results []types.ConversionResult
	for rows.Next() {
		var (
			r                         types.ConversionResult
			kind, msg, backend, start sql.NullString
			pages, duration           sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Success, &kind, &msg, &r.Input, &r.Output, &backend, &pages, &duration, &start); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		r.ErrorKind = types.ErrorKind(kind.String)
		r.Error = msg.String
		r.Backend = backend.String
		r.Pages = int(pages.Int64)
		r.DurationMS = duration.Int64
		if start.Valid {
			t, err := time.Parse(timeLayout, start.String)
			if err != nil {
				return nil, fmt.Errorf("parsing started_at for %s: %w", r.ID, err)
			}
			r.StartedAt = t
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
