// Package sqldb persists request audit records for the pipeline server.
package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// AuditRecord is one dispatched request as seen by the audit middleware.
type AuditRecord struct {
	RequestID string        `db:"request_id"`
	Method    string        `db:"method"`
	Path      string        `db:"path"`
	Status    int           `db:"status"`
	Duration  time.Duration `db:"duration_ns"`
	CreatedAt time.Time     `db:"created_at"`
}

// Store is a SQLite-backed audit store.
type Store struct {
	db *sqlx.DB
}

// New opens (or creates) the audit database at the given DSN.
func New(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS request_audit (
request_id TEXT PRIMARY KEY,
method TEXT NOT NULL,
path TEXT NOT NULL,
status INTEGER NOT NULL,
duration_ns INTEGER NOT NULL,
created_at TIMESTAMP NOT NULL
)`)
	return err
}

// Record inserts one audit record.
func (s *Store) Record(ctx context.Context, rec *AuditRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_audit (request_id, method, path, status, duration_ns, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Method, rec.Path, rec.Status, int64(rec.Duration), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit audit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]AuditRecord, error) {
	var out []AuditRecord
	err := s.db.SelectContext(ctx, &out,
		`SELECT request_id, method, path, status, duration_ns, created_at
FROM request_audit ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
