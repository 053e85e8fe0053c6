// Package cache keeps the most recent list payload per item kind in a local
// SQLite file, so the client can keep showing data when the backend is
// unreachable. Payloads are stored raw; the domain layer owns decoding.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrMiss is returned when no payload has been cached for a kind.
var ErrMiss = errors.New("cache miss")

const schema = `
CREATE TABLE IF NOT EXISTS list_cache (
	kind       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// Store is the SQLite-backed offline cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache at path and applies the schema,
// keeping startup and schema evolution in one place.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// PutList stores the payload for kind, replacing any previous one.
func (s *Store) PutList(ctx context.Context, kind string, payload []byte) error {
	const query = `
INSERT INTO list_cache (kind, payload, fetched_at) VALUES (?, ?, ?)
ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at;
`
	if _, err := s.db.ExecContext(ctx, query, kind, payload, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("put list cache: %w", err)
	}
	return nil
}

// List returns the cached payload for kind and when it was fetched.
func (s *Store) List(ctx context.Context, kind string) ([]byte, time.Time, error) {
	const query = `SELECT payload, fetched_at FROM list_cache WHERE kind = ?;`

	var payload []byte
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, query, kind).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrMiss
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read list cache: %w", err)
	}
	return payload, time.UnixMilli(fetchedAt).UTC(), nil
}

// Clear drops every cached payload.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM list_cache;`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
