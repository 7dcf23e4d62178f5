package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores documents as rows of a SQLite table keyed by location.
// Each Write is a single UPSERT, so readers never see a partial document.
type SQLiteBackend struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteBackend opens (or creates) the database at dsn.
// Use ":memory:" for an in-memory database.
func NewSQLiteBackend(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	b := &SQLiteBackend{db: db}
	if err := b.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		location TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := b.db.Exec(schema)
	return err
}

// Exists reports whether a row is stored for location.
func (b *SQLiteBackend) Exists(ctx context.Context, location string) (bool, error) {
	if location == "" {
		return false, errEmptyLocation
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	var one int
	err := b.db.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE location = ?", location).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query document: %w", err)
	}
	return true, nil
}

// Read returns the document stored for location.
func (b *SQLiteBackend) Read(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, errEmptyLocation
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	var data []byte
	err := b.db.QueryRowContext(ctx, "SELECT data FROM documents WHERE location = ?", location).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{Location: location}
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return data, nil
}

// Write inserts or replaces the document for location.
func (b *SQLiteBackend) Write(ctx context.Context, location string, data []byte) error {
	if location == "" {
		return errEmptyLocation
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.db.ExecContext(ctx,
		`INSERT INTO documents (location, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(location) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		location, data, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
