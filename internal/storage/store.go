// Package storage provides the durable blob backends a tracker persists its
// store through. A backend stores one opaque document per location and only
// ever reads or writes it whole.
package storage

import (
	"context"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/checkem/internal/foundation/normalization"
)

// Backend is whole-document storage addressed by an opaque location.
type Backend interface {
	// Exists reports whether a document is stored at location.
	Exists(ctx context.Context, location string) (bool, error)

	// Read returns the full document at location.
	// Returns ErrNotFound if nothing is stored there.
	Read(ctx context.Context, location string) ([]byte, error)

	// Write replaces the document at location. A concurrent or later reader
	// observes either the previous document or data, never a partial write.
	Write(ctx context.Context, location string, data []byte) error

	// Close releases any resources held by the backend.
	Close() error
}

// ErrNotFound is returned when no document is stored at a location.
type ErrNotFound struct {
	Location string
}

func (e ErrNotFound) Error() string {
	return "no document stored at " + e.Location
}

// IsNotFound returns true if err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

var errEmptyLocation = errors.New("storage location must not be empty")

// Kind identifies a backend implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

var kindNormalizer = normalization.NewNormalizer(map[string]Kind{
	"file":    KindFile,
	"fs":      KindFile,
	"json":    KindFile,
	"sqlite":  KindSQLite,
	"sqlite3": KindSQLite,
	"memory":  KindMemory,
	"mem":     KindMemory,
}, KindFile)

// ParseKind normalizes a configured backend name. Empty selects KindFile.
func ParseKind(raw string) (Kind, error) {
	return kindNormalizer.NormalizeWithError(raw)
}

// Open constructs the backend for kind. dsn is the SQLite database path and
// is ignored by the other kinds.
func Open(kind Kind, dsn string) (Backend, error) {
	switch kind {
	case KindFile:
		return NewFSBackend(), nil
	case KindSQLite:
		if dsn == "" {
			return nil, errors.New("sqlite backend requires a dsn")
		}
		return NewSQLiteBackend(dsn)
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
