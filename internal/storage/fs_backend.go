package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FSBackend stores each document as a file; the location is its path.
//
// Writes go to a temporary file in the destination directory which is synced,
// renamed over the target, and followed by a sync of the directory.
type FSBackend struct {
	perm os.FileMode
}

// NewFSBackend creates a filesystem backend writing files with mode 0644.
func NewFSBackend() *FSBackend {
	return &FSBackend{perm: 0o644}
}

// Exists reports whether a file is present at location.
func (b *FSBackend) Exists(ctx context.Context, location string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if location == "" {
		return false, errEmptyLocation
	}
	if _, err := os.Stat(location); err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", location, err)
	}
	return true, nil
}

// Read returns the file contents at location.
func (b *FSBackend) Read(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if location == "" {
		return nil, errEmptyLocation
	}
	// #nosec G304 - the location is the caller's configured store path
	data, err := os.ReadFile(location)
	if err != nil {
		if isMissing(err) {
			return nil, ErrNotFound{Location: location}
		}
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

// Write atomically replaces the file at location, creating parent directories.
func (b *FSBackend) Write(ctx context.Context, location string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if location == "" {
		return errEmptyLocation
	}
	return writeFileAtomic(location, data, b.perm)
}

// Close releases resources.
func (b *FSBackend) Close() error {
	return nil
}

// isMissing reports errors meaning nothing can exist at the path, including a
// path that runs through a regular file.
func isMissing(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir) // #nosec G304 - parent of the store path
	if err != nil {
		return fmt.Errorf("open directory %s: %w", dir, err)
	}
	defer func() { _ = f.Close() }()
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync directory %s: %w", dir, err)
	}
	return nil
}
