package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSBackendWriteLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	loc := filepath.Join(dir, "checkem.json")
	b := NewFSBackend()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Write(context.Background(), loc, []byte(fmt.Sprintf(`{"n":%d}`, i))))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the store file should remain")
	assert.Equal(t, "checkem.json", entries[0].Name())

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, `{"n":2}`, string(data))

	info, err := os.Stat(loc)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFSBackendFailedWriteKeepsPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	loc := filepath.Join(dir, "checkem.json")
	b := NewFSBackend()
	require.NoError(t, b.Write(context.Background(), loc, []byte("previous")))

	// A directory at the target path makes the final rename fail.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0o750))
	require.Error(t, b.Write(context.Background(), blocked, []byte("new")))

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp.*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary files must be cleaned up")
}

func TestFSBackendHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loc := filepath.Join(t.TempDir(), "checkem.json")
	b := NewFSBackend()
	assert.ErrorIs(t, b.Write(ctx, loc, []byte("x")), context.Canceled)
	_, err := os.Stat(loc)
	assert.True(t, os.IsNotExist(err))
}

func TestFSBackendReadErrorIsNotNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFSBackend().Read(context.Background(), dir)
	require.Error(t, err, "reading a directory must fail")
	assert.False(t, IsNotFound(err))
}

func TestFSBackendPathThroughFileIsNotFound(t *testing.T) {
	ctx := context.Background()
	plain := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o600))
	location := filepath.Join(plain, "store.json")

	b := NewFSBackend()
	_, err := b.Read(ctx, location)
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "got %v", err)

	exists, err := b.Exists(ctx, location)
	require.NoError(t, err)
	assert.False(t, exists)
}
