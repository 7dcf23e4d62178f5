package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackendCallTracking(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "loc", []byte("data")))
	_, _ = b.Read(ctx, "loc")
	_, _ = b.Exists(ctx, "loc")
	_, _ = b.Exists(ctx, "other")

	calls := b.Calls()
	assert.Equal(t, 1, calls.Write)
	assert.Equal(t, 1, calls.Read)
	assert.Equal(t, 2, calls.Exists)

	b.Reset()
	assert.Equal(t, MemoryCalls{}, b.Calls())
	_, ok := b.Document("loc")
	assert.False(t, ok)
}

func TestMemoryBackendFailureInjection(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	boom := errors.New("disk full")

	b.Put("loc", []byte("seed"))
	b.FailWrites(boom)
	assert.ErrorIs(t, b.Write(ctx, "loc", []byte("new")), boom)

	data, ok := b.Document("loc")
	require.True(t, ok)
	assert.Equal(t, "seed", string(data), "failed write must not change the document")

	b.FailReads(boom)
	_, err := b.Read(ctx, "loc")
	assert.ErrorIs(t, err, boom)

	b.FailReads(nil)
	b.FailWrites(nil)
	require.NoError(t, b.Write(ctx, "loc", []byte("new")))
	data, err = b.Read(ctx, "loc")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestMemoryBackendCopiesData(t *testing.T) {
	b := NewMemoryBackend()
	buf := []byte("abc")
	require.NoError(t, b.Write(context.Background(), "loc", buf))
	buf[0] = 'X'

	data, err := b.Read(context.Background(), "loc")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}
