package storage

import (
	"context"
	"sync"
)

// MemoryBackend is an in-memory Backend for tests and ephemeral trackers.
type MemoryBackend struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	calls    MemoryCalls
	readErr  error
	writeErr error
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	Exists int
	Read   int
	Write  int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Exists reports whether a document is stored at location.
func (m *MemoryBackend) Exists(ctx context.Context, location string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Exists++

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if location == "" {
		return false, errEmptyLocation
	}
	_, ok := m.docs[location]
	return ok, nil
}

// Read returns a copy of the document at location.
func (m *MemoryBackend) Read(ctx context.Context, location string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Read++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if location == "" {
		return nil, errEmptyLocation
	}
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.docs[location]
	if !ok {
		return nil, ErrNotFound{Location: location}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores a copy of data at location.
func (m *MemoryBackend) Write(ctx context.Context, location string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Write++

	if err := ctx.Err(); err != nil {
		return err
	}
	if location == "" {
		return errEmptyLocation
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.docs[location] = stored
	return nil
}

// Close releases resources.
func (m *MemoryBackend) Close() error {
	return nil
}

// Put seeds a document without counting a Write call.
func (m *MemoryBackend) Put(location string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.docs[location] = stored
}

// Document returns the stored bytes at location without counting a Read call.
func (m *MemoryBackend) Document(location string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[location]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

// FailReads makes subsequent Read calls return err; nil restores normal behavior.
func (m *MemoryBackend) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes subsequent Write calls return err; nil restores normal behavior.
func (m *MemoryBackend) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Calls returns a snapshot of the call counters.
func (m *MemoryBackend) Calls() MemoryCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Reset drops all documents, injected failures and call counters.
func (m *MemoryBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string][]byte)
	m.calls = MemoryCalls{}
	m.readErr = nil
	m.writeErr = nil
}
