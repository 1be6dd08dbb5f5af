package records

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// =============================================================================
// MEMORY BACKEND - In-memory Backend (for testing/dev)
// =============================================================================

// ErrInjectedWrite is returned by MemoryBackend.Write while FailWrites is set.
var ErrInjectedWrite = errors.New("injected write failure")

// MemoryBackend keeps the last written document as JSON, so readers observe
// exactly what a file backend would have persisted.
type MemoryBackend struct {
	mu     sync.RWMutex
	data   []byte
	writes int

	failWrites bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryBackendWith starts the backend with doc already stored.
func NewMemoryBackendWith(doc *Document) (*MemoryBackend, error) {
	m := NewMemoryBackend()
	if err := m.Write(context.Background(), doc); err != nil {
		return nil, err
	}
	m.writes = 0
	return m, nil
}

func (m *MemoryBackend) Read(_ context.Context) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := NewDocument()
	if m.data == nil {
		return doc, nil
	}
	if err := json.Unmarshal(m.data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *MemoryBackend) Write(_ context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites {
		return ErrInjectedWrite
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.data = data
	m.writes++
	return nil
}

// FailWrites makes subsequent writes fail until called with false.
func (m *MemoryBackend) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Writes returns the number of successful writes.
func (m *MemoryBackend) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
