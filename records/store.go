/*
store.go - The process-wide Record Store

PURPOSE:
  Owns the Document for the lifetime of the process. Every service shares one
  Store so that mutations are visible to every request.

OPERATIONS:
  Load():     Idempotent. First call reads the Backend; later calls no-op.
  Snapshot(): Current committed Document, read-only.
  Update():   The only mutation path (read-modify-write-flush).
  Flush():    Writes the committed Document to the Backend.

CONCURRENCY:
  Update holds a store-wide mutex for the whole read-modify-write-flush
  cycle, so two concurrent submissions can no longer overwrite each other.
  Reads never block on a flush: published documents are immutable
  (copy-on-write), Snapshot only grabs the current pointer.

FAILURE MODEL:
  Update mutates a clone. The clone is published only after the Backend
  accepted it, so a failed flush leaves memory equal to the last durable
  state and the caller gets ErrStorage.

SEE ALSO:
  - memory.go: MemoryBackend for tests and dev
  - store/jsonfile, store/sqlite: file-backed Backends
*/
package records

import (
	"context"
	"sync"
)

// Backend persists whole documents. Write must be all-or-nothing from the
// point of view of a concurrent Read.
type Backend interface {
	// Read returns the stored document. A backend with nothing stored yet
	// returns an empty document, not an error.
	Read(ctx context.Context) (*Document, error)

	// Write replaces the stored document.
	Write(ctx context.Context, doc *Document) error
}

// Store holds the committed Document.
type Store struct {
	backend Backend

	// writeMu serializes Load, Update and Flush.
	writeMu sync.Mutex

	// mu guards doc and loaded.
	mu     sync.RWMutex
	doc    *Document
	loaded bool
}

// NewStore creates a store over the given backend. Nothing is read until Load.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the backend on first call. A failed load is not cached.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	doc, err := s.backend.Read(ctx)
	if err != nil {
		return storageError("load", err)
	}
	if doc == nil {
		doc = NewDocument()
	}
	doc.normalize()

	s.mu.Lock()
	s.doc = doc
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Snapshot returns the committed document, loading it first if needed.
// The returned document must not be modified. It is never mutated by later
// updates, but it may be stale once another Update commits.
func (s *Store) Snapshot(ctx context.Context) (*Document, error) {
	s.mu.RLock()
	doc, loaded := s.doc, s.loaded
	s.mu.RUnlock()
	if loaded {
		return doc, nil
	}

	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, nil
}

// Update runs fn against a private copy of the document and commits it once
// the backend has accepted the write. If fn returns an error nothing is
// written and the error is returned unchanged.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	working := s.doc.Clone()
	s.mu.RUnlock()

	if err := fn(working); err != nil {
		return err
	}
	working.normalize()

	if err := s.backend.Write(ctx, working); err != nil {
		return storageError("flush", err)
	}

	s.mu.Lock()
	s.doc = working
	s.mu.Unlock()
	return nil
}

// Flush writes the committed document to the backend.
func (s *Store) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()

	if err := s.backend.Write(ctx, doc); err != nil {
		return storageError("flush", err)
	}
	return nil
}
