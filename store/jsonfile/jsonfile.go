/*
Package jsonfile provides a records.Backend that keeps the whole document in
one JSON file.

FILE FORMAT:
  {
    "employees":  [...],
    "attendance": [...],
    "leaves":     [...],
    "admins":     [...]
  }
  No schema version. Missing collections load as empty lists, a missing file
  loads as an empty document.

ATOMIC WRITES:
  Write never touches the live file in place:
  1. Marshal the document
  2. Write it to a temp file in the same directory
  3. fsync and close the temp file
  4. Rename over the live file
  Readers therefore see either the previous or the new document, never a
  partially written one.

USAGE:
  backend := jsonfile.New("./data/db.json")
  store := records.NewStore(backend)

SEE ALSO:
  - records/store.go: Store that drives this backend
  - store/sqlite: Alternative backend
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/warp/attendance-engine/records"
)

// Backend stores the document at Path.
type Backend struct {
	Path string
}

// Compile-time check that Backend implements records.Backend
var _ records.Backend = (*Backend)(nil)

// New creates a backend for the given file path. The file is not touched
// until the first Read or Write.
func New(path string) *Backend {
	return &Backend{Path: path}
}

// Read loads the document. A missing file yields an empty document.
func (b *Backend) Read(ctx context.Context) (*records.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return records.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.Path, err)
	}

	doc := records.NewDocument()
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", b.Path, err)
	}
	return doc, nil
}

// Write replaces the file atomically.
func (b *Backend) Write(ctx context.Context, doc *records.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.Path, err)
	}
	committed = true
	return nil
}
