// Package jsonfile implements the repository interfaces over flat JSON
// files on disk. It is the drop-in alternative to the Postgres backend for
// running without external services; every operation is a locked
// read-modify-write over the full array, which is acceptable only at small
// scale.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// file serializes access to one JSON array file.
type file struct {
	mu   sync.Mutex
	path string
}

// readInto unmarshals the file into dst. A missing file reads as an empty
// array.
func (f *file) readInto(dst any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			data = []byte("[]")
		} else {
			return fmt.Errorf("read %s: %w", f.path, err)
		}
	}
	return json.Unmarshal(data, dst)
}

// write marshals src and replaces the file atomically via rename.
func (f *file) write(src any) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.path)
}

// newFile ensures the parent directory exists and returns the file handle.
func newFile(path string) (*file, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir for %s: %w", path, err)
	}
	return &file{path: path}, nil
}
