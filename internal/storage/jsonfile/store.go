// Package jsonfile implements the flat-file JSON persistence backend: one
// JSON array per entity under a data directory. It is the zero-dependency
// alternative to Postgres for single-instance deployments; durability is
// per-file (atomic replace), not transactional across files.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnsafePath is returned when a requested file name would escape the
// data directory.
var ErrUnsafePath = errors.New("unsafe data file path")

// Store reads and writes JSON documents under a single directory. One Store
// guards its directory with one mutex: all read-modify-write cycles go
// through Do so concurrent request handlers cannot interleave a lost
// update (the original flat-file design's race).
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Do runs fn while holding the store lock. Repositories wrap every
// read-modify-write cycle in Do.
func (s *Store) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Read unmarshals the named document into v. A missing file leaves v
// untouched and returns nil, so an empty store reads as empty collections.
// Callers that need isolation must call Read inside Do.
func (s *Store) Read(name string, v any) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Write marshals v and atomically replaces the named document (temp file
// plus rename), so readers never observe a partial write. Callers that
// need isolation must call Write inside Do.
func (s *Store) Write(name string, v any) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// resolve maps a document name to a path inside the data directory,
// rejecting anything that could traverse out of it.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	path := filepath.Join(s.dir, name)
	if rel, err := filepath.Rel(s.dir, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return path, nil
}
