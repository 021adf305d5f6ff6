// Package hashstore persists directory digests between runs.
package hashstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/spf13/afero"
)

// FileName is the cache file name inside the project root
const FileName = ".hashes.json"

// Store is an in-memory relative-path -> digest map backed by a JSON file.
// Mutations stay in memory until Close.
type Store struct {
	fs     afero.Fs
	path   string
	hashes map[string]string
	closed bool
}

// New returns an empty store that will be written to path
func New(fs afero.Fs, path string) *Store {
	return &Store{
		fs:     fs,
		path:   path,
		hashes: make(map[string]string),
	}
}

// Load reads the cache file at path.
// A missing file yields an empty store. An unreadable or malformed file
// returns a *models.CacheLoadError and no store.
func Load(fs afero.Fs, path string) (*Store, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(fs, path), nil
		}
		return nil, &models.CacheLoadError{Path: path, Err: err}
	}

	hashes := make(map[string]string)
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, &models.CacheLoadError{Path: path, Err: err}
	}
	// A file containing "null" decodes to a nil map
	if hashes == nil {
		hashes = make(map[string]string)
	}

	return &Store{fs: fs, path: path, hashes: hashes}, nil
}

// Path returns the file the store persists to
func (s *Store) Path() string {
	return s.path
}

// Get returns the digest recorded for key
func (s *Store) Get(key string) (string, bool) {
	hash, ok := s.hashes[key]
	return hash, ok
}

// Set records a digest for key
func (s *Store) Set(key, hash string) {
	s.hashes[key] = hash
}

// Delete forgets key, reporting whether it was present
func (s *Store) Delete(key string) bool {
	if _, ok := s.hashes[key]; !ok {
		return false
	}
	delete(s.hashes, key)
	return true
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.hashes)
}

// Keys returns the recorded keys, sorted
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.hashes))
	for k := range s.hashes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close writes the whole map to disk, replacing the previous file.
// Only the first call writes; later calls return nil.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}

	data, err := json.MarshalIndent(s.hashes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal hash cache: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Write atomically using temp file
	tmpPath := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write hash cache: %w", err)
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to finalize hash cache: %w", err)
	}

	s.closed = true
	return nil
}

// Remove deletes the cache file at path. A missing file is not an error.
func Remove(fs afero.Fs, path string) error {
	err := fs.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
