// Package storage is the durable client-side key-value store. Everything the
// client remembers between runs (session tokens, cached profile fields, the
// local draft project) lives here as flat string keys in a single JSON file
// under the user's home directory.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys. Other packages must use these constants instead of
// spelling the key out at the call site.
const (
	KeyAccess             = "access"
	KeyRefresh            = "refresh"
	KeyUsername           = "username"
	KeyProfileDisplayName = "profile_display_name"
	KeyProfileLogo        = "profile_logo"
	KeyDraftProject       = "draftProject"
)

// Store is a last-write-wins key-value store backed by a JSON file.
// A Store with an empty path is memory-only, which tests use as a fake.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// Open loads (or creates) a store at the given file path.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		// A corrupt state file is not worth failing startup over; start fresh.
		s.values = make(map[string]string)
	}
	return s, nil
}

// OpenDefault opens the store at ~/.craftfolio/state.json.
func OpenDefault() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(home, ".craftfolio", "state.json"))
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value for key, or "" when absent.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set writes key=value and persists immediately.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flushLocked()
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// SetAll writes several keys in one flush.
func (s *Store) SetAll(kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range kv {
		s.values[k] = v
	}
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
