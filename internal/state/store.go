// Package state persists small JSON documents next to the client config.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps a value in memory and mirrors every change to a JSON file.
type Store[T any] struct {
	mu       sync.RWMutex
	data     T
	path     string
	defaults func() T
}

// Open loads the document at path, or starts from defaults() when the file
// does not exist yet. A file that cannot be parsed is an error rather than
// being silently replaced.
func Open[T any](path string, defaults func() T) (*Store[T], error) {
	s := &Store[T]{
		path:     path,
		defaults: defaults,
		data:     defaults(),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store[T]) Path() string {
	return s.path
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Update mutates the value in place and persists it. When fn fails nothing
// is written and the in-memory value is restored.
func (s *Store[T]) Update(fn func(*T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("snapshot state: %w", err)
	}
	if err := fn(&s.data); err != nil {
		restored := s.defaults()
		if uerr := json.Unmarshal(before, &restored); uerr == nil {
			s.data = restored
		}
		return err
	}
	return s.save()
}

// save writes atomically: temp file first, then rename.
func (s *Store[T]) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}

// Clear resets to defaults and removes the file.
func (s *Store[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = s.defaults()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}
