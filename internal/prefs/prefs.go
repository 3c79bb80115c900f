// Package prefs persists user preferences as YAML values under string keys.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Keys used by the board.
const (
	KeyBackground    = "background"
	KeyDrawMode      = "draw-mode"
	KeyDrawOptions   = "draw-options"
	KeyPointerMagnet = "pointer-magnet"
)

// Store reads and writes preference values.
type Store interface {
	// Get decodes the value of key into v. It reports false when the key
	// is not set.
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
	Remove(key string) error
}

// MemoryStore keeps values in memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	b, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(key string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.values[key] = b
	s.mu.Unlock()
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// FileStore keeps values in a single YAML document on disk. The file is
// read on every call so concurrent processes see each other's writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *FileStore) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}
	node, ok := doc[key]
	if !ok {
		return false, nil
	}
	if err := node.Decode(v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set implements Store.
func (s *FileStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	node := new(yaml.Node)
	if err := node.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	doc[key] = node
	return s.save(doc)
}

// Remove implements Store.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.save(doc)
}

func (s *FileStore) load() (map[string]*yaml.Node, error) {
	doc := make(map[string]*yaml.Node)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) save(doc map[string]*yaml.Node) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
