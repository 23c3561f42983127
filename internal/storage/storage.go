package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Get for keys that were never set.
var ErrNotFound = errors.New("key not found")

// Storage is durable local key/value storage for cache snapshots and flags.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// JSONStorage implements Storage using a single JSON file.
type JSONStorage struct {
	mu   sync.Mutex
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *JSONStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	value, ok := entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

// Set stores value under key, rewriting the file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		// An unreadable file is replaced rather than blocking every write
		entries = map[string]string{}
	}
	entries[key] = string(value)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// Write to a sibling file first so a crash never leaves half a file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Close is a no-op; every Set is already on disk.
func (s *JSONStorage) Close() error {
	return nil
}

// load reads all entries. A missing file is an empty map.
func (s *JSONStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return entries, nil
}

// MemoryStorage implements Storage in memory. Nothing survives the process.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string][]byte{}}
}

// Get returns a copy of the value stored under key.
func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value under key.
func (s *MemoryStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}

// DefaultDir returns the default data directory: ~/.config/bmboard
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmboard"), nil
}

// Open opens the storage backend for the given driver ("sqlite", "json" or "memory").
// An empty path uses the default file for the driver.
func Open(driver, path string) (Storage, error) {
	if driver == "memory" {
		return NewMemoryStorage(), nil
	}

	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		switch driver {
		case "json":
			path = filepath.Join(dir, "cache.json")
		default:
			path = filepath.Join(dir, "cache.db")
		}
	}

	switch driver {
	case "json":
		return NewJSONStorage(path), nil
	case "sqlite", "":
		return NewSQLiteStorage(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
