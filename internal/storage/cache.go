package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikbrunner/bmboard/internal/model"
)

// Keys used in durable storage.
const (
	KeyLocalData = "local-data" // canonical rows of local mode
	KeySyncCache = "sync-cache" // debounced copy of the last synced rows
	KeyMode      = "mode"       // "local" or "sync"
)

// ErrCorruptCache marks a stored snapshot that could not be decoded.
var ErrCorruptCache = errors.New("corrupt cache")

// LoadSnapshot reads the snapshot stored under key.
// A missing key is an empty snapshot. A corrupt value is an empty snapshot
// together with an error wrapping ErrCorruptCache, so callers can warn and go on.
func LoadSnapshot(s Storage, key string) (model.Snapshot, error) {
	data, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return model.NewSnapshot(), nil
	}
	if err != nil {
		return model.NewSnapshot(), fmt.Errorf("read %s: %w", key, err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.NewSnapshot(), fmt.Errorf("%w: %s: %v", ErrCorruptCache, key, err)
	}

	// Ensure slices are not nil
	if snap.Categories == nil {
		snap.Categories = []model.CategoryRow{}
	}
	if snap.Bookmarks == nil {
		snap.Bookmarks = []model.BookmarkRow{}
	}
	if snap.TabGroups == nil {
		snap.TabGroups = []model.TabGroupRow{}
	}
	return snap, nil
}

// SaveSnapshot writes snap under key.
func SaveSnapshot(s Storage, key string, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LoadMode returns the persisted mode flag, or fallback when none is stored.
func LoadMode(s Storage, fallback string) string {
	data, err := s.Get(KeyMode)
	if err != nil || len(data) == 0 {
		return fallback
	}
	return string(data)
}

// SaveMode persists the mode flag.
func SaveMode(s Storage, mode string) error {
	return s.Set(KeyMode, []byte(mode))
}
