package store

import (
	"context"
	"fmt"

	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/storage"
)

// firstContact offers to fill an empty sync backend, either with this
// device's local board or with the sample board. It runs once per Store.
func (s *Store) firstContact(ctx context.Context, remote model.Snapshot) {
	if !remote.IsEmpty() {
		return
	}

	local, err := storage.LoadSnapshot(s.storage, storage.KeyLocalData)
	if err != nil {
		s.logger.Warn("local data unreadable, offering samples instead", "error", err)
	}

	if !local.IsEmpty() {
		msg := fmt.Sprintf("Your synced board is empty. Import %d categories and %d bookmarks from this device?",
			len(local.Categories), len(local.Bookmarks))
		if !s.dialog.Confirm(ctx, msg) {
			return
		}
		if err := s.backend.Import(ctx, local); err != nil {
			s.migrationFailed(ctx, "Importing your local bookmarks failed", err)
			return
		}
		s.logger.Info("imported local data", "categories", len(local.Categories), "bookmarks", len(local.Bookmarks))
		return
	}

	if !s.dialog.Confirm(ctx, "Your synced board is empty. Add some sample bookmarks to get started?") {
		return
	}
	if err := s.backend.SeedDefaults(ctx); err != nil {
		s.migrationFailed(ctx, "Adding sample bookmarks failed", err)
		return
	}
	s.logger.Info("seeded sample board")
}

func (s *Store) migrationFailed(ctx context.Context, msg string, err error) {
	s.logger.Error("first-contact migration failed", "error", err)
	s.dialog.Alert(ctx, fmt.Sprintf("%s: %v", msg, err))
}
