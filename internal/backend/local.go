package backend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/seed"
	"github.com/nikbrunner/bmboard/internal/storage"
)

type LocalParams struct {
	Storage storage.Storage
	Logger  *slog.Logger
	// NewID mints ids. Defaults to model.NewID.
	NewID func() string
}

// LocalBackend keeps canonical rows in memory and persists every change to
// durable storage under storage.KeyLocalData. Mutations complete and are
// delivered to subscribers before the call returns.
type LocalBackend struct {
	storage storage.Storage
	logger  *slog.Logger
	newID   func() string

	mu        sync.Mutex
	rows      model.Snapshot
	listeners map[int]Listener
	nextSub   int

	// publishMu serializes persist+deliver so subscribers see changes in order.
	publishMu sync.Mutex
}

// NewLocalBackend loads the persisted rows. An unreadable cache is logged
// and replaced by an empty board.
func NewLocalBackend(p LocalParams) *LocalBackend {
	if p.Storage == nil {
		p.Storage = storage.NewMemoryStorage()
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.NewID == nil {
		p.NewID = model.NewID
	}

	rows, err := storage.LoadSnapshot(p.Storage, storage.KeyLocalData)
	if err != nil {
		p.Logger.Warn("local data unreadable, starting empty", "error", err)
	}

	return &LocalBackend{
		storage:   p.Storage,
		logger:    p.Logger,
		newID:     p.NewID,
		rows:      rows,
		listeners: map[int]Listener{},
	}
}

func (b *LocalBackend) Mode() Mode { return ModeLocal }

func (b *LocalBackend) Subscribe(ctx context.Context, l Listener) (func(), error) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.listeners[id] = l
	b.mu.Unlock()

	b.publishMu.Lock()
	snap := b.current()
	deliver(l, snap, Resources)
	b.publishMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
	context.AfterFunc(ctx, cancel)
	return cancel, nil
}

func (b *LocalBackend) Snapshot(ctx context.Context) (model.Snapshot, error) {
	return b.current(), nil
}

func (b *LocalBackend) current() model.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows.Clone()
}

// mutate applies fn to the rows, then persists and delivers the changed resources.
func (b *LocalBackend) mutate(changed []Resource, fn func(rows *model.Snapshot) error) error {
	b.mu.Lock()
	err := fn(&b.rows)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	b.publish(changed)
	return nil
}

func (b *LocalBackend) publish(changed []Resource) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	snap := b.rows.Clone()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.Unlock()

	// Best effort: the in-memory rows stay authoritative for this session
	if err := storage.SaveSnapshot(b.storage, storage.KeyLocalData, snap); err != nil {
		b.logger.Warn("persist local data failed", "error", err)
	}
	for _, l := range listeners {
		deliver(l, snap, changed)
	}
}

func deliver(l Listener, snap model.Snapshot, resources []Resource) {
	for _, r := range resources {
		switch r {
		case ResourceCategories:
			if l.Categories != nil {
				l.Categories(snap.Categories)
			}
		case ResourceBookmarks:
			if l.Bookmarks != nil {
				l.Bookmarks(snap.Bookmarks)
			}
		case ResourceTabGroups:
			if l.TabGroups != nil {
				l.TabGroups(snap.TabGroups)
			}
		}
	}
}

func findCategory(rows *model.Snapshot, id string) (int, error) {
	i := slices.IndexFunc(rows.Categories, func(c model.CategoryRow) bool { return c.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return i, nil
}

func findBookmark(rows *model.Snapshot, id string) (int, error) {
	i := slices.IndexFunc(rows.Bookmarks, func(b model.BookmarkRow) bool { return b.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("bookmark %s: %w", id, ErrNotFound)
	}
	return i, nil
}

func findTabGroup(rows *model.Snapshot, id string) (int, error) {
	i := slices.IndexFunc(rows.TabGroups, func(g model.TabGroupRow) bool { return g.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("tab group %s: %w", id, ErrNotFound)
	}
	return i, nil
}

func (b *LocalBackend) CreateCategory(ctx context.Context, in CategoryInput) (string, error) {
	id := b.newID()
	err := b.mutate([]Resource{ResourceCategories}, func(rows *model.Snapshot) error {
		rows.Categories = append(rows.Categories, model.CategoryRow{
			ID:      id,
			Name:    in.Name,
			Order:   in.Order,
			GroupID: model.CloneString(in.GroupID),
		})
		return nil
	})
	return id, err
}

func (b *LocalBackend) UpdateCategory(ctx context.Context, id string, p CategoryPatch) error {
	return b.mutate([]Resource{ResourceCategories}, func(rows *model.Snapshot) error {
		i, err := findCategory(rows, id)
		if err != nil {
			return err
		}
		p.apply(&rows.Categories[i])
		return nil
	})
}

func (b *LocalBackend) ReorderCategory(ctx context.Context, id string, order float64, groupID *string) error {
	return b.UpdateCategory(ctx, id, reorderCategoryPatch(order, groupID))
}

func (b *LocalBackend) DeleteCategory(ctx context.Context, id string) error {
	return b.mutate([]Resource{ResourceCategories, ResourceBookmarks}, func(rows *model.Snapshot) error {
		i, err := findCategory(rows, id)
		if err != nil {
			return err
		}
		rows.Categories = slices.Delete(rows.Categories, i, i+1)
		rows.Bookmarks = slices.DeleteFunc(rows.Bookmarks, func(bm model.BookmarkRow) bool {
			return bm.CategoryID == id
		})
		return nil
	})
}

func (b *LocalBackend) CreateBookmark(ctx context.Context, in BookmarkInput) (string, error) {
	id := b.newID()
	err := b.mutate([]Resource{ResourceBookmarks}, func(rows *model.Snapshot) error {
		if _, err := findCategory(rows, in.CategoryID); err != nil {
			return err
		}
		rows.Bookmarks = append(rows.Bookmarks, model.BookmarkRow{
			ID:         id,
			CategoryID: in.CategoryID,
			Title:      in.Title,
			URL:        in.URL,
			IconPath:   model.CloneString(in.IconPath),
			Order:      in.Order,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (b *LocalBackend) UpdateBookmark(ctx context.Context, id string, p BookmarkPatch) error {
	return b.mutate([]Resource{ResourceBookmarks}, func(rows *model.Snapshot) error {
		i, err := findBookmark(rows, id)
		if err != nil {
			return err
		}
		if p.CategoryID != nil {
			if _, err := findCategory(rows, *p.CategoryID); err != nil {
				return err
			}
		}
		p.apply(&rows.Bookmarks[i])
		return nil
	})
}

func (b *LocalBackend) ReorderBookmark(ctx context.Context, id, categoryID string, order float64) error {
	return b.UpdateBookmark(ctx, id, reorderBookmarkPatch(categoryID, order))
}

func (b *LocalBackend) DeleteBookmark(ctx context.Context, id string) error {
	return b.mutate([]Resource{ResourceBookmarks}, func(rows *model.Snapshot) error {
		i, err := findBookmark(rows, id)
		if err != nil {
			return err
		}
		rows.Bookmarks = slices.Delete(rows.Bookmarks, i, i+1)
		return nil
	})
}

func (b *LocalBackend) CreateTabGroup(ctx context.Context, in TabGroupInput) (string, error) {
	id := b.newID()
	err := b.mutate([]Resource{ResourceTabGroups}, func(rows *model.Snapshot) error {
		rows.TabGroups = append(rows.TabGroups, model.TabGroupRow{ID: id, Name: in.Name, Order: in.Order})
		return nil
	})
	return id, err
}

func (b *LocalBackend) UpdateTabGroup(ctx context.Context, id string, p TabGroupPatch) error {
	return b.mutate([]Resource{ResourceTabGroups}, func(rows *model.Snapshot) error {
		i, err := findTabGroup(rows, id)
		if err != nil {
			return err
		}
		p.apply(&rows.TabGroups[i])
		return nil
	})
}

func (b *LocalBackend) ReorderTabGroup(ctx context.Context, id string, order float64) error {
	return b.UpdateTabGroup(ctx, id, TabGroupPatch{Order: &order})
}

func (b *LocalBackend) DeleteTabGroup(ctx context.Context, id string) error {
	return b.mutate([]Resource{ResourceTabGroups, ResourceCategories}, func(rows *model.Snapshot) error {
		i, err := findTabGroup(rows, id)
		if err != nil {
			return err
		}
		rows.TabGroups = slices.Delete(rows.TabGroups, i, i+1)
		for j := range rows.Categories {
			if g := rows.Categories[j].GroupID; g != nil && *g == id {
				rows.Categories[j].GroupID = nil
			}
		}
		return nil
	})
}

func (b *LocalBackend) Import(ctx context.Context, snap model.Snapshot) error {
	fresh := snap.Reassign(b.newID)
	return b.mutate(Resources, func(rows *model.Snapshot) error {
		rows.TabGroups = append(rows.TabGroups, fresh.TabGroups...)
		rows.Categories = append(rows.Categories, fresh.Categories...)
		rows.Bookmarks = append(rows.Bookmarks, fresh.Bookmarks...)
		return nil
	})
}

func (b *LocalBackend) EraseAll(ctx context.Context) error {
	return b.mutate(Resources, func(rows *model.Snapshot) error {
		*rows = model.NewSnapshot()
		return nil
	})
}

func (b *LocalBackend) SeedDefaults(ctx context.Context) error {
	snap, err := seed.Defaults()
	if err != nil {
		return err
	}
	return b.Import(ctx, snap)
}

// Close releases nothing; every change is already persisted.
func (b *LocalBackend) Close() error {
	return nil
}
