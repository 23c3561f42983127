package backend_test

import (
	"sync"

	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/model"
)

// recorder keeps the latest rows a listener received.
type recorder struct {
	mu         sync.Mutex
	categories []model.CategoryRow
	bookmarks  []model.BookmarkRow
	tabGroups  []model.TabGroupRow
	deliveries int
}

func (r *recorder) listener() backend.Listener {
	return backend.Listener{
		Categories: func(rows []model.CategoryRow) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.categories = rows
			r.deliveries++
		},
		Bookmarks: func(rows []model.BookmarkRow) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.bookmarks = rows
			r.deliveries++
		},
		TabGroups: func(rows []model.TabGroupRow) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.tabGroups = rows
			r.deliveries++
		},
	}
}

func (r *recorder) counts() (categories, bookmarks, groups int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.categories), len(r.bookmarks), len(r.tabGroups)
}

func (r *recorder) categoryNamed(name string) (model.CategoryRow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			return c, true
		}
	}
	return model.CategoryRow{}, false
}
