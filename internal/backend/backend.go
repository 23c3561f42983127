// Package backend holds the two storage backends a store can run on:
// a device-local one and a Redis-backed one shared between devices.
//
// Both deliver state the same way. A subscriber receives the complete row
// set of a resource whenever it changes, so consumers never branch on mode.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikbrunner/bmboard/internal/model"
)

// ErrNotFound is returned when a mutation names an id the backend does not hold.
var ErrNotFound = errors.New("not found")

// Mode names the operating mode.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeSync  Mode = "sync"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeSync:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want local or sync)", s)
	}
}

// Resource names one of the three independent row streams.
type Resource string

const (
	ResourceCategories Resource = "categories"
	ResourceBookmarks  Resource = "bookmarks"
	ResourceTabGroups  Resource = "tabgroups"
)

// Resources lists every resource in delivery order.
var Resources = []Resource{ResourceCategories, ResourceBookmarks, ResourceTabGroups}

// Listener receives full row sets. Any field may be nil.
// Callbacks may run on a backend goroutine and must not call back into
// the backend synchronously.
type Listener struct {
	Categories func([]model.CategoryRow)
	Bookmarks  func([]model.BookmarkRow)
	TabGroups  func([]model.TabGroupRow)
	Error      func(Resource, error)
}

// CategoryInput describes a category to create.
type CategoryInput struct {
	Name    string
	Order   float64
	GroupID *string
}

// CategoryPatch changes the non-nil fields of a category.
// GroupID is applied only when SetGroup is true, so a group can be cleared.
type CategoryPatch struct {
	Name     *string
	Order    *float64
	SetGroup bool
	GroupID  *string
}

func (p CategoryPatch) apply(row *model.CategoryRow) {
	if p.Name != nil {
		row.Name = *p.Name
	}
	if p.Order != nil {
		row.Order = *p.Order
	}
	if p.SetGroup {
		row.GroupID = model.CloneString(p.GroupID)
	}
}

// BookmarkInput describes a bookmark to create.
type BookmarkInput struct {
	CategoryID string
	Title      string
	URL        string
	IconPath   *string
	Order      float64
}

// BookmarkPatch changes the non-nil fields of a bookmark.
type BookmarkPatch struct {
	CategoryID *string
	Title      *string
	URL        *string
	Order      *float64
}

func (p BookmarkPatch) apply(row *model.BookmarkRow) {
	if p.CategoryID != nil {
		row.CategoryID = *p.CategoryID
	}
	if p.Title != nil {
		row.Title = *p.Title
	}
	if p.URL != nil {
		row.URL = *p.URL
	}
	if p.Order != nil {
		row.Order = *p.Order
	}
}

type TabGroupInput struct {
	Name  string
	Order float64
}

type TabGroupPatch struct {
	Name  *string
	Order *float64
}

func (p TabGroupPatch) apply(row *model.TabGroupRow) {
	if p.Name != nil {
		row.Name = *p.Name
	}
	if p.Order != nil {
		row.Order = *p.Order
	}
}

// StorageBackend is where canonical rows live.
//
// Create calls return the id the backend assigned. Deleting a category
// deletes its bookmarks; deleting a tab group ungroups its categories.
type StorageBackend interface {
	Mode() Mode

	// Subscribe delivers every resource once, then again on each change,
	// until the returned cancel func is called or ctx ends.
	Subscribe(ctx context.Context, l Listener) (cancel func(), err error)
	Snapshot(ctx context.Context) (model.Snapshot, error)

	CreateCategory(ctx context.Context, in CategoryInput) (string, error)
	UpdateCategory(ctx context.Context, id string, p CategoryPatch) error
	ReorderCategory(ctx context.Context, id string, order float64, groupID *string) error
	DeleteCategory(ctx context.Context, id string) error

	CreateBookmark(ctx context.Context, in BookmarkInput) (string, error)
	UpdateBookmark(ctx context.Context, id string, p BookmarkPatch) error
	ReorderBookmark(ctx context.Context, id, categoryID string, order float64) error
	DeleteBookmark(ctx context.Context, id string) error

	CreateTabGroup(ctx context.Context, in TabGroupInput) (string, error)
	UpdateTabGroup(ctx context.Context, id string, p TabGroupPatch) error
	ReorderTabGroup(ctx context.Context, id string, order float64) error
	DeleteTabGroup(ctx context.Context, id string) error

	// Import adds every row of snap under fresh ids.
	Import(ctx context.Context, snap model.Snapshot) error
	EraseAll(ctx context.Context) error
	SeedDefaults(ctx context.Context) error

	Close() error
}

func reorderCategoryPatch(order float64, groupID *string) CategoryPatch {
	return CategoryPatch{Order: &order, SetGroup: true, GroupID: groupID}
}

func reorderBookmarkPatch(categoryID string, order float64) BookmarkPatch {
	return BookmarkPatch{CategoryID: &categoryID, Order: &order}
}
