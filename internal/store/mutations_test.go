package store_test

import (
	"context"
	"testing"

	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/seed"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestStore_UpdateBookmarkUndo(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	dev, _ := s.CreateCategory(ctx, "Dev", nil)
	news, _ := s.CreateCategory(ctx, "News", nil)
	gh, _ := s.CreateBookmark(ctx, dev, "GitHub", "https://github.com")

	title, url := "GitHub Home", "https://github.com/home"
	assert.NilError(t, s.UpdateBookmark(ctx, gh, backend.BookmarkPatch{Title: &title, URL: &url, CategoryID: &news}))

	b, owner := s.View().Bookmark(gh)
	assert.Assert(t, b != nil)
	assert.Equal(t, b.Title, title)
	assert.Equal(t, b.URL, url)
	assert.Equal(t, owner.ID, news)

	assert.NilError(t, s.Undo(ctx))
	b, owner = s.View().Bookmark(gh)
	assert.Assert(t, b != nil)
	assert.Equal(t, b.Title, "GitHub")
	assert.Equal(t, b.URL, "https://github.com")
	assert.Equal(t, owner.ID, dev)
}

func TestStore_UpdateTabGroupUndo(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	a, _ := s.CreateCategory(ctx, "A", nil)
	b, _ := s.CreateCategory(ctx, "B", nil)
	group, err := s.GroupCategories(ctx, a, b, "")
	assert.NilError(t, err)

	name := "Work"
	assert.NilError(t, s.UpdateTabGroup(ctx, group, backend.TabGroupPatch{Name: &name}))
	assert.Equal(t, s.View().TabGroup(group).Name, "Work")

	assert.NilError(t, s.Undo(ctx))
	assert.Equal(t, s.View().TabGroup(group).Name, "New Group")

	assert.NilError(t, s.Redo(ctx))
	assert.Equal(t, s.View().TabGroup(group).Name, "Work")
}

func TestStore_ReorderCategoryIntoGroupUndo(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	a, _ := s.CreateCategory(ctx, "A", nil)
	b, _ := s.CreateCategory(ctx, "B", nil)
	c, _ := s.CreateCategory(ctx, "C", nil)
	group, _ := s.GroupCategories(ctx, a, b, "Pair")
	before := shapeOf(s.View())

	assert.NilError(t, s.ReorderCategory(ctx, c, 0.25, &group))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{
		{Name: "C", Group: "Pair", Bookmarks: []string{}},
		{Name: "A", Group: "Pair", Bookmarks: []string{}},
		{Name: "B", Group: "Pair", Bookmarks: []string{}},
	})

	assert.NilError(t, s.Undo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), before)
}

func TestStore_ReorderTabGroupUndo(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	solo, _ := s.CreateCategory(ctx, "Solo", nil)
	a, _ := s.CreateCategory(ctx, "A", nil)
	b, _ := s.CreateCategory(ctx, "B", nil)
	group, _ := s.GroupCategories(ctx, a, b, "Pair")

	layoutIDs := func() []string {
		var ids []string
		for _, item := range s.LayoutItems() {
			ids = append(ids, item.ID())
		}
		return ids
	}
	assert.DeepEqual(t, layoutIDs(), []string{solo, group})

	assert.NilError(t, s.ReorderTabGroup(ctx, group, 0.25))
	assert.DeepEqual(t, layoutIDs(), []string{group, solo})

	assert.NilError(t, s.Undo(ctx))
	assert.DeepEqual(t, layoutIDs(), []string{solo, group})
}

func TestStore_BulkOperationsSkipHistory(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	snap := model.Snapshot{
		Categories: []model.CategoryRow{{ID: "c1", Name: "Imported", Order: 1}},
		Bookmarks:  []model.BookmarkRow{{ID: "b1", CategoryID: "c1", Title: "GitHub", URL: "https://github.com", Order: 1}},
	}
	assert.NilError(t, s.ImportSnapshot(ctx, snap))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{{Name: "Imported", Bookmarks: []string{"GitHub"}}})
	assert.Check(t, s.View().Category("c1") == nil, "imported rows get fresh ids")

	assert.NilError(t, s.SeedDefaults(ctx))
	defaults, err := seed.Defaults()
	assert.NilError(t, err)
	assert.Check(t, is.Len(s.Categories(), 1+len(defaults.Categories)))

	assert.Check(t, !s.CanUndo())
}
