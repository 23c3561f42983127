package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/ordering"
	"github.com/nikbrunner/bmboard/internal/undo"
)

// DefaultGroupName names tab groups created by dropping one category onto another.
const DefaultGroupName = "New Group"

// Every helper below follows the same steps: capture what the inverse needs,
// write through the backend, then record the inverse. Backend writes reach the
// view only through the subscription, never by editing rows here.
//
// Undo and redo recreate deleted entities under new ids. The alias table maps
// each replaced id to its successor, and commands resolve ids when they run,
// so older commands keep pointing at the live entity.

func (s *Store) resolve(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range len(s.aliases) + 1 {
		next, ok := s.aliases[id]
		if !ok {
			break
		}
		id = next
	}
	return id
}

func (s *Store) resolvePtr(id *string) *string {
	if id == nil {
		return nil
	}
	return model.StringPtr(s.resolve(*id))
}

// replaced records that the entity known as oldID now lives at newID.
func (s *Store) replaced(oldID, newID string) {
	current := s.resolve(oldID)
	if current == newID {
		return
	}
	s.mu.Lock()
	s.aliases[current] = newID
	s.mu.Unlock()
}

func (s *Store) fail(op string, err error) error {
	s.logger.Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) categoryRow(id string) (model.CategoryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			c.GroupID = model.CloneString(c.GroupID)
			return c, nil
		}
	}
	return model.CategoryRow{}, fmt.Errorf("category %s: %w", id, backend.ErrNotFound)
}

func (s *Store) bookmarkRow(id string) (model.BookmarkRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookmarks {
		if b.ID == id {
			b.IconPath = model.CloneString(b.IconPath)
			return b, nil
		}
	}
	return model.BookmarkRow{}, fmt.Errorf("bookmark %s: %w", id, backend.ErrNotFound)
}

func (s *Store) tabGroupRow(id string) (model.TabGroupRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.tabGroups {
		if g.ID == id {
			return g, nil
		}
	}
	return model.TabGroupRow{}, fmt.Errorf("tab group %s: %w", id, backend.ErrNotFound)
}

// bookmarksOf returns the rows of a category's bookmarks in display order.
func (s *Store) bookmarksOf(categoryID string) []model.BookmarkRow {
	s.mu.Lock()
	var rows []model.BookmarkRow
	for _, b := range s.bookmarks {
		if b.CategoryID == categoryID {
			b.IconPath = model.CloneString(b.IconPath)
			rows = append(rows, b)
		}
	}
	s.mu.Unlock()
	slices.SortStableFunc(rows, func(a, b model.BookmarkRow) int { return byOrder(a.Order, a.ID, b.Order, b.ID) })
	return rows
}

// membersOf returns the rows of a group's categories in display order.
func (s *Store) membersOf(groupID string) []model.CategoryRow {
	s.mu.Lock()
	var rows []model.CategoryRow
	for _, c := range s.categories {
		if c.GroupID != nil && *c.GroupID == groupID {
			c.GroupID = model.CloneString(c.GroupID)
			rows = append(rows, c)
		}
	}
	s.mu.Unlock()
	slices.SortStableFunc(rows, func(a, b model.CategoryRow) int { return byOrder(a.Order, a.ID, b.Order, b.ID) })
	return rows
}

// endOrder returns an order placing a new item after every existing one.
func endOrder(orders []float64) float64 {
	if len(orders) == 0 {
		return ordering.Midpoint(nil, 0)
	}
	return slices.Max(orders) + 1
}

// layoutEnd is the order for a new top-level item.
func (s *Store) layoutEnd() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]float64, 0, len(s.categories)+len(s.tabGroups))
	for _, c := range s.categories {
		if c.GroupID == nil {
			orders = append(orders, c.Order)
		}
	}
	for _, g := range s.tabGroups {
		orders = append(orders, g.Order)
	}
	return endOrder(orders)
}

func (s *Store) groupEnd(groupID string) float64 {
	members := s.membersOf(groupID)
	orders := make([]float64, len(members))
	for i, m := range members {
		orders[i] = m.Order
	}
	return endOrder(orders)
}

func (s *Store) categoryEnd(categoryID string) float64 {
	rows := s.bookmarksOf(categoryID)
	orders := make([]float64, len(rows))
	for i, b := range rows {
		orders[i] = b.Order
	}
	return endOrder(orders)
}

// Categories

// CreateCategory appends a category to the layout, or to the end of groupID.
func (s *Store) CreateCategory(ctx context.Context, name string, groupID *string) (string, error) {
	order := s.layoutEnd()
	if groupID != nil {
		order = s.groupEnd(*groupID)
	}
	in := backend.CategoryInput{Name: name, Order: order, GroupID: model.CloneString(groupID)}

	id, err := s.backend.CreateCategory(ctx, in)
	if err != nil {
		return "", s.fail("create category", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.backend.DeleteCategory(ctx, s.resolve(id)) },
		func(ctx context.Context) error { return s.recreateCategory(ctx, id, in, nil) },
	))
	return id, nil
}

func (s *Store) recreateCategory(ctx context.Context, oldID string, in backend.CategoryInput, bookmarks []model.BookmarkRow) error {
	in.GroupID = s.resolvePtr(in.GroupID)
	newID, err := s.backend.CreateCategory(ctx, in)
	if err != nil {
		return err
	}
	s.replaced(oldID, newID)

	for _, b := range bookmarks {
		if err := s.recreateBookmark(ctx, b.ID, bookmarkInput(b)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, p backend.CategoryPatch) error {
	row, err := s.categoryRow(id)
	if err != nil {
		return err
	}

	var inverse backend.CategoryPatch
	if p.Name != nil {
		inverse.Name = &row.Name
	}
	if p.Order != nil {
		inverse.Order = &row.Order
	}
	if p.SetGroup {
		inverse.SetGroup = true
		inverse.GroupID = row.GroupID
	}

	if err := s.backend.UpdateCategory(ctx, id, p); err != nil {
		return s.fail("update category", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error {
			return s.backend.UpdateCategory(ctx, s.resolve(id), s.resolveCategoryPatch(inverse))
		},
		func(ctx context.Context) error {
			return s.backend.UpdateCategory(ctx, s.resolve(id), s.resolveCategoryPatch(p))
		},
	))
	return nil
}

func (s *Store) resolveCategoryPatch(p backend.CategoryPatch) backend.CategoryPatch {
	if p.SetGroup {
		p.GroupID = s.resolvePtr(p.GroupID)
	}
	return p
}

// RenameCategory is UpdateCategory for the name alone.
func (s *Store) RenameCategory(ctx context.Context, id, name string) error {
	return s.UpdateCategory(ctx, id, backend.CategoryPatch{Name: &name})
}

// DeleteCategory deletes a category and its bookmarks. Undo restores both.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	row, err := s.categoryRow(id)
	if err != nil {
		return err
	}
	bookmarks := s.bookmarksOf(id)

	if err := s.backend.DeleteCategory(ctx, id); err != nil {
		return s.fail("delete category", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.recreateCategory(ctx, id, categoryInput(row), bookmarks) },
		func(ctx context.Context) error { return s.backend.DeleteCategory(ctx, s.resolve(id)) },
	))
	return nil
}

// ReorderCategory moves a category to order, inside groupID or standalone.
func (s *Store) ReorderCategory(ctx context.Context, id string, order float64, groupID *string) error {
	row, err := s.categoryRow(id)
	if err != nil {
		return err
	}
	if row.Order == order && model.SameID(row.GroupID, groupID) {
		return nil
	}
	groupID = model.CloneString(groupID)

	if err := s.backend.ReorderCategory(ctx, id, order, groupID); err != nil {
		return s.fail("reorder category", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error {
			return s.backend.ReorderCategory(ctx, s.resolve(id), row.Order, s.resolvePtr(row.GroupID))
		},
		func(ctx context.Context) error {
			return s.backend.ReorderCategory(ctx, s.resolve(id), order, s.resolvePtr(groupID))
		},
	))
	return nil
}

// Bookmarks

// CreateBookmark appends a bookmark to a category.
func (s *Store) CreateBookmark(ctx context.Context, categoryID, title, url string) (string, error) {
	in := backend.BookmarkInput{
		CategoryID: categoryID,
		Title:      title,
		URL:        url,
		Order:      s.categoryEnd(categoryID),
	}

	id, err := s.backend.CreateBookmark(ctx, in)
	if err != nil {
		return "", s.fail("create bookmark", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.backend.DeleteBookmark(ctx, s.resolve(id)) },
		func(ctx context.Context) error { return s.recreateBookmark(ctx, id, in) },
	))
	return id, nil
}

func (s *Store) recreateBookmark(ctx context.Context, oldID string, in backend.BookmarkInput) error {
	in.CategoryID = s.resolve(in.CategoryID)
	newID, err := s.backend.CreateBookmark(ctx, in)
	if err != nil {
		return err
	}
	s.replaced(oldID, newID)
	return nil
}

func (s *Store) UpdateBookmark(ctx context.Context, id string, p backend.BookmarkPatch) error {
	row, err := s.bookmarkRow(id)
	if err != nil {
		return err
	}

	var inverse backend.BookmarkPatch
	if p.CategoryID != nil {
		inverse.CategoryID = &row.CategoryID
	}
	if p.Title != nil {
		inverse.Title = &row.Title
	}
	if p.URL != nil {
		inverse.URL = &row.URL
	}
	if p.Order != nil {
		inverse.Order = &row.Order
	}

	if err := s.backend.UpdateBookmark(ctx, id, p); err != nil {
		return s.fail("update bookmark", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error {
			return s.backend.UpdateBookmark(ctx, s.resolve(id), s.resolveBookmarkPatch(inverse))
		},
		func(ctx context.Context) error {
			return s.backend.UpdateBookmark(ctx, s.resolve(id), s.resolveBookmarkPatch(p))
		},
	))
	return nil
}

func (s *Store) resolveBookmarkPatch(p backend.BookmarkPatch) backend.BookmarkPatch {
	p.CategoryID = s.resolvePtr(p.CategoryID)
	return p
}

// DeleteBookmarkByID deletes a bookmark. Undo recreates it under a new id.
func (s *Store) DeleteBookmarkByID(ctx context.Context, id string) error {
	row, err := s.bookmarkRow(id)
	if err != nil {
		return err
	}

	if err := s.backend.DeleteBookmark(ctx, id); err != nil {
		return s.fail("delete bookmark", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.recreateBookmark(ctx, id, bookmarkInput(row)) },
		func(ctx context.Context) error { return s.backend.DeleteBookmark(ctx, s.resolve(id)) },
	))
	return nil
}

// ReorderBookmark moves a bookmark to order within categoryID.
func (s *Store) ReorderBookmark(ctx context.Context, id, categoryID string, order float64) error {
	row, err := s.bookmarkRow(id)
	if err != nil {
		return err
	}
	if row.Order == order && row.CategoryID == categoryID {
		return nil
	}

	if err := s.backend.ReorderBookmark(ctx, id, categoryID, order); err != nil {
		return s.fail("reorder bookmark", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error {
			return s.backend.ReorderBookmark(ctx, s.resolve(id), s.resolve(row.CategoryID), row.Order)
		},
		func(ctx context.Context) error {
			return s.backend.ReorderBookmark(ctx, s.resolve(id), s.resolve(categoryID), order)
		},
	))
	return nil
}

// Tab groups

// CreateTabGroup appends an empty tab group. It stays out of the layout
// until a category joins it.
func (s *Store) CreateTabGroup(ctx context.Context, name string) (string, error) {
	return s.createTabGroup(ctx, backend.TabGroupInput{Name: name, Order: s.layoutEnd()})
}

func (s *Store) createTabGroup(ctx context.Context, in backend.TabGroupInput) (string, error) {
	id, err := s.backend.CreateTabGroup(ctx, in)
	if err != nil {
		return "", s.fail("create tab group", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.backend.DeleteTabGroup(ctx, s.resolve(id)) },
		func(ctx context.Context) error { return s.recreateTabGroup(ctx, id, in, nil) },
	))
	return id, nil
}

func (s *Store) recreateTabGroup(ctx context.Context, oldID string, in backend.TabGroupInput, members []model.CategoryRow) error {
	newID, err := s.backend.CreateTabGroup(ctx, in)
	if err != nil {
		return err
	}
	s.replaced(oldID, newID)

	for _, m := range members {
		if err := s.backend.ReorderCategory(ctx, s.resolve(m.ID), m.Order, &newID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateTabGroup(ctx context.Context, id string, p backend.TabGroupPatch) error {
	row, err := s.tabGroupRow(id)
	if err != nil {
		return err
	}

	var inverse backend.TabGroupPatch
	if p.Name != nil {
		inverse.Name = &row.Name
	}
	if p.Order != nil {
		inverse.Order = &row.Order
	}

	if err := s.backend.UpdateTabGroup(ctx, id, p); err != nil {
		return s.fail("update tab group", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.backend.UpdateTabGroup(ctx, s.resolve(id), inverse) },
		func(ctx context.Context) error { return s.backend.UpdateTabGroup(ctx, s.resolve(id), p) },
	))
	return nil
}

// DeleteTabGroup deletes a group; its categories become standalone.
// Undo recreates the group and moves them back in.
func (s *Store) DeleteTabGroup(ctx context.Context, id string) error {
	row, err := s.tabGroupRow(id)
	if err != nil {
		return err
	}
	members := s.membersOf(id)

	if err := s.backend.DeleteTabGroup(ctx, id); err != nil {
		return s.fail("delete tab group", err)
	}

	in := backend.TabGroupInput{Name: row.Name, Order: row.Order}
	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.recreateTabGroup(ctx, id, in, members) },
		func(ctx context.Context) error { return s.backend.DeleteTabGroup(ctx, s.resolve(id)) },
	))
	return nil
}

func (s *Store) ReorderTabGroup(ctx context.Context, id string, order float64) error {
	row, err := s.tabGroupRow(id)
	if err != nil {
		return err
	}
	if row.Order == order {
		return nil
	}

	if err := s.backend.ReorderTabGroup(ctx, id, order); err != nil {
		return s.fail("reorder tab group", err)
	}

	s.history.Push(undo.Funcs(
		func(ctx context.Context) error { return s.backend.ReorderTabGroup(ctx, s.resolve(id), row.Order) },
		func(ctx context.Context) error { return s.backend.ReorderTabGroup(ctx, s.resolve(id), order) },
	))
	return nil
}

// Compound changes, each one undo step

// GroupCategories creates a tab group at the target's position holding the
// target followed by the dragged category.
func (s *Store) GroupCategories(ctx context.Context, targetID, draggedID, name string) (string, error) {
	if targetID == draggedID {
		return "", fmt.Errorf("group category %s with itself", targetID)
	}
	target, err := s.categoryRow(targetID)
	if err != nil {
		return "", err
	}
	if _, err := s.categoryRow(draggedID); err != nil {
		return "", err
	}
	name = cmp.Or(name, DefaultGroupName)

	var groupID string
	err = s.history.RunInGroup(func() error {
		var err error
		groupID, err = s.createTabGroup(ctx, backend.TabGroupInput{Name: name, Order: target.Order})
		if err != nil {
			return err
		}
		if err := s.ReorderCategory(ctx, targetID, target.Order, &groupID); err != nil {
			return err
		}
		return s.ReorderCategory(ctx, draggedID, ordering.Between(target.Order, target.Order+1), &groupID)
	})
	return groupID, err
}

// AddToGroup appends a category to a tab group.
func (s *Store) AddToGroup(ctx context.Context, categoryID, groupID string) error {
	if _, err := s.tabGroupRow(groupID); err != nil {
		return err
	}
	return s.ReorderCategory(ctx, categoryID, s.groupEnd(groupID), &groupID)
}

// Ungroup makes a grouped category standalone, right after its group.
func (s *Store) Ungroup(ctx context.Context, categoryID string) error {
	row, err := s.categoryRow(categoryID)
	if err != nil {
		return err
	}
	if row.GroupID == nil {
		return nil
	}
	group, err := s.tabGroupRow(*row.GroupID)
	if err != nil {
		return s.ReorderCategory(ctx, categoryID, s.layoutEnd(), nil)
	}

	view := s.canonicalView()
	order := ordering.Between(group.Order, group.Order+1)
	if i := view.LayoutIndex(group.ID); i >= 0 && i+1 < len(view.Layout) {
		order = ordering.Between(group.Order, view.Layout[i+1].SortOrder())
	}
	return s.ReorderCategory(ctx, categoryID, order, nil)
}

// MergeTabGroups moves every category of dragged to the end of target and
// deletes dragged.
func (s *Store) MergeTabGroups(ctx context.Context, targetID, draggedID string) error {
	if targetID == draggedID {
		return nil
	}
	if _, err := s.tabGroupRow(targetID); err != nil {
		return err
	}
	if _, err := s.tabGroupRow(draggedID); err != nil {
		return err
	}
	members := s.membersOf(draggedID)
	// Orders are assigned up front: in sync mode the rows lag behind each write
	next := s.groupEnd(targetID)

	return s.history.RunInGroup(func() error {
		for i, m := range members {
			if err := s.ReorderCategory(ctx, m.ID, next+float64(i), &targetID); err != nil {
				return err
			}
		}
		return s.DeleteTabGroup(ctx, draggedID)
	})
}

// Bulk operations. These are not recorded in history.

// ImportSnapshot adds every row of snap under fresh ids.
func (s *Store) ImportSnapshot(ctx context.Context, snap model.Snapshot) error {
	if err := s.backend.Import(ctx, snap); err != nil {
		return s.fail("import", err)
	}
	return nil
}

// SeedDefaults adds the sample board.
func (s *Store) SeedDefaults(ctx context.Context) error {
	if err := s.backend.SeedDefaults(ctx); err != nil {
		return s.fail("seed defaults", err)
	}
	return nil
}

// EraseAll deletes everything after the user confirms, and clears history.
// It reports whether anything was erased.
func (s *Store) EraseAll(ctx context.Context) (bool, error) {
	if !s.dialog.Confirm(ctx, "Erase the whole board? This cannot be undone.") {
		return false, nil
	}
	if err := s.backend.EraseAll(ctx); err != nil {
		return false, s.fail("erase all", err)
	}
	s.history.Clear()
	return true, nil
}

func (s *Store) canonicalView() model.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func categoryInput(row model.CategoryRow) backend.CategoryInput {
	return backend.CategoryInput{Name: row.Name, Order: row.Order, GroupID: model.CloneString(row.GroupID)}
}

func bookmarkInput(row model.BookmarkRow) backend.BookmarkInput {
	return backend.BookmarkInput{
		CategoryID: row.CategoryID,
		Title:      row.Title,
		URL:        row.URL,
		IconPath:   model.CloneString(row.IconPath),
		Order:      row.Order,
	}
}
