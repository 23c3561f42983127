package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nikbrunner/bmboard/internal/model"
)

// Denormalize nests raw rows into a View.
//
// Siblings are sorted by order, then id, so the same rows in any input order
// give the same View. Bookmarks of unknown categories are dropped. A category
// whose group does not exist is standalone. Groups without categories stay in
// TabGroups but are left out of Layout.
func Denormalize(categories []model.CategoryRow, bookmarks []model.BookmarkRow, tabGroups []model.TabGroupRow) model.View {
	cats := slices.Clone(categories)
	slices.SortStableFunc(cats, func(a, b model.CategoryRow) int { return byOrder(a.Order, a.ID, b.Order, b.ID) })
	bms := slices.Clone(bookmarks)
	slices.SortStableFunc(bms, func(a, b model.BookmarkRow) int { return byOrder(a.Order, a.ID, b.Order, b.ID) })
	groups := slices.Clone(tabGroups)
	slices.SortStableFunc(groups, func(a, b model.TabGroupRow) int { return byOrder(a.Order, a.ID, b.Order, b.ID) })

	view := model.View{
		Categories: make([]*model.Category, 0, len(cats)),
		TabGroups:  make([]*model.TabGroup, 0, len(groups)),
		Layout:     make([]model.LayoutItem, 0, len(cats)+len(groups)),
	}

	groupByID := make(map[string]*model.TabGroup, len(groups))
	for _, g := range groups {
		group := &model.TabGroup{ID: g.ID, Name: g.Name, Order: g.Order, Categories: []*model.Category{}}
		view.TabGroups = append(view.TabGroups, group)
		groupByID[g.ID] = group
	}

	categoryByID := make(map[string]*model.Category, len(cats))
	for _, c := range cats {
		category := &model.Category{ID: c.ID, Name: c.Name, Order: c.Order, Bookmarks: []model.Bookmark{}}
		if c.GroupID != nil {
			if group, ok := groupByID[*c.GroupID]; ok {
				category.GroupID = model.StringPtr(group.ID)
				group.Categories = append(group.Categories, category)
			}
		}
		view.Categories = append(view.Categories, category)
		categoryByID[c.ID] = category
	}

	for _, b := range bms {
		if category, ok := categoryByID[b.CategoryID]; ok {
			category.Bookmarks = append(category.Bookmarks, b.Bookmark())
		}
	}

	for _, category := range view.Categories {
		if category.GroupID == nil {
			view.Layout = append(view.Layout, model.CategoryItem{Category: category})
		}
	}
	for _, group := range view.TabGroups {
		if len(group.Categories) > 0 {
			view.Layout = append(view.Layout, model.TabGroupItem{Group: group})
		}
	}
	slices.SortStableFunc(view.Layout, func(a, b model.LayoutItem) int {
		return byOrder(a.SortOrder(), a.ID(), b.SortOrder(), b.ID())
	})

	return view
}

func byOrder(aOrder float64, aID string, bOrder float64, bID string) int {
	return cmp.Or(cmp.Compare(aOrder, bOrder), strings.Compare(aID, bID))
}
