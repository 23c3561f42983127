package model

// View is the denormalized state handed to renderers.
type View struct {
	Categories []*Category
	Layout     []LayoutItem
	TabGroups  []*TabGroup
}

// Category finds a category by ID, returns nil if not found.
func (v View) Category(id string) *Category {
	for _, c := range v.Categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// TabGroup finds a tab group by ID, returns nil if not found.
func (v View) TabGroup(id string) *TabGroup {
	for _, g := range v.TabGroups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Bookmark finds a bookmark and its owning category.
func (v View) Bookmark(id string) (*Bookmark, *Category) {
	for _, c := range v.Categories {
		if i := c.BookmarkIndex(id); i >= 0 {
			return &c.Bookmarks[i], c
		}
	}
	return nil, nil
}

// LayoutIndex returns the position of the layout item with the given id, or -1.
func (v View) LayoutIndex(id string) int {
	for i, item := range v.Layout {
		if item.ID() == id {
			return i
		}
	}
	return -1
}

// AllBookmarks returns every bookmark in layout order.
func (v View) AllBookmarks() []Bookmark {
	var result []Bookmark
	for _, item := range v.Layout {
		switch it := item.(type) {
		case CategoryItem:
			result = append(result, it.Category.Bookmarks...)
		case TabGroupItem:
			for _, c := range it.Group.Categories {
				result = append(result, c.Bookmarks...)
			}
		}
	}
	return result
}
