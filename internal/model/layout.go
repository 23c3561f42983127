package model

// LayoutItem is one entry of the merged, order-sorted top-level sequence.
// It is either a CategoryItem or a TabGroupItem; consumers switch on the type.
type LayoutItem interface {
	ID() string
	SortOrder() float64
	layoutItem()
}

// CategoryItem is a standalone category in the layout.
type CategoryItem struct {
	Category *Category
}

func (i CategoryItem) ID() string         { return i.Category.ID }
func (i CategoryItem) SortOrder() float64 { return i.Category.Order }
func (CategoryItem) layoutItem()          {}

// TabGroupItem is a non-empty tab group in the layout.
type TabGroupItem struct {
	Group *TabGroup
}

func (i TabGroupItem) ID() string         { return i.Group.ID }
func (i TabGroupItem) SortOrder() float64 { return i.Group.Order }
func (TabGroupItem) layoutItem()          {}
