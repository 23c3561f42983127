package tui

import (
	"github.com/nikbrunner/bmboard/internal/drag"
	"github.com/nikbrunner/bmboard/internal/model"
)

// rowKind is what a board line shows.
type rowKind int

const (
	rowGroup rowKind = iota
	rowCategory
	rowBookmark
	rowBlank
)

// row is one rendered board line.
type row struct {
	kind     rowKind
	id       string
	parentID string // owning category of a bookmark, group of a grouped category
	depth    int
	title    string
	url      string
}

func (r row) selectable() bool {
	return r.kind != rowBlank
}

func (r row) entity() drag.Entity {
	switch r.kind {
	case rowGroup:
		return drag.Entity{Kind: drag.KindTabGroup, ID: r.id}
	case rowCategory:
		return drag.Entity{Kind: drag.KindCategory, ID: r.id}
	default:
		return drag.Entity{Kind: drag.KindBookmark, ID: r.id}
	}
}

// board is the view laid out one row per line. Candidate rects are in
// line units, so a pointer on line n is at y = n + 0.5.
type board struct {
	rows       []row
	candidates []drag.Candidate
}

func buildBoard(view model.View) board {
	var b board

	addCategory := func(cat *model.Category, depth int, groupID *string) drag.Candidate {
		top := len(b.rows)
		b.rows = append(b.rows, row{kind: rowCategory, id: cat.ID, parentID: deref(groupID), depth: depth, title: cat.Name})
		var rows []drag.Rect
		for _, bm := range cat.Bookmarks {
			rows = append(rows, drag.Rect{Top: float64(len(b.rows)), Height: 1})
			b.rows = append(b.rows, row{kind: rowBookmark, id: bm.ID, parentID: cat.ID, depth: depth + 1, title: bm.Title, url: bm.URL})
		}
		return drag.Candidate{
			Kind:    drag.KindCategory,
			ID:      cat.ID,
			GroupID: model.CloneString(groupID),
			Rect:    drag.Rect{Top: float64(top), Height: float64(len(b.rows) - top)},
			Rows:    rows,
		}
	}

	for _, item := range view.Layout {
		top := len(b.rows)
		switch item := item.(type) {
		case model.CategoryItem:
			c := addCategory(item.Category, 0, nil)
			b.blank()
			// The gap below an item belongs to it
			c.Rect.Height++
			b.candidates = append(b.candidates, c)

		case model.TabGroupItem:
			g := item.Group
			b.rows = append(b.rows, row{kind: rowGroup, id: g.ID, title: g.Name})
			for _, cat := range g.Categories {
				b.candidates = append(b.candidates, addCategory(cat, 1, &g.ID))
			}
			b.blank()
			b.candidates = append(b.candidates, drag.Candidate{
				Kind: drag.KindTabGroup,
				ID:   g.ID,
				Rect: drag.Rect{Top: float64(top), Height: float64(len(b.rows) - top)},
			})
		}
	}
	return b
}

func (b *board) blank() {
	b.rows = append(b.rows, row{kind: rowBlank})
}

// lineOf returns the line showing id, or -1.
func (b board) lineOf(id string) int {
	for i, r := range b.rows {
		if r.selectable() && r.id == id {
			return i
		}
	}
	return -1
}

// nextSelectable returns the closest selectable line from line in direction
// dir, or line itself when there is none.
func (b board) nextSelectable(line, dir int) int {
	for i := line + dir; i >= 0 && i < len(b.rows); i += dir {
		if b.rows[i].selectable() {
			return i
		}
	}
	return line
}

// categoryAt returns the category a line belongs to, if any.
func (b board) categoryAt(line int) (string, bool) {
	if line < 0 || line >= len(b.rows) {
		return "", false
	}
	switch r := b.rows[line]; r.kind {
	case rowCategory:
		return r.id, true
	case rowBookmark:
		return r.parentID, true
	}
	return "", false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
