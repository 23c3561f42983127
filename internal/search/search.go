// Package search does fuzzy title matching over the board.
package search

import (
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result is one fuzzy match.
type Result struct {
	Bookmark       model.Bookmark
	Category       *model.Category
	Group          *model.TabGroup // nil for standalone categories
	MatchedIndexes []int
	Score          int
}

// Location is where the bookmark lives, "Group / Category" for grouped ones.
func (r Result) Location() string {
	if r.Group != nil {
		return r.Group.Name + " / " + r.Category.Name
	}
	return r.Category.Name
}

type entry struct {
	bookmark model.Bookmark
	category *model.Category
	group    *model.TabGroup
}

// entries implements fuzzy.Source over bookmark titles.
type entries []entry

func (e entries) String(i int) string {
	return e[i].bookmark.Title
}

func (e entries) Len() int {
	return len(e)
}

// collect lists bookmarks in layout order.
func collect(view model.View) entries {
	var out entries
	add := func(cat *model.Category, group *model.TabGroup) {
		for _, b := range cat.Bookmarks {
			out = append(out, entry{bookmark: b, category: cat, group: group})
		}
	}
	for _, item := range view.Layout {
		switch item := item.(type) {
		case model.CategoryItem:
			add(item.Category, nil)
		case model.TabGroupItem:
			for _, cat := range item.Group.Categories {
				add(cat, item.Group)
			}
		}
	}
	return out
}

// Bookmarks searches all bookmarks by title using fuzzy matching.
// Returns results sorted by match score (best first).
func Bookmarks(view model.View, query string) []Result {
	if query == "" {
		return nil
	}

	all := collect(view)
	matches := fuzzy.FindFrom(query, all)

	results := make([]Result, len(matches))
	for i, m := range matches {
		e := all[m.Index]
		results[i] = Result{
			Bookmark:       e.bookmark,
			Category:       e.category,
			Group:          e.group,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
