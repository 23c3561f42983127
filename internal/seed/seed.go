// Package seed provides the sample board used to populate an empty backend.
package seed

import (
	_ "embed"
	"fmt"

	"github.com/nikbrunner/bmboard/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type board struct {
	Groups     []group    `yaml:"groups"`
	Categories []category `yaml:"categories"`
}

type group struct {
	Name       string     `yaml:"name"`
	Categories []category `yaml:"categories"`
}

type category struct {
	Name      string     `yaml:"name"`
	Bookmarks []bookmark `yaml:"bookmarks"`
}

type bookmark struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Defaults returns the sample board as raw rows with placeholder ids.
// Callers reassign ids before writing them anywhere.
func Defaults() (model.Snapshot, error) {
	return Parse(defaultsYAML)
}

// Parse decodes a board document. Groups come first in the layout,
// followed by standalone categories, each in document order.
func Parse(data []byte) (model.Snapshot, error) {
	var b board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode seed: %w", err)
	}

	snap := model.NewSnapshot()
	n := 0
	nextID := func(kind string) string {
		n++
		return fmt.Sprintf("seed-%s-%d", kind, n)
	}

	addCategory := func(c category, order float64, groupID *string) {
		id := nextID("category")
		snap.Categories = append(snap.Categories, model.CategoryRow{
			ID:      id,
			Name:    c.Name,
			Order:   order,
			GroupID: model.CloneString(groupID),
		})
		for i, bm := range c.Bookmarks {
			snap.Bookmarks = append(snap.Bookmarks, model.BookmarkRow{
				ID:         nextID("bookmark"),
				CategoryID: id,
				Title:      bm.Title,
				URL:        bm.URL,
				Order:      float64(i + 1),
			})
		}
	}

	top := 0
	for _, g := range b.Groups {
		top++
		id := nextID("group")
		snap.TabGroups = append(snap.TabGroups, model.TabGroupRow{ID: id, Name: g.Name, Order: float64(top)})
		for i, c := range g.Categories {
			addCategory(c, float64(i+1), &id)
		}
	}
	for _, c := range b.Categories {
		top++
		addCategory(c, float64(top), nil)
	}

	return snap, nil
}
