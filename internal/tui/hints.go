package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// renderHint renders a single binding as "key:desc".
func (a App) renderHint(b key.Binding) string {
	h := b.Help()
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders bindings in horizontal format for the bottom bar.
func (a App) renderHints(bindings ...key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = a.renderHint(b)
	}
	return strings.Join(parts, " ")
}

// contextualHints returns the bindings that apply right now.
func (a App) contextualHints() []key.Binding {
	k := a.keys
	switch {
	case a.modal.kind == modalSearch:
		return []key.Binding{k.Open, k.Cancel}
	case a.modal.kind != modalNone:
		return []key.Binding{k.Cancel}
	case a.grabbed:
		return []key.Binding{k.Up, k.Down, k.Drop, k.Cancel}
	}

	hints := []key.Binding{k.Down, k.Grab}
	if r, ok := a.current(); ok {
		switch r.kind {
		case rowBookmark:
			hints = append(hints, k.Open, k.YankURL, k.Rename, k.Delete)
		case rowCategory:
			hints = append(hints, k.AddBookmark, k.Rename, k.Delete)
			if r.parentID != "" {
				hints = append(hints, k.Ungroup)
			}
		case rowGroup:
			hints = append(hints, k.Rename, k.Delete)
		}
	}
	return append(hints, k.Undo, k.Redo, k.Search, k.Help, k.Quit)
}

// helpSections lists every binding for the help overlay.
func (a App) helpSections() [][]key.Binding {
	k := a.keys
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Search},
		{k.Open, k.YankURL, k.AddBookmark, k.AddCategory, k.Rename, k.Delete, k.Ungroup},
		{k.Grab, k.Drop, k.Cancel, k.Undo, k.Redo, k.Help, k.Quit},
	}
}
