package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmboard/internal/search"
)

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m := &a.modal
	switch msg.Type {
	case tea.KeyEsc:
		return a.closeModal(), nil

	case tea.KeyUp, tea.KeyCtrlP:
		m.cursor = max(m.cursor-1, 0)
		return a, nil

	case tea.KeyDown, tea.KeyCtrlN:
		m.cursor = max(0, min(m.cursor+1, len(m.results)-1))
		return a, nil

	case tea.KeyEnter:
		if len(m.results) == 0 {
			return a, nil
		}
		found := m.results[m.cursor]
		a = a.closeModal()
		a.focus(found.Bookmark.ID)
		a.setStatus("%s · %s", found.Bookmark.Title, found.Location())
		return a, nil
	}

	var cmd tea.Cmd
	m.inputs[0], cmd = m.inputs[0].Update(msg)
	m.results = search.Bookmarks(a.view, m.inputs[0].Value())
	m.cursor = 0
	return a, cmd
}
