package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/bmboard/internal/search"
)

// modalKind is the overlay currently shown over the board.
type modalKind int

const (
	modalNone modalKind = iota
	modalAddBookmark
	modalAddCategory
	modalRename
	modalSearch
	modalConfirm
	modalAlert
	modalHelp
)

// modalState holds the inputs and context of the open modal.
type modalState struct {
	kind   modalKind
	title  string
	inputs []textinput.Model
	focus  int

	// Row the modal acts on: the renamed row, or the category a bookmark
	// is added to.
	target row
	// Tab group a new category joins, empty for standalone.
	groupID string

	results []search.Result
	cursor  int

	text  string
	reply chan<- bool
}

// newInput creates a focused-ready text input. The cursor does not blink,
// so focusing never schedules ticks.
func newInput(placeholder string, limit, width int, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = width
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(value)
	in.CursorEnd()
	return in
}

// focusInput moves focus to input i.
func (m *modalState) focusInput(i int) {
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.focus = i
}

func (m modalState) value(i int) string {
	if i >= len(m.inputs) {
		return ""
	}
	return m.inputs[i].Value()
}
