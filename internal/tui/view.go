package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bmboard/internal/drag"
	"github.com/nikbrunner/bmboard/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	width := layout.CalculateContentWidth(a.width, a.cfg.Board)
	fit := func(s string) string {
		return layout.Fit(s, width, a.cfg.Text)
	}

	var b strings.Builder

	b.WriteString(fit(a.renderTitle()))
	b.WriteString("\n\n")

	if a.modal.kind != modalNone {
		b.WriteString(a.renderModal())
	} else {
		b.WriteString(a.renderBoard())
	}

	b.WriteString("\n")
	b.WriteString(fit(a.renderStatus()))
	b.WriteString("\n")
	b.WriteString(fit(a.renderHints(a.contextualHints()...)))

	return a.styles.App.Render(b.String())
}

func (a App) renderTitle() string {
	title := a.styles.Title.Render("bmboard")
	bookmarks := len(a.view.AllBookmarks())
	info := fmt.Sprintf(" · %s · %d categories · %d bookmarks", a.store.Mode(), len(a.view.Categories), bookmarks)
	return title + a.styles.Empty.Render(info)
}

// dropMarks maps board lines to the label shown for the current drop target.
func (a App) dropMarks() map[int]string {
	target, ok := a.drag.Indicator()
	if !ok || target.Zone == drag.ZoneNone {
		return nil
	}
	if target.ID == "" {
		return map[int]string{len(a.board.rows) - 1: "↓ move to end"}
	}

	if a.drag.Dragged().Kind == drag.KindBookmark {
		for _, c := range a.board.candidates {
			if c.Kind != drag.KindCategory || c.ID != target.ID {
				continue
			}
			if target.Index < len(c.Rows) {
				return map[int]string{int(c.Rows[target.Index].Top): "↑ insert above"}
			}
			last := int(c.Rect.Top)
			if n := len(c.Rows); n > 0 {
				last = int(c.Rows[n-1].Top)
			}
			return map[int]string{last: "↓ insert below"}
		}
		return nil
	}

	labels := map[drag.Zone]string{
		drag.ZoneReorderBefore: "↑ move before",
		drag.ZoneReorderAfter:  "↓ move after",
		drag.ZoneGroup:         "+ group with",
		drag.ZoneAddToGroup:    "+ add to group",
	}
	return map[int]string{a.board.lineOf(target.ID): labels[target.Zone]}
}

func (a App) renderBoard() string {
	height := layout.CalculateBoardHeight(a.height, a.cfg.Board)
	width := layout.CalculateContentWidth(a.width, a.cfg.Board)

	if len(a.board.rows) == 0 {
		empty := a.styles.Empty.Render("No categories yet. A: add category")
		return empty + strings.Repeat("\n", height-1)
	}

	marks := a.dropMarks()
	dragging := a.Dragging()
	dragged := a.drag.Dragged()

	lines := make([]string, 0, height)
	for i := a.offset; i < a.offset+height; i++ {
		if i >= len(a.board.rows) {
			lines = append(lines, "")
			continue
		}
		r := a.board.rows[i]

		gutter := "  "
		if dragging && a.grabbed && i == a.pointer {
			gutter = "› "
		}
		text := a.renderRow(r, width-2)
		switch {
		case dragging && r.id == dragged.ID && r.selectable():
			text = a.styles.Dragged.Render(layout.Strip(text))
		case i == a.cursor && !dragging:
			text = a.styles.ItemSelected.Render(layout.Strip(text))
		}
		if label, ok := marks[i]; ok {
			text += "  " + a.styles.DropTarget.Render(label)
		}
		lines = append(lines, layout.Fit(gutter+text, width, a.cfg.Text))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderRow(r row, width int) string {
	indent := strings.Repeat(" ", r.depth*a.cfg.Board.GroupIndent)
	avail := width - len(indent)

	switch r.kind {
	case rowGroup:
		text := layout.Label("▣ ", r.title, avail, a.cfg.Text)
		return indent + a.styles.Group.Render(text)
	case rowCategory:
		text := layout.Label("▸ ", r.title, avail, a.cfg.Text)
		return indent + a.styles.Category.Render(text)
	case rowBookmark:
		title := layout.Label("• ", r.title, avail, a.cfg.Text)
		rest := avail - layout.Width(title) - 2
		if rest <= 0 {
			return indent + a.styles.Bookmark.Render(title)
		}
		url := layout.Fit(r.url, rest, a.cfg.Text)
		return indent + a.styles.Bookmark.Render(title) + "  " + a.styles.URL.Render(url)
	}
	return ""
}

func (a App) renderStatus() string {
	if a.Dragging() {
		d := a.drag.Dragged()
		target, ok := a.drag.Indicator()
		if !ok {
			return a.styles.Info.Render("Moving " + d.Kind.String())
		}
		return a.styles.Info.Render(fmt.Sprintf("Moving %s · %s", d.Kind, target.Zone))
	}
	if a.status == "" {
		return ""
	}
	if a.statusErr {
		return a.styles.Error.Render("✗ " + a.status)
	}
	return a.styles.Info.Render(a.status)
}

func (a App) renderModal() string {
	width := layout.CalculateModalWidth(a.width, a.cfg.Modal)
	var body strings.Builder

	switch a.modal.kind {
	case modalConfirm:
		body.WriteString(a.modal.text)
		body.WriteString("\n\n")
		body.WriteString(a.styles.HintKey.Render("y") + " yes  " + a.styles.HintKey.Render("n") + " no")

	case modalAlert:
		body.WriteString(a.styles.Error.Render(a.modal.text))
		body.WriteString("\n\n")
		body.WriteString(a.styles.HintDesc.Render("any key to close"))

	case modalHelp:
		body.WriteString(a.styles.Title.Render("Keys"))
		body.WriteString("\n")
		for _, section := range a.helpSections() {
			body.WriteString("\n")
			for _, k := range section {
				h := k.Help()
				fmt.Fprintf(&body, "%-10s %s\n", a.styles.HintKey.Render(h.Key), a.styles.HintDesc.Render(h.Desc))
			}
		}
		body.WriteString("\nDrag with the mouse, or m then j/k and enter.")

	case modalSearch:
		body.WriteString(a.styles.Title.Render(a.modal.title))
		body.WriteString("\n\n")
		body.WriteString(a.modal.inputs[0].View())
		body.WriteString("\n\n")
		start, end := layout.CalculateVisibleListItems(a.cfg.Modal.SearchMaxVisible, a.modal.cursor, len(a.modal.results))
		for i := start; i < end; i++ {
			res := a.modal.results[i]
			line := layout.Fit(res.Bookmark.Title+"  "+res.Location(), width-6, a.cfg.Text)
			if i == a.modal.cursor {
				line = a.styles.ItemSelected.Render(line)
			}
			body.WriteString(line + "\n")
		}
		if a.modal.inputs[0].Value() != "" && len(a.modal.results) == 0 {
			body.WriteString(a.styles.Empty.Render("No matches"))
		}

	default:
		body.WriteString(a.styles.Title.Render(a.modal.title))
		body.WriteString("\n")
		for _, in := range a.modal.inputs {
			body.WriteString("\n")
			body.WriteString(in.View())
		}
		body.WriteString("\n\n")
		body.WriteString(a.styles.HintDesc.Render("tab next field · enter save · esc cancel"))
	}

	box := a.styles.Modal.Width(width).Render(body.String())
	height := layout.CalculateBoardHeight(a.height, a.cfg.Board)
	return lipgloss.Place(layout.CalculateContentWidth(a.width, a.cfg.Board), height, lipgloss.Center, lipgloss.Center, box)
}
