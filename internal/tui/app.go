// Package tui is the interactive board: categories and tab groups in layout
// order, rearranged with the mouse or the keyboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/drag"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/store"
	"github.com/nikbrunner/bmboard/internal/tui/layout"
)

// boardTop is the screen line of the first board row: title, then a blank line.
const boardTop = 2

type renderMsg struct{}

// opMsg reports a finished store operation.
type opMsg struct {
	status string
	err    error
	focus  string // id to put the cursor on
}

// RenderNotifier returns a store render callback that wakes the program.
// Sends happen on their own goroutine since renders can fire from inside Update.
func RenderNotifier(p *tea.Program) func(model.View) {
	return func(model.View) {
		go p.Send(renderMsg{})
	}
}

// App is the main bubbletea model for the board.
type App struct {
	ctx    context.Context
	store  *store.Store
	drag   *drag.Controller
	logger *slog.Logger
	keys   KeyMap
	styles Styles
	cfg    layout.LayoutConfig
	open   func(url string) error
	copy   func(text string) error

	view   model.View
	board  board
	cursor int // board line
	offset int // first visible board line

	// Gesture state. pointer is the board line a drag is over.
	grabbed   bool
	mouseDown bool
	moved     bool
	pointer   int

	modal     modalState
	status    string
	statusErr bool

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Context context.Context // defaults to context.Background
	Store   *store.Store
	Logger  *slog.Logger
	Keys    *KeyMap // optional, uses default if nil
	Styles  *Styles // optional, uses default if nil
	// LayoutConfig is optional, uses default if nil
	LayoutConfig *layout.LayoutConfig
	// Open and Copy default to the system browser and clipboard.
	Open func(url string) error
	Copy func(text string) error
}

// NewApp creates a new App showing the store's current view.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}
	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}
	if params.Context == nil {
		params.Context = context.Background()
	}
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	if params.Open == nil {
		params.Open = OpenURL
	}
	if params.Copy == nil {
		params.Copy = clipboard.WriteAll
	}

	a := App{
		ctx:    params.Context,
		store:  params.Store,
		drag:   drag.New(drag.Params{Store: params.Store, Logger: params.Logger}),
		logger: params.Logger,
		keys:   keys,
		styles: styles,
		cfg:    cfg,
		open:   params.Open,
		copy:   params.Copy,
		width:  80,
		height: 24,
	}
	a.refresh()
	return a
}

// WithDimensions returns a copy of the app with the given terminal size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	a.scrollTo(a.cursor)
	return a
}

// Cursor returns the board line under the cursor.
func (a App) Cursor() int {
	return a.cursor
}

// Selected returns the id of the selected bookmark, category or tab group.
func (a App) Selected() string {
	if r, ok := a.current(); ok {
		return r.id
	}
	return ""
}

// Status returns the status line message.
func (a App) Status() string {
	return a.status
}

// Dragging reports whether a gesture is in progress.
func (a App) Dragging() bool {
	return a.drag.State() == drag.StateDragging
}

func (a App) current() (row, bool) {
	if a.cursor < 0 || a.cursor >= len(a.board.rows) || !a.board.rows[a.cursor].selectable() {
		return row{}, false
	}
	return a.board.rows[a.cursor], true
}

// refresh re-reads the store's view, keeping the cursor on the same item.
func (a *App) refresh() {
	selected := a.Selected()
	a.view = a.store.View()
	a.board = buildBoard(a.view)
	a.focus(selected)
}

// focus moves the cursor to id, or to the nearest selectable line.
func (a *App) focus(id string) {
	if line := a.board.lineOf(id); id != "" && line >= 0 {
		a.cursor = line
	} else {
		a.cursor = min(a.cursor, len(a.board.rows)-1)
		if a.cursor < 0 || !a.board.rows[a.cursor].selectable() {
			a.cursor = a.board.nextSelectable(a.cursor, -1)
		}
		if a.cursor < 0 || !a.board.rows[a.cursor].selectable() {
			a.cursor = a.board.nextSelectable(-1, 1)
		}
	}
	a.scrollTo(a.cursor)
}

func (a *App) scrollTo(line int) {
	height := layout.CalculateBoardHeight(a.height, a.cfg.Board)
	a.offset = layout.CalculateScrollOffset(a.offset, max(line, 0), len(a.board.rows)+1, height)
}

func (a *App) setStatus(format string, args ...any) {
	a.status = fmt.Sprintf(format, args...)
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = err.Error()
	a.statusErr = true
}

// run performs a store operation off the UI goroutine.
func (a App) run(status string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		focus, err := fn(ctx)
		return opMsg{status: status, err: err, focus: focus}
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.scrollTo(a.cursor)
		return a, nil

	case renderMsg:
		if !a.Dragging() {
			a.refresh()
		}
		return a, nil

	case opMsg:
		a.refresh()
		if msg.focus != "" {
			a.focus(msg.focus)
		}
		if msg.err != nil {
			a.setError(msg.err)
		} else if msg.status != "" {
			a.setStatus("%s", msg.status)
		}
		return a, nil

	case confirmMsg:
		a = a.cancelGesture()
		a.modal = modalState{kind: modalConfirm, text: msg.text, reply: msg.reply}
		return a, nil

	case alertMsg:
		a.modal = modalState{kind: modalAlert, text: msg.text}
		return a, nil

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case a.modal.kind != modalNone:
			return a.handleModalKey(msg)
		case a.grabbed:
			return a.handleGrabKey(msg)
		default:
			return a.handleKey(msg)
		}
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""
	r, hasRow := a.current()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.cursor = a.board.nextSelectable(a.cursor, 1)
		a.scrollTo(a.cursor)

	case key.Matches(msg, a.keys.Up):
		a.cursor = a.board.nextSelectable(a.cursor, -1)
		a.scrollTo(a.cursor)

	case key.Matches(msg, a.keys.Top):
		a.cursor = a.board.nextSelectable(-1, 1)
		a.scrollTo(a.cursor)

	case key.Matches(msg, a.keys.Bottom):
		a.cursor = a.board.nextSelectable(len(a.board.rows), -1)
		a.scrollTo(a.cursor)

	case key.Matches(msg, a.keys.Open):
		if hasRow && r.kind == rowBookmark {
			if err := a.open(r.url); err != nil {
				a.setError(fmt.Errorf("open %s: %w", r.url, err))
			} else {
				a.setStatus("Opened %s", r.title)
			}
		}

	case key.Matches(msg, a.keys.YankURL):
		if hasRow && r.kind == rowBookmark {
			if err := a.copy(r.url); err != nil {
				a.setError(fmt.Errorf("copy url: %w", err))
			} else {
				a.setStatus("Copied %s", r.url)
			}
		}

	case key.Matches(msg, a.keys.Delete):
		if hasRow {
			return a, a.delete(r)
		}

	case key.Matches(msg, a.keys.AddBookmark):
		categoryID, ok := a.board.categoryAt(a.cursor)
		if !ok {
			a.setStatus("Select a category first")
			return a, nil
		}
		a.openModal(modalAddBookmark, "Add bookmark",
			newInput("Title", a.cfg.Input.TitleCharLimit, a.cfg.Input.Width, ""),
			newInput("URL", a.cfg.Input.URLCharLimit, a.cfg.Input.Width, ""))
		a.modal.target = row{kind: rowCategory, id: categoryID}

	case key.Matches(msg, a.keys.AddCategory):
		a.openModal(modalAddCategory, "Add category",
			newInput("Name", a.cfg.Input.NameCharLimit, a.cfg.Input.Width, ""))
		if hasRow && r.kind == rowGroup {
			a.modal.groupID = r.id
		} else if hasRow && r.kind == rowCategory {
			a.modal.groupID = r.parentID
		}

	case key.Matches(msg, a.keys.Rename):
		if !hasRow {
			return a, nil
		}
		if r.kind == rowBookmark {
			a.openModal(modalRename, "Edit bookmark",
				newInput("Title", a.cfg.Input.TitleCharLimit, a.cfg.Input.Width, r.title),
				newInput("URL", a.cfg.Input.URLCharLimit, a.cfg.Input.Width, r.url))
		} else {
			a.openModal(modalRename, "Rename",
				newInput("Name", a.cfg.Input.NameCharLimit, a.cfg.Input.Width, r.title))
		}
		a.modal.target = r

	case key.Matches(msg, a.keys.Ungroup):
		if hasRow && r.kind == rowCategory && r.parentID != "" {
			id := r.id
			return a, a.run(fmt.Sprintf("Ungrouped %s", r.title), func(ctx context.Context) (string, error) {
				return id, a.store.Ungroup(ctx, id)
			})
		}

	case key.Matches(msg, a.keys.Grab):
		if !hasRow {
			return a, nil
		}
		if err := a.drag.Start(r.entity()); err != nil {
			a.setError(err)
			return a, nil
		}
		a.grabbed = true
		a.pointer = a.cursor
		a.over()

	case key.Matches(msg, a.keys.Undo):
		if !a.store.CanUndo() {
			a.setStatus("Nothing to undo")
			return a, nil
		}
		return a, a.run("Undone", func(ctx context.Context) (string, error) {
			return "", a.store.Undo(ctx)
		})

	case key.Matches(msg, a.keys.Redo):
		if !a.store.CanRedo() {
			a.setStatus("Nothing to redo")
			return a, nil
		}
		return a, a.run("Redone", func(ctx context.Context) (string, error) {
			return "", a.store.Redo(ctx)
		})

	case key.Matches(msg, a.keys.Search):
		a.openModal(modalSearch, "Search",
			newInput("Search bookmarks", a.cfg.Input.SearchCharLimit, a.cfg.Input.Width, ""))

	case key.Matches(msg, a.keys.Help):
		a.modal = modalState{kind: modalHelp}
	}

	return a, nil
}

func (a App) delete(r row) tea.Cmd {
	id := r.id
	status := fmt.Sprintf("Deleted %s · u to undo", r.title)
	return a.run(status, func(ctx context.Context) (string, error) {
		switch r.kind {
		case rowBookmark:
			return "", a.store.DeleteBookmarkByID(ctx, id)
		case rowCategory:
			return "", a.store.DeleteCategory(ctx, id)
		case rowGroup:
			return "", a.store.DeleteTabGroup(ctx, id)
		}
		return "", nil
	})
}

// Gestures

func (a *App) over() {
	a.drag.Over(a.board.candidates, float64(a.pointer)+0.5)
	a.scrollTo(a.pointer)
}

func (a App) handleGrabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel), msg.Type == tea.KeyCtrlC:
		a = a.cancelGesture()
		a.setStatus("Move cancelled")

	case key.Matches(msg, a.keys.Drop):
		return a.drop()

	case key.Matches(msg, a.keys.Down):
		a.pointer = min(a.pointer+1, len(a.board.rows))
		a.over()

	case key.Matches(msg, a.keys.Up):
		a.pointer = max(a.pointer-1, 0)
		a.over()
	}
	return a, nil
}

func (a App) cancelGesture() App {
	a.drag.Cancel()
	a.grabbed, a.mouseDown, a.moved = false, false, false
	return a
}

// drop ends the gesture. The board shows the result right away and the
// store catches up in the background.
func (a App) drop() (tea.Model, tea.Cmd) {
	a.grabbed, a.mouseDown, a.moved = false, false, false
	dragged := a.drag.Dragged()

	commit, ok := a.drag.Drop()
	a.refresh()
	a.focus(dragged.ID)
	if !ok {
		a.setStatus("Nothing moved")
		return a, nil
	}

	ctx := a.ctx
	return a, func() tea.Msg {
		return opMsg{status: "Moved " + dragged.Kind.String(), err: commit.Apply(ctx), focus: dragged.ID}
	}
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.modal.kind != modalNone {
		return a, nil
	}
	line := msg.Y - boardTop + a.offset

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.offset = max(a.offset-1, 0)
		case tea.MouseButtonWheelDown:
			height := layout.CalculateBoardHeight(a.height, a.cfg.Board)
			a.offset = max(0, min(a.offset+1, len(a.board.rows)+1-height))
		case tea.MouseButtonLeft:
			if a.grabbed || line < 0 || line >= len(a.board.rows) || !a.board.rows[line].selectable() {
				return a, nil
			}
			a.cursor = line
			if err := a.drag.Start(a.board.rows[line].entity()); err != nil {
				a.setError(err)
				return a, nil
			}
			a.mouseDown, a.moved = true, false
			a.pointer = line
		}

	case tea.MouseActionMotion:
		if a.mouseDown {
			a.pointer = max(0, min(line, len(a.board.rows)))
			a.moved = true
			a.over()
		}

	case tea.MouseActionRelease:
		if !a.mouseDown {
			return a, nil
		}
		if !a.moved {
			// A click selects
			return a.cancelGesture(), nil
		}
		a.pointer = max(0, min(line, len(a.board.rows)))
		a.over()
		return a.drop()
	}
	return a, nil
}

// Modals

func (a *App) openModal(kind modalKind, title string, inputs ...textinput.Model) {
	a.modal = modalState{kind: kind, title: title, inputs: inputs}
	a.modal.focusInput(0)
}

func (a App) closeModal() App {
	a.modal = modalState{}
	return a
}

func (a App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal.kind {
	case modalConfirm:
		answer, done := false, false
		switch msg.String() {
		case "y", "Y", "enter":
			answer, done = true, true
		case "n", "N", "esc", "q":
			done = true
		}
		if done {
			a.modal.reply <- answer
			a = a.closeModal()
		}
		return a, nil

	case modalAlert, modalHelp:
		return a.closeModal(), nil

	case modalSearch:
		return a.handleSearchKey(msg)
	}

	switch msg.Type {
	case tea.KeyEsc:
		return a.closeModal(), nil
	case tea.KeyTab, tea.KeyShiftTab:
		if n := len(a.modal.inputs); n > 1 {
			a.modal.focusInput((a.modal.focus + 1) % n)
		}
		return a, nil
	case tea.KeyEnter:
		return a.submitModal()
	}

	var cmd tea.Cmd
	a.modal.inputs[a.modal.focus], cmd = a.modal.inputs[a.modal.focus].Update(msg)
	return a, cmd
}

func (a App) submitModal() (tea.Model, tea.Cmd) {
	m := a.modal
	first, second := m.value(0), m.value(1)
	if first == "" {
		a.setStatus("A name is required")
		return a, nil
	}
	if m.kind == modalAddBookmark && second == "" {
		a.setStatus("A URL is required")
		return a, nil
	}
	a = a.closeModal()

	switch m.kind {
	case modalAddBookmark:
		categoryID := m.target.id
		return a, a.run("Added "+first, func(ctx context.Context) (string, error) {
			return a.store.CreateBookmark(ctx, categoryID, first, second)
		})

	case modalAddCategory:
		var groupID *string
		if m.groupID != "" {
			groupID = model.StringPtr(m.groupID)
		}
		return a, a.run("Added "+first, func(ctx context.Context) (string, error) {
			return a.store.CreateCategory(ctx, first, groupID)
		})

	case modalRename:
		t := m.target
		return a, a.run("Saved "+first, func(ctx context.Context) (string, error) {
			switch t.kind {
			case rowBookmark:
				return t.id, a.store.UpdateBookmark(ctx, t.id, backend.BookmarkPatch{Title: &first, URL: &second})
			case rowCategory:
				return t.id, a.store.RenameCategory(ctx, t.id, first)
			case rowGroup:
				return t.id, a.store.UpdateTabGroup(ctx, t.id, backend.TabGroupPatch{Name: &first})
			}
			return "", errors.New("nothing to rename")
		})
	}
	return a, nil
}

// OpenURL opens a URL in the default browser.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
