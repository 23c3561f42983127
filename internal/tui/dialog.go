package tui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmMsg struct {
	text  string
	reply chan<- bool
}

type alertMsg struct {
	text string
}

// Dialog shows the store's confirmations and alerts inside the running
// board. Calls block until the program is attached and the user answers.
type Dialog struct {
	logger *slog.Logger

	once  sync.Once
	ready chan struct{}
	send  func(tea.Msg)
}

func NewDialog(logger *slog.Logger) *Dialog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dialog{logger: logger, ready: make(chan struct{})}
}

// Attach routes dialogs to the program. Only the first call has an effect.
func (d *Dialog) Attach(send func(tea.Msg)) {
	d.once.Do(func() {
		d.send = send
		close(d.ready)
	})
}

func (d *Dialog) Confirm(ctx context.Context, text string) bool {
	select {
	case <-d.ready:
	case <-ctx.Done():
		return false
	}

	reply := make(chan bool, 1)
	d.send(confirmMsg{text: text, reply: reply})
	select {
	case ok := <-reply:
		d.logger.Info("dialog answered", "text", text, "ok", ok)
		return ok
	case <-ctx.Done():
		return false
	}
}

func (d *Dialog) Alert(ctx context.Context, text string) {
	select {
	case <-d.ready:
		d.send(alertMsg{text: text})
	case <-ctx.Done():
	}
}
