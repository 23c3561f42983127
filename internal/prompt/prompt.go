// Package prompt asks the store's questions on a plain terminal, for
// commands that run without the board.
package prompt

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
)

// Dialog implements store.Dialog with huh forms.
type Dialog struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
	// accessible renders line prompts instead of the interactive form.
	accessible bool
}

type Params struct {
	In     io.Reader // defaults to os.Stdin
	Out    io.Writer // defaults to os.Stderr
	Logger *slog.Logger
	// Accessible uses plain line prompts. Required when In is not a terminal.
	Accessible bool
}

func New(p Params) *Dialog {
	if p.In == nil {
		p.In = os.Stdin
	}
	if p.Out == nil {
		p.Out = os.Stderr
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Dialog{in: p.In, out: p.Out, logger: p.Logger, accessible: p.Accessible}
}

func (d *Dialog) form(field huh.Field) *huh.Form {
	return huh.NewForm(huh.NewGroup(field)).
		WithInput(d.in).
		WithOutput(d.out).
		WithAccessible(d.accessible)
}

// Confirm asks a yes/no question. Aborting or a cancelled ctx answers no.
func (d *Dialog) Confirm(ctx context.Context, text string) bool {
	if ctx.Err() != nil {
		return false
	}

	var ok bool
	field := huh.NewConfirm().
		Title(text).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := d.form(field).RunWithContext(ctx); err != nil {
		d.logger.Info("confirm aborted", "text", text, "error", err)
		return false
	}
	return ok
}

// Alert shows text until the user continues.
func (d *Dialog) Alert(ctx context.Context, text string) {
	if ctx.Err() != nil {
		return
	}

	field := huh.NewNote().Title("bmboard").Description(text)
	if err := d.form(field).RunWithContext(ctx); err != nil {
		d.logger.Warn("alert not shown", "text", text, "error", err)
	}
}
