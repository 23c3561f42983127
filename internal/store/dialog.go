package store

import "context"

// Dialog asks the user something outside the normal board flow:
// first-contact migration and destructive actions.
type Dialog interface {
	Confirm(ctx context.Context, message string) bool
	Alert(ctx context.Context, message string)
}

// NopDialog answers every confirmation with Answer and drops alerts.
type NopDialog struct {
	Answer bool
}

func (d NopDialog) Confirm(context.Context, string) bool { return d.Answer }

func (NopDialog) Alert(context.Context, string) {}
