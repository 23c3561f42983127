package undo

import "context"

// Command is one reversible step of history.
type Command interface {
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
}

// Funcs adapts a pair of closures into a Command.
func Funcs(undo, redo func(ctx context.Context) error) Command {
	return funcCommand{undo: undo, redo: redo}
}

type funcCommand struct {
	undo func(ctx context.Context) error
	redo func(ctx context.Context) error
}

func (c funcCommand) Undo(ctx context.Context) error { return c.undo(ctx) }
func (c funcCommand) Redo(ctx context.Context) error { return c.redo(ctx) }

// Group is an atomic multi-step entry. Redo runs entries in order, Undo in
// reverse. Execution stops at the first failing entry.
type Group struct {
	Entries []Command
}

// Undo reverts every entry, last first.
func (g *Group) Undo(ctx context.Context) error {
	for i := len(g.Entries) - 1; i >= 0; i-- {
		if err := g.Entries[i].Undo(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Redo reapplies every entry, first first.
func (g *Group) Redo(ctx context.Context) error {
	for _, c := range g.Entries {
		if err := c.Redo(ctx); err != nil {
			return err
		}
	}
	return nil
}
