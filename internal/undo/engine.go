// Package undo implements a command-based undo/redo history with atomic groups.
package undo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultLimit caps the undo stack; the oldest entry is evicted first.
const DefaultLimit = 50

// Engine holds linear undo/redo history.
//
// While an entry is being replayed, Push is a no-op: commands re-enter the
// same mutation helpers that record history during normal operation.
type Engine struct {
	mu        sync.Mutex
	undoStack []Command
	redoStack []Command
	limit     int

	// open group, flattened across nested RunInGroup calls
	group      *Group
	groupDepth int

	replayMu  sync.Mutex // one replay at a time
	replaying atomic.Bool

	logger *slog.Logger
}

// EngineParams holds parameters for creating a new Engine.
type EngineParams struct {
	Limit  int          // optional, DefaultLimit if zero
	Logger *slog.Logger // optional, slog.Default() if nil
}

// NewEngine creates an Engine with empty stacks.
func NewEngine(params EngineParams) *Engine {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{limit: limit, logger: logger}
}

// IsUndoing reports whether an undo or redo is currently executing.
func (e *Engine) IsUndoing() bool {
	return e.replaying.Load()
}

// Push records a command. Ignored during replay; appended to the open group
// if there is one; otherwise pushed onto the undo stack, clearing redo.
func (e *Engine) Push(cmd Command) {
	if cmd == nil || e.IsUndoing() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.group != nil {
		e.group.Entries = append(e.group.Entries, cmd)
		return
	}
	e.pushLocked(cmd)
}

func (e *Engine) pushLocked(cmd Command) {
	e.undoStack = append(e.undoStack, cmd)
	if over := len(e.undoStack) - e.limit; over > 0 {
		e.undoStack = append([]Command(nil), e.undoStack[over:]...)
	}
	e.redoStack = nil
}

// RunInGroup runs fn with a group open so every Push inside it lands in one
// history entry. Nested calls join the outermost group. The group is closed
// even if fn fails or panics; an empty group records nothing.
func (e *Engine) RunInGroup(fn func() error) error {
	e.mu.Lock()
	if e.groupDepth == 0 {
		e.group = &Group{}
	}
	e.groupDepth++
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.groupDepth--
		if e.groupDepth > 0 {
			return
		}
		g := e.group
		e.group = nil
		if len(g.Entries) > 0 {
			e.pushLocked(g)
		}
	}()

	return fn()
}

// Undo reverts the most recent entry and moves it to the redo stack.
// On failure the entry stays on the undo stack and the error is returned.
func (e *Engine) Undo(ctx context.Context) error {
	return e.replay(ctx, "undo", &e.undoStack, &e.redoStack, Command.Undo)
}

// Redo reapplies the most recently undone entry.
// On failure the entry stays on the redo stack and the error is returned.
func (e *Engine) Redo(ctx context.Context) error {
	return e.replay(ctx, "redo", &e.redoStack, &e.undoStack, Command.Redo)
}

func (e *Engine) replay(ctx context.Context, op string, from, to *[]Command, run func(Command, context.Context) error) error {
	e.replayMu.Lock()
	defer e.replayMu.Unlock()

	e.mu.Lock()
	n := len(*from)
	if n == 0 {
		e.mu.Unlock()
		return nil
	}
	cmd := (*from)[n-1]
	*from = (*from)[:n-1]
	e.mu.Unlock()

	e.replaying.Store(true)
	err := run(cmd, ctx)
	e.replaying.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		*from = append(*from, cmd)
		e.logger.Error("history replay failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	*to = append(*to, cmd)
	if over := len(e.undoStack) - e.limit; over > 0 {
		e.undoStack = append([]Command(nil), e.undoStack[over:]...)
	}
	return nil
}

// CanUndo reports whether there is anything to undo.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undoStack) > 0
}

// CanRedo reports whether there is anything to redo.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.redoStack) > 0
}

// Len returns the sizes of the undo and redo stacks.
func (e *Engine) Len() (undo, redo int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undoStack), len(e.redoStack)
}

// Clear drops all history.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.undoStack = nil
	e.redoStack = nil
}
