package undo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nikbrunner/bmboard/internal/undo"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// counter is a tiny observable state for commands to act on.
type counter struct {
	value int
	log   []string
}

func (c *counter) add(n int) undo.Command {
	c.value += n
	return undo.Funcs(
		func(context.Context) error { c.value -= n; c.log = append(c.log, "undo"); return nil },
		func(context.Context) error { c.value += n; c.log = append(c.log, "redo"); return nil },
	)
}

func newEngine() *undo.Engine {
	return undo.NewEngine(undo.EngineParams{})
}

func TestEngine_UndoRedoRestoresState(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	c := &counter{}

	e.Push(c.add(5))
	afterPush := c.value

	assert.NilError(t, e.Undo(ctx))
	assert.Equal(t, c.value, 0)

	assert.NilError(t, e.Redo(ctx))
	assert.Equal(t, c.value, afterPush)
}

func TestEngine_EmptyStacksAreNoOps(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	assert.NilError(t, e.Undo(ctx))
	assert.NilError(t, e.Redo(ctx))
	assert.Assert(t, !e.CanUndo())
	assert.Assert(t, !e.CanRedo())
}

func TestEngine_PushClearsRedo(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	c := &counter{}

	e.Push(c.add(1))
	assert.NilError(t, e.Undo(ctx))
	assert.Assert(t, e.CanRedo())

	e.Push(c.add(2))
	assert.Assert(t, !e.CanRedo(), "linear history: a new push drops the redo branch")
}

func TestEngine_LimitEvictsOldest(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	c := &counter{}

	for i := 1; i <= undo.DefaultLimit+1; i++ {
		e.Push(c.add(i))
	}

	undos, _ := e.Len()
	assert.Equal(t, undos, undo.DefaultLimit)

	for e.CanUndo() {
		assert.NilError(t, e.Undo(ctx))
	}
	// Everything but the first push (value 1) was reverted.
	assert.Equal(t, c.value, 1)
}

func TestEngine_PushDuringReplayIsIgnored(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	c := &counter{}

	var sawUndoing bool
	e.Push(undo.Funcs(
		func(context.Context) error {
			sawUndoing = e.IsUndoing()
			e.Push(c.add(100))
			return nil
		},
		func(context.Context) error { return nil },
	))

	assert.NilError(t, e.Undo(ctx))

	assert.Assert(t, sawUndoing)
	assert.Assert(t, !e.IsUndoing())
	undos, redos := e.Len()
	assert.Equal(t, undos, 0)
	assert.Equal(t, redos, 1)
}

func TestEngine_FailedUndoRestoresEntry(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	boom := errors.New("backend down")

	fail := true
	e.Push(undo.Funcs(
		func(context.Context) error {
			if fail {
				return boom
			}
			return nil
		},
		func(context.Context) error { return nil },
	))

	err := e.Undo(ctx)
	assert.Assert(t, errors.Is(err, boom))
	undos, redos := e.Len()
	assert.Equal(t, undos, 1, "entry must return to the undo stack")
	assert.Equal(t, redos, 0)

	fail = false
	assert.NilError(t, e.Undo(ctx))
	undos, redos = e.Len()
	assert.Equal(t, undos, 0)
	assert.Equal(t, redos, 1)
}

func TestEngine_FailedRedoRestoresEntry(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	boom := errors.New("conflict")

	e.Push(undo.Funcs(
		func(context.Context) error { return nil },
		func(context.Context) error { return boom },
	))
	assert.NilError(t, e.Undo(ctx))

	err := e.Redo(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Assert(t, e.CanRedo())
	assert.Assert(t, !e.CanUndo())
}

func TestEngine_RunInGroup(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	c := &counter{}

	err := e.RunInGroup(func() error {
		e.Push(c.add(1))
		return e.RunInGroup(func() error {
			e.Push(c.add(10))
			return nil
		})
	})
	assert.NilError(t, err)

	undos, _ := e.Len()
	assert.Equal(t, undos, 1, "nested groups flatten into one entry")

	assert.NilError(t, e.Undo(ctx))
	assert.Equal(t, c.value, 0)
	assert.Check(t, is.DeepEqual(c.log, []string{"undo", "undo"}))

	assert.NilError(t, e.Redo(ctx))
	assert.Equal(t, c.value, 11)
}

func TestEngine_RunInGroupClosesOnError(t *testing.T) {
	e := newEngine()
	c := &counter{}
	boom := errors.New("boom")

	err := e.RunInGroup(func() error {
		e.Push(c.add(1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The group was finalized: a later push is its own entry.
	e.Push(c.add(2))
	undos, _ := e.Len()
	assert.Equal(t, undos, 2)
}

func TestEngine_EmptyGroupRecordsNothing(t *testing.T) {
	e := newEngine()

	assert.NilError(t, e.RunInGroup(func() error { return nil }))
	assert.Assert(t, !e.CanUndo())
}

func TestGroup_UndoRunsInReverse(t *testing.T) {
	ctx := context.Background()
	var order []int
	step := func(n int) undo.Command {
		return undo.Funcs(
			func(context.Context) error { order = append(order, -n); return nil },
			func(context.Context) error { order = append(order, n); return nil },
		)
	}
	g := &undo.Group{Entries: []undo.Command{step(1), step(2), step(3)}}

	assert.NilError(t, g.Undo(ctx))
	assert.NilError(t, g.Redo(ctx))

	assert.Check(t, is.DeepEqual(order, []int{-3, -2, -1, 1, 2, 3}))
}
