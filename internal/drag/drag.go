// Package drag turns pointer and keyboard gestures into reorder and
// regroup mutations.
//
// A gesture runs Idle -> Dragging -> Dropped or Cancelled. While dragging,
// Preview shows the board with the dragged item at its target, computed
// from the store's rows and never written back. Drop renders that preview
// as the store's optimistic view and returns a Commit that performs the
// real mutation.
package drag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/store"
)

var (
	ErrGestureInProgress = errors.New("a drag is already in progress")
	ErrUnknownEntity     = errors.New("unknown drag entity")
)

// State of the current gesture.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateDropped
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateDropped:
		return "dropped"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Entity identifies what is being dragged.
type Entity struct {
	Kind Kind
	ID   string
}

// Origin is where the dragged entity started. ParentID is the owning
// category of a bookmark, or the tab group of a grouped category.
type Origin struct {
	ParentID string
	Index    int
}

// Store is what the controller needs from the board's store.
type Store interface {
	Snapshot() model.Snapshot
	SetOptimisticView(v model.View)
	Refresh()

	ReorderBookmark(ctx context.Context, id, categoryID string, order float64) error
	ReorderCategory(ctx context.Context, id string, order float64, groupID *string) error
	ReorderTabGroup(ctx context.Context, id string, order float64) error
	GroupCategories(ctx context.Context, targetID, draggedID, name string) (string, error)
	AddToGroup(ctx context.Context, categoryID, groupID string) error
	MergeTabGroups(ctx context.Context, targetID, draggedID string) error
}

type Params struct {
	Store  Store
	Logger *slog.Logger
}

// Controller tracks one gesture at a time.
type Controller struct {
	store  Store
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	entity    Entity
	origin    Origin
	target    Target
	hasTarget bool
}

func New(p Params) *Controller {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Controller{store: p.Store, logger: p.Logger}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dragged returns the entity of the current or last gesture.
func (c *Controller) Dragged() Entity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entity
}

func (c *Controller) Origin() Origin {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin
}

// Start begins dragging e.
func (c *Controller) Start(e Entity) error {
	origin, ok := locate(c.view(), e)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrUnknownEntity, e.Kind, e.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDragging {
		return ErrGestureInProgress
	}
	c.state = StateDragging
	c.entity = e
	c.origin = origin
	c.target = Target{}
	c.hasTarget = false
	return nil
}

func locate(view model.View, e Entity) (Origin, bool) {
	switch e.Kind {
	case KindBookmark:
		if b, owner := view.Bookmark(e.ID); b != nil {
			return Origin{ParentID: owner.ID, Index: owner.BookmarkIndex(e.ID)}, true
		}
	case KindCategory:
		cat := view.Category(e.ID)
		if cat == nil {
			return Origin{}, false
		}
		if cat.GroupID != nil {
			if g := view.TabGroup(*cat.GroupID); g != nil {
				for i, member := range g.Categories {
					if member.ID == e.ID {
						return Origin{ParentID: g.ID, Index: i}, true
					}
				}
			}
		}
		return Origin{Index: view.LayoutIndex(e.ID)}, true
	case KindTabGroup:
		if view.TabGroup(e.ID) != nil {
			return Origin{Index: view.LayoutIndex(e.ID)}, true
		}
	}
	return Origin{}, false
}

// Over classifies the pointer position and makes it the current target.
func (c *Controller) Over(candidates []Candidate, y float64) Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDragging {
		return Target{}
	}
	c.target = Classify(c.entity, candidates, y)
	c.hasTarget = true
	return c.target
}

// SetTarget sets the target directly, for keyboard-driven moves.
func (c *Controller) SetTarget(t Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDragging {
		return
	}
	c.target = t
	c.hasTarget = true
}

// Indicator returns the current drop target, if the pointer is over one.
func (c *Controller) Indicator() (Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDragging || !c.hasTarget {
		return Target{}, false
	}
	return c.target, true
}

// Preview returns the board as it would look after dropping now.
// Canonical state is not touched.
func (c *Controller) Preview() model.View {
	c.mu.Lock()
	dragging, e, t, ok := c.state == StateDragging, c.entity, c.target, c.hasTarget
	c.mu.Unlock()

	snap := c.store.Snapshot()
	if dragging && ok {
		view := denormalize(snap)
		if p, changes := planDrop(view, e, t); changes {
			snap = p.apply(snap)
		}
	}
	return denormalize(snap)
}

// Cancel ends the gesture without changing anything.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDragging {
		return
	}
	c.state = StateCancelled
	c.hasTarget = false
}

// Drop ends the gesture at the current target. When the drop changes
// something, the store renders the result right away and the returned
// Commit writes it. Callers usually run Commit.Apply off the UI goroutine.
func (c *Controller) Drop() (Commit, bool) {
	c.mu.Lock()
	if c.state != StateDragging {
		c.mu.Unlock()
		return Commit{}, false
	}
	c.state = StateDropped
	e, t, ok := c.entity, c.target, c.hasTarget
	c.hasTarget = false
	c.mu.Unlock()

	if !ok {
		return Commit{}, false
	}

	snap := c.store.Snapshot()
	p, changes := planDrop(denormalize(snap), e, t)
	if !changes {
		return Commit{}, false
	}

	c.store.SetOptimisticView(denormalize(p.apply(snap)))
	return Commit{store: c.store, logger: c.logger, plan: p}, true
}

func (c *Controller) view() model.View {
	return denormalize(c.store.Snapshot())
}

func denormalize(snap model.Snapshot) model.View {
	return store.Denormalize(snap.Categories, snap.Bookmarks, snap.TabGroups)
}

// Commit is a dropped gesture waiting to be written.
type Commit struct {
	store  Store
	logger *slog.Logger
	plan   plan
}

func (c Commit) String() string {
	return c.plan.String()
}

// Apply performs the mutation. On failure the store re-renders its
// canonical state, so the board snaps back, and the error is returned.
func (c Commit) Apply(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	p := c.plan
	var err error
	switch p.kind {
	case planBookmark:
		err = c.store.ReorderBookmark(ctx, p.id, p.parentID, p.order)
	case planCategory:
		err = c.store.ReorderCategory(ctx, p.id, p.order, p.groupID)
	case planTabGroup:
		err = c.store.ReorderTabGroup(ctx, p.id, p.order)
	case planGroup:
		_, err = c.store.GroupCategories(ctx, p.targetID, p.id, "")
	case planAddToGroup:
		err = c.store.AddToGroup(ctx, p.id, p.targetID)
	case planMerge:
		err = c.store.MergeTabGroups(ctx, p.targetID, p.id)
	}
	if err != nil {
		c.logger.Error("drop failed", "change", p.String(), "error", err)
		c.store.Refresh()
		return fmt.Errorf("%s: %w", p, err)
	}
	return nil
}
