// Package store owns the board's canonical state.
//
// A Store subscribes to a backend, nests the raw rows into a model.View once
// every resource has arrived, and notifies render callbacks. All mutations
// go through its helpers, which record an inverse command for undo.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/debounce"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/storage"
	"github.com/nikbrunner/bmboard/internal/undo"
)

// Params configures a Store. Backend is required.
type Params struct {
	Backend backend.StorageBackend
	Storage storage.Storage // durable cache; defaults to memory
	History *undo.Engine    // defaults to a fresh engine
	Dialog  Dialog          // defaults to NopDialog{}
	Logger  *slog.Logger

	// RebuildDebounce coalesces bursts of deliveries in sync mode.
	// Local mode always rebuilds inline.
	RebuildDebounce time.Duration
	// PersistDebounce coalesces writes of the sync cache.
	PersistDebounce time.Duration
}

type Store struct {
	backend backend.StorageBackend
	storage storage.Storage
	history *undo.Engine
	dialog  Dialog
	logger  *slog.Logger
	mode    backend.Mode

	rebuilds *debounce.Debouncer
	persists *debounce.Debouncer

	// rebuildMu keeps renders in the order their views were built.
	rebuildMu sync.Mutex

	mu sync.Mutex
	// Raw rows stay nil until the backend delivered them once.
	categories  []model.CategoryRow
	bookmarks   []model.BookmarkRow
	tabGroups   []model.TabGroupRow
	view        model.View
	optimistic  *model.View
	renderers   []func(model.View)
	aliases     map[string]string
	migrated    bool
	ctx         context.Context
	unsubscribe func()

	ready     chan struct{}
	readyOnce sync.Once
	tasks     sync.WaitGroup
}

// New creates a Store. Call Start to begin receiving state.
func New(p Params) *Store {
	if p.Backend == nil {
		panic("store: nil backend")
	}
	if p.Storage == nil {
		p.Storage = storage.NewMemoryStorage()
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.History == nil {
		p.History = undo.NewEngine(undo.EngineParams{Logger: p.Logger})
	}
	if p.Dialog == nil {
		p.Dialog = NopDialog{}
	}

	mode := p.Backend.Mode()
	rebuildDelay := p.RebuildDebounce
	if mode == backend.ModeLocal {
		rebuildDelay = 0
	}

	return &Store{
		backend:  p.Backend,
		storage:  p.Storage,
		history:  p.History,
		dialog:   p.Dialog,
		logger:   p.Logger.With("mode", string(mode)),
		mode:     mode,
		rebuilds: debounce.New(rebuildDelay),
		persists: debounce.New(p.PersistDebounce),
		aliases:  map[string]string{},
		ctx:      context.Background(),
		ready:    make(chan struct{}),
	}
}

// Start subscribes to the backend. In sync mode the cached snapshot of the
// previous session is rendered first, while the backend catches up.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if s.mode == backend.ModeSync {
		s.paintCached()
	}

	cancel, err := s.backend.Subscribe(ctx, backend.Listener{
		Categories: func(rows []model.CategoryRow) {
			s.receive(func() { s.categories = append([]model.CategoryRow{}, rows...) })
		},
		Bookmarks: func(rows []model.BookmarkRow) {
			s.receive(func() { s.bookmarks = append([]model.BookmarkRow{}, rows...) })
		},
		TabGroups: func(rows []model.TabGroupRow) {
			s.receive(func() { s.tabGroups = append([]model.TabGroupRow{}, rows...) })
		},
		Error: func(r backend.Resource, err error) {
			s.logger.Error("subscription failed", "resource", string(r), "error", err)
		},
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	s.mu.Lock()
	s.unsubscribe = cancel
	s.mu.Unlock()
	return nil
}

// Ready is closed after the first full rebuild.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until background work such as first-contact migration is done.
func (s *Store) Wait() {
	s.tasks.Wait()
}

// Close unsubscribes and writes any pending cache snapshot.
func (s *Store) Close() error {
	s.mu.Lock()
	cancel := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.rebuilds.Stop()
	s.persists.Flush()
	return nil
}

func (s *Store) Mode() backend.Mode {
	return s.mode
}

// OnRender registers fn to receive every new view.
// fn runs on whichever goroutine produced the view and must not block.
func (s *Store) OnRender(fn func(model.View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderers = append(s.renderers, fn)
}

// View returns the rendered view: the optimistic one while a drop is
// pending, the canonical one otherwise.
func (s *Store) View() model.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.optimistic != nil {
		return *s.optimistic
	}
	return s.view
}

func (s *Store) Categories() []*model.Category {
	return s.View().Categories
}

func (s *Store) LayoutItems() []model.LayoutItem {
	return s.View().Layout
}

func (s *Store) TabGroups() []*model.TabGroup {
	return s.View().TabGroups
}

// Snapshot returns a copy of the canonical raw rows.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		Categories: s.categories,
		Bookmarks:  s.bookmarks,
		TabGroups:  s.tabGroups,
	}.Clone()
}

// SetOptimisticView renders v until the next canonical rebuild replaces it.
func (s *Store) SetOptimisticView(v model.View) {
	s.mu.Lock()
	s.optimistic = &v
	s.mu.Unlock()
	s.render(v)
}

// Refresh drops any optimistic view and renders canonical state again.
func (s *Store) Refresh() {
	s.mu.Lock()
	s.optimistic = nil
	v := s.view
	s.mu.Unlock()
	s.render(v)
}

func (s *Store) receive(set func()) {
	s.mu.Lock()
	set()
	complete := s.categories != nil && s.bookmarks != nil && s.tabGroups != nil
	s.mu.Unlock()

	if complete {
		s.rebuilds.Trigger(s.rebuild)
	}
}

func (s *Store) rebuild() {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	s.mu.Lock()
	snap := s.snapshotLocked()
	view := Denormalize(snap.Categories, snap.Bookmarks, snap.TabGroups)
	s.view = view
	s.optimistic = nil
	firstContact := s.mode == backend.ModeSync && !s.migrated
	if firstContact {
		s.migrated = true
	}
	ctx := s.ctx
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.render(view)

	if s.mode == backend.ModeSync {
		s.persists.Trigger(func() { s.persist(snap) })
	}
	if firstContact {
		s.tasks.Add(1)
		go func() {
			defer s.tasks.Done()
			s.firstContact(ctx, snap)
		}()
	}
}

func (s *Store) render(v model.View) {
	s.mu.Lock()
	renderers := append([]func(model.View){}, s.renderers...)
	s.mu.Unlock()

	for _, fn := range renderers {
		fn(v)
	}
}

// paintCached renders the last synced snapshot, if any.
func (s *Store) paintCached() {
	snap, err := storage.LoadSnapshot(s.storage, storage.KeySyncCache)
	if err != nil {
		s.logger.Warn("sync cache unreadable", "error", err)
	}
	if snap.IsEmpty() {
		return
	}

	view := Denormalize(snap.Categories, snap.Bookmarks, snap.TabGroups)
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
	s.render(view)
}

func (s *Store) persist(snap model.Snapshot) {
	if err := storage.SaveSnapshot(s.storage, storage.KeySyncCache, snap); err != nil {
		s.logger.Warn("write sync cache failed", "error", err)
	}
}

// Undo reverts the most recent change.
func (s *Store) Undo(ctx context.Context) error {
	return s.history.Undo(ctx)
}

// Redo reapplies the most recently undone change.
func (s *Store) Redo(ctx context.Context) error {
	return s.history.Redo(ctx)
}

func (s *Store) PushUndo(cmd undo.Command) {
	s.history.Push(cmd)
}

// RunInUndoGroup records every change made by fn as one undo step.
func (s *Store) RunInUndoGroup(fn func() error) error {
	return s.history.RunInGroup(fn)
}

func (s *Store) IsUndoing() bool { return s.history.IsUndoing() }
func (s *Store) CanUndo() bool   { return s.history.CanUndo() }
func (s *Store) CanRedo() bool   { return s.history.CanRedo() }
