package store_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/logging"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/storage"
	"github.com/nikbrunner/bmboard/internal/store"
	"github.com/nikbrunner/bmboard/internal/undo"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestStore_CreateUndoRedoExample(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	work, err := s.CreateCategory(ctx, "Work", nil)
	assert.NilError(t, err)
	_, err = s.CreateBookmark(ctx, work, "GitHub", "https://github.com")
	assert.NilError(t, err)

	want := []shape{{Name: "Work", Bookmarks: []string{"GitHub"}}}
	assert.DeepEqual(t, shapeOf(s.View()), want)

	assert.NilError(t, s.Undo(ctx))
	assert.NilError(t, s.Undo(ctx))
	assert.Check(t, is.Len(s.Categories(), 0))

	assert.NilError(t, s.Redo(ctx))
	assert.NilError(t, s.Redo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), want)

	// Recreation mints new ids
	assert.Check(t, s.Categories()[0].ID != work)
	assert.Equal(t, s.Categories()[0].Bookmarks[0].URL, "https://github.com")
}

func TestStore_DeleteCategoryUndoRestoresBookmarks(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	dev, _ := s.CreateCategory(ctx, "Dev", nil)
	_, _ = s.CreateBookmark(ctx, dev, "GitHub", "https://github.com")
	_, _ = s.CreateBookmark(ctx, dev, "Go", "https://go.dev")
	before := shapeOf(s.View())

	assert.NilError(t, s.DeleteCategory(ctx, dev))
	assert.Check(t, is.Len(s.Categories(), 0))

	assert.NilError(t, s.Undo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), before)

	assert.NilError(t, s.Redo(ctx))
	assert.Check(t, is.Len(s.Categories(), 0))
}

func TestStore_OlderCommandsFollowRecreatedIDs(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	dev, _ := s.CreateCategory(ctx, "Dev", nil)
	assert.NilError(t, s.RenameCategory(ctx, dev, "Code"))
	assert.NilError(t, s.DeleteCategory(ctx, dev))

	assert.NilError(t, s.Undo(ctx)) // recreate under a new id
	assert.NilError(t, s.Undo(ctx)) // rename must hit the recreated category
	assert.DeepEqual(t, shapeOf(s.View()), []shape{{Name: "Dev", Bookmarks: []string{}}})

	assert.NilError(t, s.Redo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{{Name: "Code", Bookmarks: []string{}}})
}

func TestStore_ReorderBookmarkUndo(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	dev, _ := s.CreateCategory(ctx, "Dev", nil)
	news, _ := s.CreateCategory(ctx, "News", nil)
	gh, _ := s.CreateBookmark(ctx, dev, "GitHub", "https://github.com")
	_, _ = s.CreateBookmark(ctx, news, "HN", "https://news.ycombinator.com")

	assert.NilError(t, s.ReorderBookmark(ctx, gh, news, 0.5))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{
		{Name: "Dev", Bookmarks: []string{}},
		{Name: "News", Bookmarks: []string{"GitHub", "HN"}},
	})

	assert.NilError(t, s.Undo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{
		{Name: "Dev", Bookmarks: []string{"GitHub"}},
		{Name: "News", Bookmarks: []string{"HN"}},
	})
}

func TestStore_ReorderToSamePositionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	dev, _ := s.CreateCategory(ctx, "Dev", nil)
	cat := s.Categories()[0]

	assert.NilError(t, s.ReorderCategory(ctx, dev, cat.Order, nil))
	assert.NilError(t, s.Undo(ctx))
	assert.Check(t, is.Len(s.Categories(), 0), "the only undo step is the create")
}

func TestStore_GroupCategories(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	dev, _ := s.CreateCategory(ctx, "Dev", nil)
	docs, _ := s.CreateCategory(ctx, "Docs", nil)
	_, _ = s.CreateCategory(ctx, "News", nil)

	groupID, err := s.GroupCategories(ctx, dev, docs, "")
	assert.NilError(t, err)

	group := s.View().TabGroup(groupID)
	assert.Assert(t, group != nil)
	assert.Equal(t, group.Name, store.DefaultGroupName)
	assert.Assert(t, is.Len(group.Categories, 2))
	assert.Equal(t, group.Categories[0].ID, dev)
	assert.Equal(t, group.Categories[1].ID, docs)

	layout := s.LayoutItems()
	assert.Assert(t, is.Len(layout, 2))
	_, isGroup := layout[0].(model.TabGroupItem)
	assert.Check(t, isGroup, "group takes the target's place")

	// One undo step reverts the whole compound change
	assert.NilError(t, s.Undo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{
		{Name: "Dev", Bookmarks: []string{}},
		{Name: "Docs", Bookmarks: []string{}},
		{Name: "News", Bookmarks: []string{}},
	})
	assert.Check(t, is.Len(s.TabGroups(), 0))
}

func TestStore_MergeTabGroupsUndo(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	a, _ := s.CreateCategory(ctx, "A", nil)
	b, _ := s.CreateCategory(ctx, "B", nil)
	c, _ := s.CreateCategory(ctx, "C", nil)
	d, _ := s.CreateCategory(ctx, "D", nil)
	first, err := s.GroupCategories(ctx, a, b, "First")
	assert.NilError(t, err)
	second, err := s.GroupCategories(ctx, c, d, "Second")
	assert.NilError(t, err)
	before := shapeOf(s.View())

	assert.NilError(t, s.MergeTabGroups(ctx, first, second))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{
		{Name: "A", Group: "First", Bookmarks: []string{}},
		{Name: "B", Group: "First", Bookmarks: []string{}},
		{Name: "C", Group: "First", Bookmarks: []string{}},
		{Name: "D", Group: "First", Bookmarks: []string{}},
	})
	assert.Check(t, is.Len(s.TabGroups(), 1))

	assert.NilError(t, s.Undo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), before)
}

func TestStore_DeleteTabGroupUndoRegroups(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	a, _ := s.CreateCategory(ctx, "A", nil)
	b, _ := s.CreateCategory(ctx, "B", nil)
	group, _ := s.GroupCategories(ctx, a, b, "Pair")
	before := shapeOf(s.View())

	assert.NilError(t, s.DeleteTabGroup(ctx, group))
	for _, c := range s.Categories() {
		assert.Check(t, c.GroupID == nil)
	}

	assert.NilError(t, s.Undo(ctx))
	assert.DeepEqual(t, shapeOf(s.View()), before)
}

func TestStore_AddToGroupAndUngroup(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	a, _ := s.CreateCategory(ctx, "A", nil)
	b, _ := s.CreateCategory(ctx, "B", nil)
	c, _ := s.CreateCategory(ctx, "C", nil)
	group, _ := s.GroupCategories(ctx, a, b, "Pair")

	assert.NilError(t, s.AddToGroup(ctx, c, group))
	assert.Check(t, is.Len(s.View().TabGroup(group).Categories, 3))

	assert.NilError(t, s.Ungroup(ctx, a))
	assert.DeepEqual(t, shapeOf(s.View()), []shape{
		{Name: "B", Group: "Pair", Bookmarks: []string{}},
		{Name: "C", Group: "Pair", Bookmarks: []string{}},
		{Name: "A", Bookmarks: []string{}},
	})
}

func TestStore_UnknownIDs(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	assert.ErrorIs(t, s.DeleteCategory(ctx, "nope"), backend.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBookmarkByID(ctx, "nope"), backend.ErrNotFound)
	assert.ErrorIs(t, s.ReorderTabGroup(ctx, "nope", 1), backend.ErrNotFound)
	_, err := s.CreateBookmark(ctx, "nope", "x", "https://x")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.Check(t, !s.CanUndo(), "failed mutations record nothing")
}

func TestStore_UndoLimit(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	for range undo.DefaultLimit + 1 {
		_, err := s.CreateCategory(ctx, "C", nil)
		assert.NilError(t, err)
	}
	for s.CanUndo() {
		assert.NilError(t, s.Undo(ctx))
	}
	assert.Check(t, is.Len(s.Categories(), 1), "the oldest create fell off the stack")
}

func TestStore_RenderCallbacks(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	var views []model.View
	s.OnRender(func(v model.View) { views = append(views, v) })

	_, err := s.CreateCategory(ctx, "Dev", nil)
	assert.NilError(t, err)
	assert.Assert(t, len(views) >= 1)
	assert.Check(t, is.Len(views[len(views)-1].Categories, 1))
}

func TestStore_OptimisticViewIsReplaced(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)
	_, _ = s.CreateCategory(ctx, "Dev", nil)

	s.SetOptimisticView(model.View{})
	assert.Check(t, is.Len(s.Categories(), 0))

	s.Refresh()
	assert.Check(t, is.Len(s.Categories(), 1))

	s.SetOptimisticView(model.View{})
	_, _ = s.CreateCategory(ctx, "News", nil)
	assert.Check(t, is.Len(s.Categories(), 2), "a rebuild overwrites the optimistic view")
}

func TestStore_EraseAll(t *testing.T) {
	ctx := context.Background()
	dialog := &recordingDialog{}
	b := backend.NewLocalBackend(backend.LocalParams{Logger: logging.Discard()})
	s := store.New(store.Params{Backend: b, Dialog: dialog, Logger: logging.Discard()})
	assert.NilError(t, s.Start(ctx))
	defer s.Close()

	_, _ = s.CreateCategory(ctx, "Dev", nil)

	erased, err := s.EraseAll(ctx)
	assert.NilError(t, err)
	assert.Check(t, !erased)
	assert.Check(t, is.Len(s.Categories(), 1), "declined erase keeps everything")

	dialog.answer = true
	erased, err = s.EraseAll(ctx)
	assert.NilError(t, err)
	assert.Check(t, erased)
	assert.Check(t, is.Len(s.Categories(), 0))
	assert.Check(t, !s.CanUndo(), "erase clears history")
}

func TestStore_IndependentInstances(t *testing.T) {
	ctx := context.Background()
	one, two := newLocalStore(t), newLocalStore(t)

	_, _ = one.CreateCategory(ctx, "Dev", nil)
	assert.Check(t, is.Len(one.Categories(), 1))
	assert.Check(t, is.Len(two.Categories(), 0))
	assert.Check(t, !two.CanUndo())
}

// failingBackend rejects every category write.
type failingBackend struct {
	*backend.LocalBackend
}

var errOffline = errors.New("offline")

func (failingBackend) CreateCategory(context.Context, backend.CategoryInput) (string, error) {
	return "", errOffline
}

func TestStore_BackendFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	b := failingBackend{backend.NewLocalBackend(backend.LocalParams{})}
	s := store.New(store.Params{Backend: b, Logger: logging.Discard()})
	assert.NilError(t, s.Start(ctx))

	_, err := s.CreateCategory(ctx, "Dev", nil)
	assert.ErrorIs(t, err, errOffline)
	assert.ErrorContains(t, err, "create category")
	assert.Check(t, !s.CanUndo())
}

func TestStore_LocalModeIsReadyAfterStart(t *testing.T) {
	s := newLocalStore(t)
	select {
	case <-s.Ready():
	default:
		t.Fatal("local mode must be ready once Start returns")
	}
	assert.Equal(t, s.Mode(), backend.ModeLocal)
}

// partialBackend only ever delivers categories.
type partialBackend struct {
	*backend.LocalBackend
}

func (b partialBackend) Mode() backend.Mode { return backend.ModeSync }

func (b partialBackend) Subscribe(ctx context.Context, l backend.Listener) (func(), error) {
	l.Categories([]model.CategoryRow{{ID: "c1", Name: "Dev"}})
	return func() {}, nil
}

func TestStore_WaitsForEveryStream(t *testing.T) {
	s := store.New(store.Params{
		Backend: partialBackend{backend.NewLocalBackend(backend.LocalParams{})},
		Logger:  logging.Discard(),
	})
	assert.NilError(t, s.Start(context.Background()))

	select {
	case <-s.Ready():
		t.Fatal("rebuilt before bookmarks and tab groups arrived")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Check(t, is.Len(s.Categories(), 0))
}

func TestStore_SyncPaintsCacheFirst(t *testing.T) {
	st := storage.NewMemoryStorage()
	cached := model.NewSnapshot()
	cached.Categories = append(cached.Categories, model.CategoryRow{ID: "c1", Name: "Cached", Order: 1})
	assert.NilError(t, storage.SaveSnapshot(st, storage.KeySyncCache, cached))

	s := store.New(store.Params{
		Backend: partialBackend{backend.NewLocalBackend(backend.LocalParams{})},
		Storage: st,
		Logger:  logging.Discard(),
	})
	assert.NilError(t, s.Start(context.Background()))

	assert.DeepEqual(t, shapeOf(s.View()), []shape{{Name: "Cached", Bookmarks: []string{}}})
}

func TestStore_SyncPersistsCache(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	b := &syncOverLocal{LocalBackend: backend.NewLocalBackend(backend.LocalParams{})}
	s := store.New(store.Params{
		Backend:         b,
		Storage:         st,
		Logger:          logging.Discard(),
		PersistDebounce: time.Hour,
	})
	assert.NilError(t, s.Start(ctx))

	_, err := s.CreateCategory(ctx, "Dev", nil)
	assert.NilError(t, err)

	_, err = st.Get(storage.KeySyncCache)
	assert.ErrorIs(t, err, storage.ErrNotFound, "write waits for the debounce window")

	assert.NilError(t, s.Close())
	cached, err := storage.LoadSnapshot(st, storage.KeySyncCache)
	assert.NilError(t, err)
	assert.Check(t, is.Len(cached.Categories, 1))
}

func TestStore_SyncRebuildIsDebounced(t *testing.T) {
	ctx := context.Background()
	b := &syncOverLocal{LocalBackend: backend.NewLocalBackend(backend.LocalParams{})}
	s := store.New(store.Params{
		Backend:         b,
		Logger:          logging.Discard(),
		RebuildDebounce: 20 * time.Millisecond,
	})
	defer s.Close()

	var renders atomic.Int32
	s.OnRender(func(model.View) { renders.Add(1) })
	assert.NilError(t, s.Start(ctx))

	// The three initial deliveries coalesce into one rebuild
	<-s.Ready()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, renders.Load(), int32(1))
	s.Wait()
}
