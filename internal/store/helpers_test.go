package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/nikbrunner/bmboard/internal/backend"
	"github.com/nikbrunner/bmboard/internal/logging"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/store"
	"gotest.tools/v3/assert"
)

func sequentialIDs() func() string {
	n := 0
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// recordingDialog answers confirmations with answer and remembers every prompt.
type recordingDialog struct {
	mu       sync.Mutex
	answer   bool
	confirms []string
	alerts   []string
}

func (d *recordingDialog) Confirm(_ context.Context, msg string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirms = append(d.confirms, msg)
	return d.answer
}

func (d *recordingDialog) Alert(_ context.Context, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, msg)
}

func (d *recordingDialog) counts() (confirms, alerts int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.confirms), len(d.alerts)
}

// syncOverLocal is a LocalBackend that reports sync mode, so store code paths
// for sync can be driven synchronously.
type syncOverLocal struct {
	*backend.LocalBackend
	seedErr   error
	importErr error
}

func (b *syncOverLocal) Mode() backend.Mode { return backend.ModeSync }

func (b *syncOverLocal) SeedDefaults(ctx context.Context) error {
	if b.seedErr != nil {
		return b.seedErr
	}
	return b.LocalBackend.SeedDefaults(ctx)
}

func (b *syncOverLocal) Import(ctx context.Context, snap model.Snapshot) error {
	if b.importErr != nil {
		return b.importErr
	}
	return b.LocalBackend.Import(ctx, snap)
}

func newLocalStore(t *testing.T) *store.Store {
	t.Helper()
	b := backend.NewLocalBackend(backend.LocalParams{NewID: sequentialIDs(), Logger: logging.Discard()})
	s := store.New(store.Params{
		Backend: b,
		Dialog:  store.NopDialog{Answer: true},
		Logger:  logging.Discard(),
	})
	assert.NilError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

// shape is a comparable summary of a view.
type shape struct {
	Name      string
	Group     string
	Bookmarks []string
}

func shapeOf(v model.View) []shape {
	groups := map[string]string{}
	for _, g := range v.TabGroups {
		groups[g.ID] = g.Name
	}
	out := []shape{}
	for _, item := range v.Layout {
		var cats []*model.Category
		switch it := item.(type) {
		case model.CategoryItem:
			cats = []*model.Category{it.Category}
		case model.TabGroupItem:
			cats = it.Group.Categories
		}
		for _, c := range cats {
			sh := shape{Name: c.Name, Bookmarks: []string{}}
			if c.GroupID != nil {
				sh.Group = groups[*c.GroupID]
			}
			for _, b := range c.Bookmarks {
				sh.Bookmarks = append(sh.Bookmarks, b.Title)
			}
			out = append(out, sh)
		}
	}
	return out
}

func categoryByName(v model.View, name string) *model.Category {
	for _, c := range v.Categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

