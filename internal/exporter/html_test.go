package exporter_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/bmboard/internal/exporter"
	"github.com/nikbrunner/bmboard/internal/importer"
	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/store"
)

func board() model.View {
	return store.Denormalize(
		[]model.CategoryRow{
			{ID: "c1", Name: "Code", Order: 1, GroupID: model.StringPtr("g1")},
			{ID: "c2", Name: "Docs", Order: 2, GroupID: model.StringPtr("g1")},
			{ID: "c3", Name: "News", Order: 2},
		},
		[]model.BookmarkRow{
			{ID: "b1", CategoryID: "c1", Title: "GitHub", URL: "https://github.com", Order: 1},
			{ID: "b2", CategoryID: "c2", Title: "Go", URL: "https://go.dev", Order: 1, IconPath: model.StringPtr("https://go.dev/favicon.ico")},
			{ID: "b3", CategoryID: "c3", Title: "LWN", URL: "https://lwn.net", Order: 1},
		},
		[]model.TabGroupRow{{ID: "g1", Name: "Development", Order: 1}},
	)
}

func TestExportHTML_EmptyBoard(t *testing.T) {
	html := exporter.ExportHTML(model.View{})

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
}

func TestExportHTML_LayoutOrder(t *testing.T) {
	html := exporter.ExportHTML(board())

	order := []string{"Development</H3>", "Code</H3>", "GitHub</A>", "Docs</H3>", "Go</A>", "News</H3>", "LWN</A>"}
	last := -1
	for _, needle := range order {
		idx := strings.Index(html, needle)
		if idx == -1 {
			t.Fatalf("%q not found in output", needle)
		}
		if idx < last {
			t.Errorf("expected %q after the previous entry", needle)
		}
		last = idx
	}

	if !strings.Contains(html, `ICON_URI="https://go.dev/favicon.ico"`) {
		t.Error("expected icon attribute")
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	view := store.Denormalize(
		[]model.CategoryRow{{ID: "c1", Name: "A & B", Order: 1}},
		[]model.BookmarkRow{{ID: "b1", CategoryID: "c1", Title: "<script>alert(1)</script>", URL: "https://example.com?foo=bar&baz", Order: 1}},
		nil,
	)

	html := exporter.ExportHTML(view)

	if strings.Contains(html, "<script>") {
		t.Error("script tag should be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}
	if !strings.Contains(html, "foo=bar&amp;baz") {
		t.Error("expected escaped ampersand in URL")
	}
	if !strings.Contains(html, "A &amp; B</H3>") {
		t.Error("expected escaped category name")
	}
}

func TestExportHTML_ImportsBackToSameShape(t *testing.T) {
	snap, err := importer.ParseHTML(strings.NewReader(exporter.ExportHTML(board())))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := store.Denormalize(snap.Categories, snap.Bookmarks, snap.TabGroups)
	if len(view.Layout) != 2 {
		t.Fatalf("expected 2 layout items, got %d", len(view.Layout))
	}
	group, ok := view.Layout[0].(model.TabGroupItem)
	if !ok || group.Group.Name != "Development" || len(group.Group.Categories) != 2 {
		t.Fatalf("expected Development group with 2 categories, got %+v", view.Layout[0])
	}
	if got := group.Group.Categories[1].Bookmarks[0]; got.Title != "Go" || got.IconPath == nil {
		t.Errorf("expected Go bookmark with icon, got %+v", got)
	}
	news, ok := view.Layout[1].(model.CategoryItem)
	if !ok || news.Category.Name != "News" {
		t.Errorf("expected News category last, got %+v", view.Layout[1])
	}
}
