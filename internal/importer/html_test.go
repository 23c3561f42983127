package importer_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/bmboard/internal/importer"
	"github.com/nikbrunner/bmboard/internal/model"
)

func parse(t *testing.T, doc string) model.Snapshot {
	t.Helper()
	snap, err := importer.ParseHTML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return snap
}

func categoryNamed(snap model.Snapshot, name string) *model.CategoryRow {
	for i := range snap.Categories {
		if snap.Categories[i].Name == name {
			return &snap.Categories[i]
		}
	}
	return nil
}

func bookmarksIn(snap model.Snapshot, categoryID string) []string {
	var titles []string
	for _, b := range snap.Bookmarks {
		if b.CategoryID == categoryID {
			titles = append(titles, b.Title)
		}
	}
	return titles
}

func TestParseHTML_LooseBookmark(t *testing.T) {
	snap := parse(t, `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`)

	if len(snap.Categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(snap.Categories))
	}
	cat := snap.Categories[0]
	if cat.Name != importer.LooseCategoryName {
		t.Errorf("expected category %q, got %q", importer.LooseCategoryName, cat.Name)
	}
	if cat.GroupID != nil {
		t.Errorf("expected standalone category, got group %q", *cat.GroupID)
	}

	if len(snap.Bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(snap.Bookmarks))
	}
	b := snap.Bookmarks[0]
	if b.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", b.Title)
	}
	if b.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", b.URL)
	}
	if b.CategoryID != cat.ID {
		t.Errorf("expected bookmark in %q, got %q", cat.ID, b.CategoryID)
	}
}

func TestParseHTML_FlatFoldersBecomeCategories(t *testing.T) {
	snap := parse(t, `<DL><p>
    <DT><H3>News</H3>
    <DL><p>
        <DT><A HREF="https://lwn.net">LWN</A>
        <DT><A HREF="https://news.ycombinator.com">HN</A>
    </DL><p>
    <DT><H3>Tools</H3>
    <DL><p>
        <DT><A HREF="https://jq.dev">jq</A>
    </DL><p>
</DL><p>`)

	if len(snap.TabGroups) != 0 {
		t.Errorf("expected no tab groups, got %d", len(snap.TabGroups))
	}
	news, tools := categoryNamed(snap, "News"), categoryNamed(snap, "Tools")
	if news == nil || tools == nil {
		t.Fatalf("expected News and Tools categories, got %+v", snap.Categories)
	}
	if news.Order >= tools.Order {
		t.Errorf("expected document order, got News=%v Tools=%v", news.Order, tools.Order)
	}

	got := bookmarksIn(snap, news.ID)
	if len(got) != 2 || got[0] != "LWN" || got[1] != "HN" {
		t.Errorf("expected [LWN HN] in News, got %v", got)
	}
}

func TestParseHTML_SubfoldersBecomeTabGroup(t *testing.T) {
	snap := parse(t, `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3>React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev">React Docs</A>
            <DT><H3>Routing</H3>
            <DL><p>
                <DT><A HREF="https://tanstack.com/router">TanStack Router</A>
            </DL><p>
        </DL><p>
        <DT><A HREF="https://github.com">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com">Google</A>
</DL><p>`)

	if len(snap.TabGroups) != 1 {
		t.Fatalf("expected 1 tab group, got %d", len(snap.TabGroups))
	}
	group := snap.TabGroups[0]
	if group.Name != "Development" {
		t.Errorf("expected group 'Development', got %q", group.Name)
	}

	tests := []struct {
		name      string
		bookmarks []string
	}{
		{"Development", []string{"GitHub"}},
		{"React", []string{"React Docs"}},
		{"React / Routing", []string{"TanStack Router"}},
	}
	for i, tt := range tests {
		cat := categoryNamed(snap, tt.name)
		if cat == nil {
			t.Errorf("expected category %q", tt.name)
			continue
		}
		if cat.GroupID == nil || *cat.GroupID != group.ID {
			t.Errorf("expected %q in group %q, got %v", tt.name, group.ID, cat.GroupID)
		}
		if cat.Order != float64(i+1) {
			t.Errorf("expected %q at order %d, got %v", tt.name, i+1, cat.Order)
		}
		got := bookmarksIn(snap, cat.ID)
		if strings.Join(got, ",") != strings.Join(tt.bookmarks, ",") {
			t.Errorf("expected %v in %q, got %v", tt.bookmarks, tt.name, got)
		}
	}

	loose := categoryNamed(snap, importer.LooseCategoryName)
	if loose == nil || loose.Order <= group.Order {
		t.Errorf("expected loose bookmarks after the group, got %+v", loose)
	}
}

func TestParseHTML_SkipsBookmarksWithoutURL(t *testing.T) {
	snap := parse(t, `<DL><p>
    <DT><A>No link</A>
    <DT><A HREF="https://example.com"></A>
</DL><p>`)

	if len(snap.Bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(snap.Bookmarks))
	}
	if snap.Bookmarks[0].Title != "https://example.com" {
		t.Errorf("expected URL as fallback title, got %q", snap.Bookmarks[0].Title)
	}
}

func TestParseHTML_ReassignsCleanly(t *testing.T) {
	snap := parse(t, `<DL><p>
    <DT><H3>Work</H3>
    <DL><p>
        <DT><H3>Docs</H3>
        <DL><p><DT><A HREF="https://go.dev">Go</A></DL><p>
    </DL><p>
</DL><p>`)

	n := 0
	got := snap.Reassign(func() string { n++; return "id-" + string(rune('a'+n)) })
	if len(got.Bookmarks) != 1 || len(got.Categories) != 1 || len(got.TabGroups) != 1 {
		t.Fatalf("expected references to survive reassignment, got %+v", got)
	}
	if got.Categories[0].GroupID == nil || *got.Categories[0].GroupID != got.TabGroups[0].ID {
		t.Error("expected category to point at the reassigned group")
	}
}

func TestParseHTML_Empty(t *testing.T) {
	snap := parse(t, ``)
	if !snap.IsEmpty() {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}
