package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// writeConfig points storage and logs into a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf(`mode = "local"

[storage]
driver = "json"
path = %q

[log]
file = %q

[check]
concurrency = 2
exclude_domains = []
`, filepath.Join(dir, "cache.json"), filepath.Join(dir, "bmboard.log"))
	assert.NilError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	assert.NilError(t, err, out)
	return out
}

func TestAddAndList(t *testing.T) {
	cfg := writeConfig(t)

	mustRun(t, cfg, "add", "category", "Dev")
	mustRun(t, cfg, "add", "bookmark", "dev", "GitHub", "https://github.com")
	mustRun(t, cfg, "add", "category", "Frontend", "--group", "Work")
	mustRun(t, cfg, "add", "category", "Backend", "--group", "work")

	out := mustRun(t, cfg, "list")
	assert.Equal(t, out, `Dev
  GitHub  https://github.com
[Work]
  Frontend
  Backend
`)
}

func TestAddBookmark_UnknownCategory(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "add", "bookmark", "Nope", "GitHub", "https://github.com")
	assert.ErrorContains(t, err, `no category named "Nope"`)
}

func TestList_Empty(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "list")
	assert.Check(t, is.Contains(out, "The board is empty"))
}

func TestMode(t *testing.T) {
	cfg := writeConfig(t)

	assert.Equal(t, mustRun(t, cfg, "mode"), "local\n")

	out := mustRun(t, cfg, "mode", "sync")
	assert.Check(t, is.Contains(out, "Switched to sync mode"))
	assert.Equal(t, mustRun(t, cfg, "mode"), "sync\n")

	mustRun(t, cfg, "mode", "local")
	assert.Equal(t, mustRun(t, cfg, "mode"), "local\n")

	_, err := run(t, cfg, "mode", "cloud")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestExportEraseImport(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "add", "category", "Dev")
	mustRun(t, cfg, "add", "bookmark", "Dev", "GitHub", "https://github.com")
	mustRun(t, cfg, "add", "category", "React", "--group", "Frontend")
	mustRun(t, cfg, "add", "bookmark", "React", "Docs", "https://react.dev")
	before := mustRun(t, cfg, "list")

	file := filepath.Join(t.TempDir(), "bookmarks.html")
	out := mustRun(t, cfg, "export", file)
	assert.Check(t, is.Contains(out, "Exported 2 bookmarks, 2 categories"))

	out = mustRun(t, cfg, "erase", "--yes")
	assert.Equal(t, out, "Erased the board\n")
	assert.Check(t, is.Contains(mustRun(t, cfg, "list"), "The board is empty"))

	out = mustRun(t, cfg, "import", file)
	assert.Equal(t, out, "Imported 2 bookmarks, 2 categories, 1 tab groups\n")

	assert.Equal(t, mustRun(t, cfg, "list"), before)
}

func TestImport_MissingFile(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "import", filepath.Join(t.TempDir(), "missing.html"))
	assert.Assert(t, err != nil)
}

func TestSeed(t *testing.T) {
	cfg := writeConfig(t)

	assert.Equal(t, mustRun(t, cfg, "seed"), "Added sample bookmarks\n")
	out := mustRun(t, cfg, "list")
	assert.Check(t, !strings.Contains(out, "The board is empty"))
	assert.Check(t, is.Contains(out, "https://"))
}

func TestQuickSearch(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "add", "category", "Dev")
	mustRun(t, cfg, "add", "bookmark", "Dev", "GitHub", "https://github.com")
	mustRun(t, cfg, "add", "bookmark", "Dev", "Go", "https://go.dev")

	var opened []string
	orig := openURL
	openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	out := mustRun(t, cfg, "github")
	assert.Equal(t, out, "Opening: GitHub\n")
	assert.Check(t, is.DeepEqual(opened, []string{"https://github.com"}))

	out = mustRun(t, cfg, "nothing", "here")
	assert.Equal(t, out, "No bookmarks found for 'nothing here'\n")
	assert.Check(t, is.Len(opened, 1))
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := writeConfig(t)
	mustRun(t, cfg, "add", "category", "Dev")
	mustRun(t, cfg, "add", "bookmark", "Dev", "Alive", srv.URL+"/ok")
	mustRun(t, cfg, "add", "bookmark", "Dev", "Gone", srv.URL+"/gone")

	out := mustRun(t, cfg, "check", "--delete")
	assert.Check(t, is.Contains(out, "dead         410  Gone"))
	assert.Check(t, is.Contains(out, "1 healthy, 1 dead, 0 unreachable"))
	assert.Check(t, is.Contains(out, "Deleted 1 dead bookmarks"))

	list := mustRun(t, cfg, "list")
	assert.Check(t, is.Contains(list, "Alive"))
	assert.Check(t, !strings.Contains(list, "Gone"))
}
