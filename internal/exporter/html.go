// Package exporter writes the board as Netscape bookmark HTML.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmboard/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the view in layout order. Tab groups become folders
// holding one sub-folder per category, so an export imports back into the
// same shape.
func ExportHTML(view model.View) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, item := range view.Layout {
		switch item := item.(type) {
		case model.CategoryItem:
			writeCategory(&b, item.Category, 1)
		case model.TabGroupItem:
			writeFolder(&b, item.Group.Name, 1, func() {
				for _, cat := range item.Group.Categories {
					writeCategory(&b, cat, 2)
				}
			})
		}
	}

	b.WriteString("</DL><p>\n")
	return b.String()
}

func writeFolder(b *strings.Builder, name string, indent int, body func()) {
	prefix := strings.Repeat("    ", indent)
	fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(name))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)
	body()
	fmt.Fprintf(b, "%s</DL><p>\n", prefix)
}

func writeCategory(b *strings.Builder, cat *model.Category, indent int) {
	writeFolder(b, cat.Name, indent, func() {
		prefix := strings.Repeat("    ", indent+1)
		for _, bm := range cat.Bookmarks {
			icon := ""
			if bm.IconPath != nil {
				icon = fmt.Sprintf(" ICON_URI=\"%s\"", html.EscapeString(*bm.IconPath))
			}
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\"%s>%s</A>\n",
				prefix,
				html.EscapeString(bm.URL),
				icon,
				html.EscapeString(bm.Title),
			)
		}
	})
}
