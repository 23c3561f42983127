// Package importer reads Netscape bookmark HTML, the format every browser exports.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/nikbrunner/bmboard/internal/model"
	"golang.org/x/net/html"
)

// LooseCategoryName holds bookmarks that sit outside any folder.
const LooseCategoryName = "Imported"

// folder is one H3 heading with its direct bookmarks and sub-folders.
type folder struct {
	name      string
	bookmarks []model.BookmarkRow
	children  []*folder
}

func (f *folder) hasSubfolders() bool {
	return len(f.children) > 0
}

// ParseHTML parses Netscape bookmark HTML into board rows.
//
// Top-level folders become categories, or tab groups when they contain
// sub-folders. A group's own bookmarks land in a category named after the
// group. Folders nested deeper are flattened into their group with
// "Parent / Child" names. Ids are placeholders; the backend assigns real
// ones on import.
func ParseHTML(r io.Reader) (model.Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("parse bookmark html: %w", err)
	}
	return build(parseTree(doc)), nil
}

// parseTree walks the document into a folder tree rooted at an unnamed folder.
func parseTree(doc *html.Node) *folder {
	root := &folder{}
	stack := []*folder{root}
	var pending *folder // folder waiting for its DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name == "" {
					return
				}
				f := &folder{name: name}
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, f)
				pending = f
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				parent := stack[len(stack)-1]
				bm := model.BookmarkRow{Title: title, URL: href}
				if icon := getAttr(n, "icon_uri"); icon != "" {
					bm.IconPath = model.StringPtr(icon)
				}
				parent.bookmarks = append(parent.bookmarks, bm)
				return

			case "dl":
				pushed := false
				if pending != nil {
					stack = append(stack, pending)
					pending = nil
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)
	return root
}

// builder hands out placeholder ids and sequential orders.
type builder struct {
	snap   model.Snapshot
	nextID int
}

func (b *builder) id(kind string) string {
	b.nextID++
	return fmt.Sprintf("import-%s-%d", kind, b.nextID)
}

func (b *builder) category(name string, order float64, groupID *string, bookmarks []model.BookmarkRow) {
	id := b.id("category")
	b.snap.Categories = append(b.snap.Categories, model.CategoryRow{
		ID:      id,
		Name:    name,
		Order:   order,
		GroupID: model.CloneString(groupID),
	})
	for i, bm := range bookmarks {
		bm.ID = b.id("bookmark")
		bm.CategoryID = id
		bm.Order = float64(i + 1)
		b.snap.Bookmarks = append(b.snap.Bookmarks, bm)
	}
}

// flatten appends f's descendants as categories of one group, named by path.
func (b *builder) flatten(f *folder, prefix string, groupID string, order *float64) {
	for _, child := range f.children {
		name := prefix + " / " + child.name
		if prefix == "" {
			name = child.name
		}
		if len(child.bookmarks) > 0 || !child.hasSubfolders() {
			*order++
			b.category(name, *order, &groupID, child.bookmarks)
		}
		b.flatten(child, name, groupID, order)
	}
}

func build(root *folder) model.Snapshot {
	b := &builder{snap: model.NewSnapshot()}
	order := 0.0

	for _, f := range root.children {
		order++
		if !f.hasSubfolders() {
			b.category(f.name, order, nil, f.bookmarks)
			continue
		}

		groupID := b.id("group")
		b.snap.TabGroups = append(b.snap.TabGroups, model.TabGroupRow{ID: groupID, Name: f.name, Order: order})
		member := 0.0
		if len(f.bookmarks) > 0 {
			member++
			b.category(f.name, member, &groupID, f.bookmarks)
		}
		b.flatten(f, "", groupID, &member)
	}

	if len(root.bookmarks) > 0 {
		order++
		b.category(LooseCategoryName, order, nil, root.bookmarks)
	}
	return b.snap
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
