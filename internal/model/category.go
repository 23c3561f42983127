package model

// Category is a named, ordered list of bookmarks.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Order     float64    `json:"order"`
	GroupID   *string    `json:"groupId"` // nil = standalone
	Bookmarks []Bookmark `json:"bookmarks"`
}

// CategoryRow is the flat backend form of a Category.
type CategoryRow struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Order   float64 `json:"order"`
	GroupID *string `json:"groupId"`
}

// BookmarkIndex returns the position of the bookmark with the given id, or -1.
func (c *Category) BookmarkIndex(id string) int {
	for i := range c.Bookmarks {
		if c.Bookmarks[i].ID == id {
			return i
		}
	}
	return -1
}
