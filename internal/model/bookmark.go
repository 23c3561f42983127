package model

// Bookmark is a saved URL inside a Category.
type Bookmark struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	IconPath *string `json:"iconPath"` // nil = no icon resolved
	Order    float64 `json:"order"`
}

// BookmarkRow is the flat backend form of a Bookmark.
type BookmarkRow struct {
	ID         string  `json:"id"`
	CategoryID string  `json:"categoryId"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	IconPath   *string `json:"iconPath"`
	Order      float64 `json:"order"`
}

// Bookmark converts the row to its view form.
func (r BookmarkRow) Bookmark() Bookmark {
	return Bookmark{
		ID:       r.ID,
		Title:    r.Title,
		URL:      r.URL,
		IconPath: CloneString(r.IconPath),
		Order:    r.Order,
	}
}
