package model

// TabGroup is a derived container for categories sharing a GroupID.
// Categories point into the same View, they are never copies.
type TabGroup struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Order      float64     `json:"order"`
	Categories []*Category `json:"categories"`
}

// TabGroupRow is the flat backend form of a TabGroup.
type TabGroupRow struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Order float64 `json:"order"`
}
