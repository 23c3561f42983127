package model

// Snapshot holds the raw canonical rows as delivered by a backend.
type Snapshot struct {
	Categories []CategoryRow `json:"categories"`
	Bookmarks  []BookmarkRow `json:"bookmarks"`
	TabGroups  []TabGroupRow `json:"tabGroups"`
}

// NewSnapshot creates an empty Snapshot with initialized slices.
func NewSnapshot() Snapshot {
	return Snapshot{
		Categories: []CategoryRow{},
		Bookmarks:  []BookmarkRow{},
		TabGroups:  []TabGroupRow{},
	}
}

// IsEmpty reports whether the snapshot holds no categories and no bookmarks.
// Tab groups alone do not count as content.
func (s Snapshot) IsEmpty() bool {
	return len(s.Categories) == 0 && len(s.Bookmarks) == 0
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := NewSnapshot()
	for _, c := range s.Categories {
		c.GroupID = CloneString(c.GroupID)
		out.Categories = append(out.Categories, c)
	}
	for _, b := range s.Bookmarks {
		b.IconPath = CloneString(b.IconPath)
		out.Bookmarks = append(out.Bookmarks, b)
	}
	out.TabGroups = append(out.TabGroups, s.TabGroups...)
	return out
}

// Reassign returns a copy with every row given a fresh ID from newID.
// Category and group references are remapped; bookmarks pointing at
// unknown categories are dropped, unknown group references are cleared.
func (s Snapshot) Reassign(newID func() string) Snapshot {
	out := NewSnapshot()

	groupIDs := make(map[string]string, len(s.TabGroups))
	for _, g := range s.TabGroups {
		groupIDs[g.ID] = newID()
		g.ID = groupIDs[g.ID]
		out.TabGroups = append(out.TabGroups, g)
	}

	categoryIDs := make(map[string]string, len(s.Categories))
	for _, c := range s.Categories {
		categoryIDs[c.ID] = newID()
		c.ID = categoryIDs[c.ID]
		if c.GroupID != nil {
			if mapped, ok := groupIDs[*c.GroupID]; ok {
				c.GroupID = &mapped
			} else {
				c.GroupID = nil
			}
		}
		out.Categories = append(out.Categories, c)
	}

	for _, b := range s.Bookmarks {
		mapped, ok := categoryIDs[b.CategoryID]
		if !ok {
			continue
		}
		b.ID = newID()
		b.CategoryID = mapped
		b.IconPath = CloneString(b.IconPath)
		out.Bookmarks = append(out.Bookmarks, b)
	}

	return out
}
