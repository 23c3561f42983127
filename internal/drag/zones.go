package drag

import (
	"cmp"
	"slices"
)

// Kind is the type of a dragged entity or a drop candidate.
type Kind int

const (
	KindBookmark Kind = iota
	KindCategory
	KindTabGroup
)

func (k Kind) String() string {
	switch k {
	case KindBookmark:
		return "bookmark"
	case KindCategory:
		return "category"
	case KindTabGroup:
		return "tab group"
	default:
		return "unknown"
	}
}

// Zone says what a drop at the current pointer position would do.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneReorderBefore
	ZoneReorderAfter
	ZoneGroup      // create a tab group from two standalone categories
	ZoneAddToGroup // join an existing tab group
)

func (z Zone) String() string {
	switch z {
	case ZoneReorderBefore:
		return "before"
	case ZoneReorderAfter:
		return "after"
	case ZoneGroup:
		return "group"
	case ZoneAddToGroup:
		return "add-to-group"
	default:
		return "none"
	}
}

// Rect is the vertical extent of a rendered element.
type Rect struct {
	Top    float64
	Height float64
}

func (r Rect) Contains(y float64) bool {
	return y >= r.Top && y < r.Top+r.Height
}

// fraction is how far down the rect y lies, in [0, 1).
func (r Rect) fraction(y float64) float64 {
	if r.Height <= 0 {
		return 0
	}
	return (y - r.Top) / r.Height
}

// Candidate is a rendered category or tab group the pointer may be over.
type Candidate struct {
	Kind    Kind
	ID      string
	GroupID *string // set for categories rendered inside a tab group
	Rect    Rect
	Rows    []Rect // bookmark rows of a category, top to bottom
}

// Target is the classified drop position.
// An empty ID with ZoneReorderAfter appends at the end of the layout.
type Target struct {
	Zone    Zone
	ID      string
	GroupID *string // the group of a grouped category target
	Index   int     // insertion index into the category, bookmark drags only
}

// Zone boundaries as fractions of the candidate's height.
const (
	categoryBefore = 0.3
	categoryAfter  = 0.7
	groupBefore    = 0.2
	groupAfter     = 0.8
)

// Classify picks the drop target for a dragged entity with the pointer at y.
// Candidates containing y are tried innermost first.
func Classify(dragged Entity, candidates []Candidate, y float64) Target {
	var hits []Candidate
	for _, c := range candidates {
		if !c.Rect.Contains(y) {
			continue
		}
		switch {
		case dragged.Kind == KindBookmark && c.Kind != KindCategory:
			continue
		case dragged.Kind == KindTabGroup && c.GroupID != nil:
			// A tab group is never placed inside another group
			continue
		}
		hits = append(hits, c)
	}
	slices.SortStableFunc(hits, func(a, b Candidate) int { return cmp.Compare(a.Rect.Height, b.Rect.Height) })

	for _, c := range hits {
		if c.ID == dragged.ID {
			return Target{Zone: ZoneNone, ID: c.ID}
		}

		f := c.Rect.fraction(y)
		switch {
		case dragged.Kind == KindBookmark:
			return Target{Zone: ZoneReorderBefore, ID: c.ID, Index: rowIndex(c.Rows, y)}

		case c.Kind == KindTabGroup:
			switch {
			case f < groupBefore:
				return Target{Zone: ZoneReorderBefore, ID: c.ID}
			case f < groupAfter:
				return Target{Zone: ZoneAddToGroup, ID: c.ID}
			}
			// Bottom band falls through to the next candidate

		case c.GroupID != nil:
			zone := ZoneReorderAfter
			if f < 0.5 {
				zone = ZoneReorderBefore
			}
			return Target{Zone: zone, ID: c.ID, GroupID: c.GroupID}

		default:
			switch {
			case f < categoryBefore:
				return Target{Zone: ZoneReorderBefore, ID: c.ID}
			case f < categoryAfter:
				return Target{Zone: ZoneGroup, ID: c.ID}
			default:
				return Target{Zone: ZoneReorderAfter, ID: c.ID}
			}
		}
	}

	if dragged.Kind == KindBookmark {
		return Target{Zone: ZoneNone}
	}
	return Target{Zone: ZoneReorderAfter}
}

// rowIndex is the index of the first row whose midline lies below y.
func rowIndex(rows []Rect, y float64) int {
	for i, r := range rows {
		if y < r.Top+r.Height/2 {
			return i
		}
	}
	return len(rows)
}
