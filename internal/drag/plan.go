package drag

import (
	"fmt"
	"slices"

	"github.com/nikbrunner/bmboard/internal/model"
	"github.com/nikbrunner/bmboard/internal/ordering"
	"github.com/nikbrunner/bmboard/internal/store"
)

type planKind int

const (
	planBookmark planKind = iota
	planCategory
	planTabGroup
	planGroup
	planAddToGroup
	planMerge
)

// plan is the mutation a drop commits.
type plan struct {
	kind     planKind
	id       string
	parentID string  // bookmark destination category
	groupID  *string // category destination group
	order    float64
	targetID string // group, add-to-group and merge target
}

func (p plan) String() string {
	switch p.kind {
	case planBookmark:
		return fmt.Sprintf("move bookmark %s to %s at %g", p.id, p.parentID, p.order)
	case planCategory:
		return fmt.Sprintf("move category %s to %g", p.id, p.order)
	case planTabGroup:
		return fmt.Sprintf("move tab group %s to %g", p.id, p.order)
	case planGroup:
		return fmt.Sprintf("group category %s with %s", p.id, p.targetID)
	case planAddToGroup:
		return fmt.Sprintf("add category %s to group %s", p.id, p.targetID)
	default:
		return fmt.Sprintf("merge tab group %s into %s", p.id, p.targetID)
	}
}

// planDrop works out what dropping e on t changes in view.
// It reports false when the drop would change nothing.
func planDrop(view model.View, e Entity, t Target) (plan, bool) {
	if t.Zone == ZoneNone {
		return plan{}, false
	}
	switch e.Kind {
	case KindBookmark:
		return planBookmarkDrop(view, e.ID, t)
	case KindCategory:
		return planCategoryDrop(view, e.ID, t)
	case KindTabGroup:
		return planTabGroupDrop(view, e.ID, t)
	}
	return plan{}, false
}

func planBookmarkDrop(view model.View, id string, t Target) (plan, bool) {
	bm, owner := view.Bookmark(id)
	dest := view.Category(t.ID)
	if bm == nil || dest == nil {
		return plan{}, false
	}

	index := max(0, min(t.Index, len(dest.Bookmarks)))
	if dest == owner {
		from := owner.BookmarkIndex(id)
		// The index counts the dragged row, which leaves its old slot
		if from < index {
			index--
		}
		if index == from {
			return plan{}, false
		}
	}

	var orders []float64
	for _, b := range dest.Bookmarks {
		if b.ID != id {
			orders = append(orders, b.Order)
		}
	}
	return plan{
		kind:     planBookmark,
		id:       id,
		parentID: dest.ID,
		order:    ordering.Midpoint(orders, index),
	}, true
}

// siblingMove computes the order for moving id next to targetID among
// siblings. An empty targetID appends.
func siblingMove(siblings []string, orders []float64, id, targetID string, zone Zone) (float64, bool) {
	from := slices.Index(siblings, id)

	var rest []string
	var restOrders []float64
	for i, s := range siblings {
		if s != id {
			rest = append(rest, s)
			restOrders = append(restOrders, orders[i])
		}
	}

	index := len(rest)
	if targetID != "" {
		at := slices.Index(rest, targetID)
		if at < 0 {
			return 0, false
		}
		index = at
		if zone == ZoneReorderAfter {
			index++
		}
	}
	if index == from {
		return 0, false
	}
	return ordering.Midpoint(restOrders, index), true
}

func layoutSiblings(view model.View) ([]string, []float64) {
	ids := make([]string, len(view.Layout))
	orders := make([]float64, len(view.Layout))
	for i, item := range view.Layout {
		ids[i] = item.ID()
		orders[i] = item.SortOrder()
	}
	return ids, orders
}

func groupSiblings(group *model.TabGroup) ([]string, []float64) {
	ids := make([]string, len(group.Categories))
	orders := make([]float64, len(group.Categories))
	for i, c := range group.Categories {
		ids[i] = c.ID
		orders[i] = c.Order
	}
	return ids, orders
}

func planCategoryDrop(view model.View, id string, t Target) (plan, bool) {
	cat := view.Category(id)
	if cat == nil {
		return plan{}, false
	}

	switch t.Zone {
	case ZoneReorderBefore, ZoneReorderAfter:
		if t.GroupID != nil {
			group := view.TabGroup(*t.GroupID)
			if group == nil {
				return plan{}, false
			}
			ids, orders := groupSiblings(group)
			order, ok := siblingMove(ids, orders, id, t.ID, t.Zone)
			return plan{kind: planCategory, id: id, order: order, groupID: model.CloneString(t.GroupID)}, ok
		}

		ids, orders := layoutSiblings(view)
		order, ok := siblingMove(ids, orders, id, t.ID, t.Zone)
		return plan{kind: planCategory, id: id, order: order}, ok

	case ZoneGroup:
		target := view.Category(t.ID)
		if target == nil || target.ID == id {
			return plan{}, false
		}
		if target.GroupID != nil {
			return planCategoryDrop(view, id, Target{Zone: ZoneAddToGroup, ID: *target.GroupID})
		}
		return plan{kind: planGroup, id: id, targetID: target.ID}, true

	case ZoneAddToGroup:
		if view.TabGroup(t.ID) == nil || model.SameID(cat.GroupID, &t.ID) {
			return plan{}, false
		}
		return plan{kind: planAddToGroup, id: id, targetID: t.ID}, true
	}
	return plan{}, false
}

func planTabGroupDrop(view model.View, id string, t Target) (plan, bool) {
	if view.TabGroup(id) == nil {
		return plan{}, false
	}

	switch t.Zone {
	case ZoneAddToGroup:
		if t.ID == id || view.TabGroup(t.ID) == nil {
			return plan{}, false
		}
		return plan{kind: planMerge, id: id, targetID: t.ID}, true

	case ZoneGroup, ZoneReorderBefore, ZoneReorderAfter:
		zone, targetID := t.Zone, t.ID
		if zone == ZoneGroup {
			// Groups do not nest, so dropping onto a category's middle places after it
			zone = ZoneReorderAfter
		}
		if t.GroupID != nil {
			targetID = *t.GroupID
		}
		ids, orders := layoutSiblings(view)
		order, ok := siblingMove(ids, orders, id, targetID, zone)
		return plan{kind: planTabGroup, id: id, order: order}, ok
	}
	return plan{}, false
}

// pendingPrefix marks the id of a tab group that exists only in an optimistic view.
const pendingPrefix = "pending-"

// apply returns a copy of snap with the plan applied, for previews and
// optimistic rendering. The committed change is made by the store.
func (p plan) apply(snap model.Snapshot) model.Snapshot {
	out := snap.Clone()
	category := func(id string) *model.CategoryRow {
		i := slices.IndexFunc(out.Categories, func(c model.CategoryRow) bool { return c.ID == id })
		if i < 0 {
			return nil
		}
		return &out.Categories[i]
	}
	groupEnd := func(groupID string) float64 {
		end := 0.0
		for _, c := range out.Categories {
			if c.GroupID != nil && *c.GroupID == groupID {
				end = max(end, c.Order)
			}
		}
		return end + 1
	}

	switch p.kind {
	case planBookmark:
		for i := range out.Bookmarks {
			if out.Bookmarks[i].ID == p.id {
				out.Bookmarks[i].CategoryID = p.parentID
				out.Bookmarks[i].Order = p.order
			}
		}

	case planCategory:
		if c := category(p.id); c != nil {
			c.Order = p.order
			c.GroupID = model.CloneString(p.groupID)
		}

	case planTabGroup:
		for i := range out.TabGroups {
			if out.TabGroups[i].ID == p.id {
				out.TabGroups[i].Order = p.order
			}
		}

	case planGroup:
		target, dragged := category(p.targetID), category(p.id)
		if target == nil || dragged == nil {
			break
		}
		pending := pendingPrefix + target.ID
		out.TabGroups = append(out.TabGroups, model.TabGroupRow{ID: pending, Name: store.DefaultGroupName, Order: target.Order})
		dragged.Order = ordering.Between(target.Order, target.Order+1)
		target.GroupID = model.StringPtr(pending)
		dragged.GroupID = model.StringPtr(pending)

	case planAddToGroup:
		if c := category(p.id); c != nil {
			c.Order = groupEnd(p.targetID)
			c.GroupID = model.StringPtr(p.targetID)
		}

	case planMerge:
		next := groupEnd(p.targetID)
		for i := range out.Categories {
			if g := out.Categories[i].GroupID; g != nil && *g == p.id {
				out.Categories[i].GroupID = model.StringPtr(p.targetID)
				out.Categories[i].Order = next
				next++
			}
		}
		out.TabGroups = slices.DeleteFunc(out.TabGroups, func(g model.TabGroupRow) bool { return g.ID == p.id })
	}
	return out
}
