// Package ordering computes fractional sort keys for sibling lists.
//
// A new position is always the midpoint of its two neighbours, so moving one
// item is a single write and no other sibling is renumbered. Repeated inserts
// at the same gap halve it every time; there is no rebalancing pass.
package ordering

import (
	"cmp"
	"slices"
)

// Midpoint returns the order value for inserting at index into a list of
// sibling orders sorted ascending.
//
// prev is the order before index (0 at the head), next is the order at index,
// or prev+1 when appending. An empty list yields 0.5.
func Midpoint(orders []float64, index int) float64 {
	index = max(0, min(index, len(orders)))

	var prev float64
	if index > 0 {
		prev = orders[index-1]
	}

	next := prev + 1
	if index < len(orders) {
		next = orders[index]
	}

	return Between(prev, next)
}

// Between returns the value halfway between prev and next.
func Between(prev, next float64) float64 {
	return (prev + next) / 2
}

// MidpointOf is Midpoint over any sibling slice.
func MidpointOf[T any](siblings []T, index int, order func(T) float64) float64 {
	orders := make([]float64, len(siblings))
	for i, s := range siblings {
		orders[i] = order(s)
	}
	return Midpoint(orders, index)
}

// SortStable sorts items by numeric order, keeping input order for ties.
func SortStable[T any](items []T, order func(T) float64) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(order(a), order(b))
	})
}
