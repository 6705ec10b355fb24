package bookmarkstore

import (
	"sort"

	"github.com/dalemusser/markloft/internal/domain/models"
)

// The ordering model: within one group, the non-deleted bookmarks carry
// positions that are exactly 0..N-1, ascending = display order. Every
// reorder is a full splice-and-renumber of that list rather than a
// fractional-rank update; groups are user-scale, so the O(N) rewrite
// stays cheap and the stored ranks stay plain integers.
//
// The functions here are pure list operations; the store persists their
// output as one atomic batch.

// sortForDisplay orders items for listing: positioned records first,
// ascending by position, then legacy records without a position, newest
// created first.
func sortForDisplay(items []models.Bookmark) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.HasPosition() && b.HasPosition():
			return *a.Position < *b.Position
		case a.HasPosition():
			return true
		case b.HasPosition():
			return false
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

// indexOf returns the index of id in items, or -1.
func indexOf(items []models.Bookmark, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// spliceTo removes the bookmark with id from its place in items and
// reinserts it at target. Targets past the end append; negative targets
// insert at the front. Returns false when id is not present.
func spliceTo(items []models.Bookmark, id string, target int) ([]models.Bookmark, bool) {
	idx := indexOf(items, id)
	if idx < 0 {
		return items, false
	}
	moved := items[idx]
	rest := make([]models.Bookmark, 0, len(items))
	rest = append(rest, items[:idx]...)
	rest = append(rest, items[idx+1:]...)
	return spliceIn(rest, moved, target), true
}

// spliceIn inserts bm into items at target, clamped to [0, len(items)].
func spliceIn(items []models.Bookmark, bm models.Bookmark, target int) []models.Bookmark {
	if target < 0 {
		target = 0
	}
	if target > len(items) {
		target = len(items)
	}
	out := make([]models.Bookmark, 0, len(items)+1)
	out = append(out, items[:target]...)
	out = append(out, bm)
	out = append(out, items[target:]...)
	return out
}

// renumber reassigns dense positions 0..N-1 in display order.
func renumber(items []models.Bookmark) {
	for i := range items {
		p := i
		items[i].Position = &p
	}
}
