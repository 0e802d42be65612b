package design

import (
	"github.com/maketee/maketee/backend-go/internal/typeid"
)

// ReorderDirection moves an item one step through the paint order.
type ReorderDirection string

const (
	// ReorderForward moves the item toward the end of the list (top of paint order).
	ReorderForward ReorderDirection = "forward"
	// ReorderBackward moves the item toward the start (bottom of paint order).
	ReorderBackward ReorderDirection = "backward"
)

// Scene holds the per-side ordered item lists for one customizer session.
// List order is paint order: later items draw on top. Every mutation replaces
// the affected side's slice so callers holding a previous snapshot never see
// in-place changes.
type Scene struct {
	itemsBySide map[Side][]CanvasItem
	sideOrder   []Side
}

// NewScene creates a scene with an empty list for each of the given sides.
func NewScene(sides []Side) *Scene {
	items := make(map[Side][]CanvasItem, len(sides))
	order := make([]Side, len(sides))
	for i, s := range sides {
		items[s] = nil
		order[i] = s
	}
	return &Scene{itemsBySide: items, sideOrder: order}
}

// Sides returns the sides this scene supports, in display order.
func (sc *Scene) Sides() []Side {
	out := make([]Side, len(sc.sideOrder))
	copy(out, sc.sideOrder)
	return out
}

// HasSide reports whether the scene supports the given side.
func (sc *Scene) HasSide(side Side) bool {
	_, ok := sc.itemsBySide[side]
	return ok
}

// Items returns a copy of the given side's item list in paint order.
func (sc *Scene) Items(side Side) []CanvasItem {
	src := sc.itemsBySide[side]
	out := make([]CanvasItem, len(src))
	copy(out, src)
	return out
}

// Item looks up an item by id on the given side.
func (sc *Scene) Item(side Side, id string) (CanvasItem, bool) {
	for _, it := range sc.itemsBySide[side] {
		if it.ID == id {
			return it, true
		}
	}
	return CanvasItem{}, false
}

// AddItem appends an item to the side's list, assigning a fresh id if absent.
// Returns the stored item. Unknown sides are silent no-ops.
func (sc *Scene) AddItem(side Side, it CanvasItem) CanvasItem {
	old, ok := sc.itemsBySide[side]
	if !ok {
		return it
	}

	if it.ID == "" {
		it.ID = typeid.NewItemID()
	}

	next := make([]CanvasItem, len(old), len(old)+1)
	copy(next, old)
	sc.itemsBySide[side] = append(next, it)
	return it
}

// UpdateItem applies a patch to the matching item. Missing ids are no-ops:
// the selection may have been cleared while the update was in flight.
func (sc *Scene) UpdateItem(side Side, id string, patch ItemPatch) {
	old, ok := sc.itemsBySide[side]
	if !ok {
		return
	}

	for i, it := range old {
		if it.ID != id {
			continue
		}
		next := make([]CanvasItem, len(old))
		copy(next, old)
		next[i] = patch.Apply(it)
		sc.itemsBySide[side] = next
		return
	}
}

// RemoveItem filters the item out of the side's list; absent ids are no-ops.
func (sc *Scene) RemoveItem(side Side, id string) {
	old, ok := sc.itemsBySide[side]
	if !ok {
		return
	}

	for i, it := range old {
		if it.ID != id {
			continue
		}
		next := make([]CanvasItem, 0, len(old)-1)
		next = append(next, old[:i]...)
		next = append(next, old[i+1:]...)
		sc.itemsBySide[side] = next
		return
	}
}

// Reorder moves the item one position forward (toward the top of the paint
// order) or backward. Items already at the boundary stay put.
func (sc *Scene) Reorder(side Side, id string, dir ReorderDirection) {
	old, ok := sc.itemsBySide[side]
	if !ok {
		return
	}

	for i, it := range old {
		if it.ID != id {
			continue
		}

		j := i
		switch dir {
		case ReorderForward:
			j = i + 1
		case ReorderBackward:
			j = i - 1
		}
		if j < 0 || j >= len(old) || j == i {
			return
		}

		next := make([]CanvasItem, len(old))
		copy(next, old)
		next[i], next[j] = next[j], next[i]
		sc.itemsBySide[side] = next
		return
	}
}

// Duplicate clones the item with a fresh id, offset by +20/+20 so the copy
// does not sit exactly on top of the source. Returns the clone and whether
// the source existed.
func (sc *Scene) Duplicate(side Side, id string) (CanvasItem, bool) {
	src, ok := sc.Item(side, id)
	if !ok {
		return CanvasItem{}, false
	}

	clone := src
	clone.ID = typeid.NewItemID()
	clone.X += DuplicateOffset
	clone.Y += DuplicateOffset
	return sc.AddItem(side, clone), true
}

// CustomizedSides returns the sides with at least one item, in display order.
func (sc *Scene) CustomizedSides() []Side {
	var out []Side
	for _, s := range sc.sideOrder {
		if len(sc.itemsBySide[s]) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// ItemCount returns the number of items on the given side.
func (sc *Scene) ItemCount(side Side) int {
	return len(sc.itemsBySide[side])
}
