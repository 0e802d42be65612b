package design

import "encoding/json"

// Snapshot is the serialized form of a session's editable state, persisted by
// the cart collaborator so a buyer can reload a design later. View transform
// and selection are deliberately excluded: they are presentation state.
type Snapshot struct {
	ProductID    string                `json:"productId"`
	ColorID      string                `json:"colorId,omitempty"`
	GarmentColor string                `json:"garmentColor,omitempty"`
	ItemsBySide  map[Side][]CanvasItem `json:"itemsBySide"`
}

// SnapshotScene captures the scene's per-side lists into a snapshot.
func SnapshotScene(sc *Scene, productID, colorID, garmentColor string) Snapshot {
	items := make(map[Side][]CanvasItem, len(sc.sideOrder))
	for _, s := range sc.sideOrder {
		items[s] = sc.Items(s)
	}
	return Snapshot{
		ProductID:    productID,
		ColorID:      colorID,
		GarmentColor: garmentColor,
		ItemsBySide:  items,
	}
}

// RestoreScene builds a scene for the given sides and fills it from the
// snapshot. Items on sides the product no longer supports are dropped.
func RestoreScene(snap Snapshot, sides []Side) *Scene {
	sc := NewScene(sides)
	for side, items := range snap.ItemsBySide {
		if !sc.HasSide(side) {
			continue
		}
		for _, it := range items {
			sc.AddItem(side, it)
		}
	}
	return sc
}

// MarshalSnapshot serializes a snapshot for storage.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// UnmarshalSnapshot parses a stored snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	err := json.Unmarshal(data, &snap)
	return snap, err
}
