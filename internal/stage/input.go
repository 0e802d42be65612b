package stage

import (
	"strings"

	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/geometry"
)

// Matrix returns the stage-to-canvas presentation transform, pan applied
// after zoom, matching the transform the client renders with.
func (v ViewTransform) Matrix() geometry.Matrix2D {
	s := v.Scale
	if s == 0 {
		s = 1
	}
	return geometry.Translate(v.PanX, v.PanY).Multiply(geometry.Scale(s, s))
}

// canvasPointLocked maps a stage-space pointer position into canvas space
// through the inverse view transform. With the default view this is the
// identity. Caller holds mu.
func (c *Controller) canvasPointLocked(x, y float64) (float64, float64) {
	m := c.view.Matrix()
	if m.IsIdentity() {
		return x, y
	}
	return m.Invert().TransformPoint(x, y)
}

// PointerDown handles a press at stage coordinates. In pan mode the press
// always starts panning; otherwise the topmost item under the point becomes
// the selection, and a press on empty background returns to Idle.
func (c *Controller) PointerDown(x, y float64) {
	c.mu.Lock()

	if c.panMode {
		c.state = StatePanning
		c.mu.Unlock()
		c.notify(EventViewChanged)
		return
	}

	x, y = c.canvasPointLocked(x, y)

	// Front-to-back: later items paint on top, so scan in reverse.
	items := c.scene.Items(c.activeSide)
	hit := ""
	for i := len(items) - 1; i >= 0; i-- {
		if c.itemBoundsLocked(items[i]).Contains(x, y) {
			hit = items[i].ID
			break
		}
	}

	if hit == "" {
		c.selectedID = ""
		c.state = StateIdle
	} else {
		c.selectedID = hit
		c.state = StateSelected
	}
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

// DragMove moves the selected item under the stage-space pointer, clamping
// its bounding box to the canvas. While panning it offsets the view instead.
func (c *Controller) DragMove(x, y float64) {
	c.mu.Lock()

	if c.state == StatePanning {
		c.view.PanX = x
		c.view.PanY = y
		c.mu.Unlock()
		c.notify(EventViewChanged)
		return
	}

	it, ok := c.selectedItemLocked()
	if !ok {
		c.mu.Unlock()
		return
	}
	c.state = StateDragging

	x, y = c.canvasPointLocked(x, y)
	b := c.itemBoundsLocked(it)
	cx, cy := geometry.ClampToCanvas(x, y, b.Width, b.Height, c.canvasW, c.canvasH)
	c.scene.UpdateItem(c.activeSide, it.ID, patchPosition(cx, cy))
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// TransformEnd commits the result of a resize/rotate gesture: position is
// clamped against the new box before the dimensions are stored, and the
// controller re-enters Selected.
func (c *Controller) TransformEnd(x, y, width, height, rotation float64) {
	c.mu.Lock()
	it, ok := c.selectedItemLocked()
	if !ok {
		c.mu.Unlock()
		return
	}
	c.state = StateTransforming

	b := geometry.RotatedBounds(x, y, width, height, rotation)
	cx, cy := geometry.ClampToCanvas(x, y, b.Width, b.Height, c.canvasW, c.canvasH)
	patch := patchPosition(cx, cy)
	patch.Width = &width
	patch.Height = &height
	patch.Rotation = &rotation
	c.scene.UpdateItem(c.activeSide, it.ID, patch)

	c.state = StateSelected
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// PointerUp ends a drag or pan gesture.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	switch c.state {
	case StateDragging, StateTransforming:
		c.state = StateSelected
	case StatePanning:
		if !c.panMode {
			c.state = StateIdle
		}
	}
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

// KeyPress handles keyboard shortcuts. textFieldFocused suppresses the
// destructive shortcuts while the buyer types into a surrounding form field
// (email, promo code) so Backspace edits text instead of deleting artwork.
func (c *Controller) KeyPress(key string, platformModifier, textFieldFocused bool) {
	switch strings.ToLower(key) {
	case "escape":
		c.clearSelection()
	case "delete", "backspace":
		if textFieldFocused {
			return
		}
		c.DeleteSelected()
	case "d":
		if platformModifier && !textFieldFocused {
			c.DuplicateSelected()
		}
	}
}

func (c *Controller) clearSelection() {
	c.mu.Lock()
	c.selectedID = ""
	c.state = StateIdle
	c.mu.Unlock()
	c.notify(EventSelectionChanged)
}

func patchPosition(x, y float64) design.ItemPatch {
	return design.ItemPatch{X: &x, Y: &y}
}
