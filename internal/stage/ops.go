package stage

import (
	"net/url"
	"strings"

	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/geometry"
)

// DefaultText is the placeholder content of a freshly added text item.
const DefaultText = "Votre texte"

// New-item placement offset from the canvas origin.
const newItemOffset = 60.0

// ImageProxyPath is the same-origin endpoint remote library URLs are routed
// through so exported canvases can read their pixels.
const ImageProxyPath = "/api/img"

// ProxyLibraryURL rewrites remote http(s) URLs through the image proxy.
// Same-origin paths and data URIs pass through untouched.
func ProxyLibraryURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return ImageProxyPath + "?url=" + url.QueryEscape(raw)
	}
	return raw
}

// AddText creates a default text item on the active side and selects it.
func (c *Controller) AddText() design.CanvasItem {
	c.mu.Lock()
	it := c.scene.AddItem(c.activeSide, design.CanvasItem{
		Kind:     design.KindText,
		X:        newItemOffset,
		Y:        newItemOffset,
		Text:     DefaultText,
		Fill:     "#000000",
		FontFamily: "Arial",
		FontSize: 28,
		Align:    design.AlignCenter,
	})
	c.selectedID = it.ID
	c.state = StateSelected
	c.mu.Unlock()
	c.notify(EventSceneChanged)
	return it
}

// AddImageFromUpload places an uploaded image by its embedded data URI.
func (c *Controller) AddImageFromUpload(dataURI string) design.CanvasItem {
	return c.addImage(dataURI, design.ProvenanceUpload)
}

// AddImageFromLibraryURL places a library image by reference, rewriting
// remote URLs through the image proxy to avoid cross-origin canvas taint.
func (c *Controller) AddImageFromLibraryURL(rawURL string) design.CanvasItem {
	return c.addImage(ProxyLibraryURL(rawURL), design.ProvenanceLibrary)
}

func (c *Controller) addImage(src string, prov design.Provenance) design.CanvasItem {
	c.mu.Lock()
	it := c.scene.AddItem(c.activeSide, design.CanvasItem{
		Kind:       design.KindImage,
		X:          newItemOffset,
		Y:          newItemOffset,
		Width:      design.DefaultImageSize,
		Height:     design.DefaultImageSize,
		Src:        src,
		Provenance: prov,
	})
	c.selectedID = it.ID
	c.state = StateSelected
	c.mu.Unlock()
	c.notify(EventSceneChanged)
	return it
}

// updateSelected patches the selected item when it passes the filter.
func (c *Controller) updateSelected(filter design.ItemKind, patch design.ItemPatch) {
	c.mu.Lock()
	it, ok := c.selectedItemLocked()
	if !ok || (filter != "" && it.Kind != filter) {
		c.mu.Unlock()
		return
	}
	c.scene.UpdateItem(c.activeSide, it.ID, patch)
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// SetText replaces the content of the selected text item.
func (c *Controller) SetText(s string) {
	c.updateSelected(design.KindText, design.ItemPatch{Text: &s})
}

// SetTextColor sets the fill color of the selected text item.
func (c *Controller) SetTextColor(hex string) {
	c.updateSelected(design.KindText, design.ItemPatch{Fill: &hex})
}

// SetFontFamily sets the font family of the selected text item.
func (c *Controller) SetFontFamily(family string) {
	c.updateSelected(design.KindText, design.ItemPatch{FontFamily: &family})
}

// SetFontSize sets the font size of the selected text item.
func (c *Controller) SetFontSize(px float64) {
	if px <= 0 {
		return
	}
	c.updateSelected(design.KindText, design.ItemPatch{FontSize: &px})
}

// ToggleBold flips the bold flag, preserving italic.
func (c *Controller) ToggleBold() {
	c.toggleStyle(func(it design.CanvasItem) design.ItemPatch {
		b := !it.Bold
		return design.ItemPatch{Bold: &b}
	})
}

// ToggleItalic flips the italic flag, preserving bold.
func (c *Controller) ToggleItalic() {
	c.toggleStyle(func(it design.CanvasItem) design.ItemPatch {
		i := !it.Italic
		return design.ItemPatch{Italic: &i}
	})
}

func (c *Controller) toggleStyle(fn func(design.CanvasItem) design.ItemPatch) {
	c.mu.Lock()
	it, ok := c.selectedItemLocked()
	if !ok || it.Kind != design.KindText {
		c.mu.Unlock()
		return
	}
	c.scene.UpdateItem(c.activeSide, it.ID, fn(it))
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// SetTextAlign sets the alignment of the selected text item.
func (c *Controller) SetTextAlign(a design.TextAlign) {
	c.updateSelected(design.KindText, design.ItemPatch{Align: &a})
}

// SetStroke sets the outline color of the selected text item.
func (c *Controller) SetStroke(hex string) {
	c.updateSelected(design.KindText, design.ItemPatch{Stroke: &hex})
}

// SetStrokeWidth sets the outline width of the selected text item.
func (c *Controller) SetStrokeWidth(px float64) {
	if px < 0 {
		px = 0
	}
	c.updateSelected(design.KindText, design.ItemPatch{StrokeWidth: &px})
}

// DuplicateSelected clones the selected item; the clone becomes selected.
func (c *Controller) DuplicateSelected() {
	c.mu.Lock()
	if c.selectedID == "" {
		c.mu.Unlock()
		return
	}
	clone, ok := c.scene.Duplicate(c.activeSide, c.selectedID)
	if ok {
		c.selectedID = clone.ID
		c.state = StateSelected
	}
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// BringForward moves the selected item one step toward the top of the paint order.
func (c *Controller) BringForward() {
	c.reorderSelected(design.ReorderForward)
}

// SendBackward moves the selected item one step toward the bottom.
func (c *Controller) SendBackward() {
	c.reorderSelected(design.ReorderBackward)
}

func (c *Controller) reorderSelected(dir design.ReorderDirection) {
	c.mu.Lock()
	if c.selectedID == "" {
		c.mu.Unlock()
		return
	}
	c.scene.Reorder(c.activeSide, c.selectedID, dir)
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// DeleteSelected removes the selected item and returns to Idle.
func (c *Controller) DeleteSelected() {
	c.mu.Lock()
	if c.selectedID == "" {
		c.mu.Unlock()
		return
	}
	c.scene.RemoveItem(c.activeSide, c.selectedID)
	c.selectedID = ""
	c.state = StateIdle
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// SetGarmentColor sets the tint overlay color.
func (c *Controller) SetGarmentColor(hex string) {
	c.mu.Lock()
	c.garmentColor = hex
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// ZoomIn increases the view scale one step.
func (c *Controller) ZoomIn() { c.zoomBy(ZoomStep) }

// ZoomOut decreases the view scale one step.
func (c *Controller) ZoomOut() { c.zoomBy(-ZoomStep) }

func (c *Controller) zoomBy(delta float64) {
	c.mu.Lock()
	s := c.view.Scale + delta
	if s < ZoomMin {
		s = ZoomMin
	}
	if s > ZoomMax {
		s = ZoomMax
	}
	c.view.Scale = s
	c.mu.Unlock()
	c.notify(EventViewChanged)
}

// ResetView restores scale 1 and zero pan.
func (c *Controller) ResetView() {
	c.mu.Lock()
	c.view = ViewTransform{Scale: 1}
	c.mu.Unlock()
	c.notify(EventViewChanged)
}

// TogglePanMode switches between item interaction and canvas panning.
// Pan mode suppresses selection clicks on the stage background.
func (c *Controller) TogglePanMode() {
	c.mu.Lock()
	c.panMode = !c.panMode
	if !c.panMode && c.state == StatePanning {
		c.state = StateIdle
	}
	c.mu.Unlock()
	c.notify(EventViewChanged)
}

// PanMode reports whether pan mode is active.
func (c *Controller) PanMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panMode
}

// itemBoundsLocked returns the rotated AABB of an item, measuring text items
// from content. Caller holds mu.
func (c *Controller) itemBoundsLocked(it design.CanvasItem) geometry.Rect {
	w, h := it.Width, it.Height
	if it.IsText() {
		size := it.FontSize
		if size <= 0 {
			size = 24
		}
		w, h = geometry.MeasureText(it.Text, size)
	} else {
		if w <= 0 {
			w = design.DefaultImageSize
		}
		if h <= 0 {
			h = design.DefaultImageSize
		}
	}
	return geometry.RotatedBounds(it.X, it.Y, w, h, it.Rotation)
}
