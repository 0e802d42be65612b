package stage

import (
	"math"
	"testing"

	"github.com/maketee/maketee/backend-go/internal/catalog"
	"github.com/maketee/maketee/backend-go/internal/design"
)

func testProduct() catalog.Product {
	return catalog.Product{
		ID:             "classic-tee",
		Name:           "Classic Tee",
		AvailableSides: []design.Side{design.SideFront, design.SideBack},
		DefaultImage:   "/assets/mockups/tee.png",
		Colors: []catalog.Color{
			{
				ID: "white",
				Images: map[design.Side]string{
					design.SideFront: "/assets/mockups/tee-front-white.png",
					design.SideBack:  "/assets/mockups/tee-back-white.png",
				},
			},
		},
	}
}

func newTestController() *Controller {
	cat, _ := catalog.New([]catalog.Product{testProduct()})
	return NewController("sess_test", testProduct(), "white", cat, 500, 500)
}

func TestNewControllerDefaults(t *testing.T) {
	c := newTestController()

	if c.ActiveSide() != design.SideFront {
		t.Errorf("active side = %q, want front", c.ActiveSide())
	}
	if c.State() != StateIdle {
		t.Errorf("state = %q, want idle", c.State())
	}
	if v := c.View(); v.Scale != 1 || v.PanX != 0 || v.PanY != 0 {
		t.Errorf("view = %+v, want identity", v)
	}
	if c.MockupURL() != "/assets/mockups/tee-front-white.png" {
		t.Errorf("mockup = %q", c.MockupURL())
	}
}

func TestAddTextDefaults(t *testing.T) {
	c := newTestController()
	it := c.AddText()

	if it.Text != DefaultText {
		t.Errorf("text = %q, want %q", it.Text, DefaultText)
	}
	if it.Fill != "#000000" || it.FontFamily != "Arial" || it.FontSize != 28 || it.Align != design.AlignCenter {
		t.Errorf("unexpected defaults: %+v", it)
	}
	if it.Bold || it.Italic {
		t.Error("new text should start with no style flags")
	}
	if c.SelectedItemID() != it.ID {
		t.Error("new text item is not selected")
	}
	if c.State() != StateSelected {
		t.Errorf("state = %q, want selected", c.State())
	}
}

func TestAddImageDefaults(t *testing.T) {
	c := newTestController()
	it := c.AddImageFromUpload("data:image/png;base64,AA")

	if it.Width != design.DefaultImageSize || it.Height != design.DefaultImageSize {
		t.Errorf("size = %vx%v, want 180x180", it.Width, it.Height)
	}
	if it.Provenance != design.ProvenanceUpload {
		t.Errorf("provenance = %q, want upload", it.Provenance)
	}
	if c.SelectedItemID() != it.ID {
		t.Error("new image is not selected")
	}
}

func TestLibraryURLProxying(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https rewritten", "https://cdn.example.com/star.png", "/api/img?url=https%3A%2F%2Fcdn.example.com%2Fstar.png"},
		{"http rewritten", "http://cdn.example.com/a.png", "/api/img?url=http%3A%2F%2Fcdn.example.com%2Fa.png"},
		{"same-origin untouched", "/library/star.png", "/library/star.png"},
		{"data uri untouched", "data:image/png;base64,AA", "data:image/png;base64,AA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProxyLibraryURL(tt.in); got != tt.want {
				t.Errorf("ProxyLibraryURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddImageFromLibraryURL(t *testing.T) {
	c := newTestController()
	it := c.AddImageFromLibraryURL("https://cdn.example.com/star.png")

	if it.Src != "/api/img?url=https%3A%2F%2Fcdn.example.com%2Fstar.png" {
		t.Errorf("src = %q, remote URL not proxied", it.Src)
	}
	if it.Provenance != design.ProvenanceLibrary {
		t.Errorf("provenance = %q, want library", it.Provenance)
	}
}

func TestViewMatrix(t *testing.T) {
	c := newTestController()

	if !c.View().Matrix().IsIdentity() {
		t.Error("default view matrix is not the identity")
	}

	c.ZoomIn()
	m := c.View().Matrix()
	want := []float64{1.1, 0, 0, 1.1, 0, 0}
	for i, v := range m.ToSlice() {
		if v != want[i] {
			t.Fatalf("matrix = %v, want %v", m.ToSlice(), want)
		}
	}

	// The inverse maps stage space back to canvas space.
	x, y := m.Invert().TransformPoint(110, 110)
	if math.Abs(x-100) > 1e-9 || math.Abs(y-100) > 1e-9 {
		t.Errorf("inverse point = (%v, %v), want (100, 100)", x, y)
	}
}

// Pointer coordinates arrive in stage space; with a zoomed view they must be
// mapped through the inverse view transform before hit testing and dragging.
func TestPointerZoomedView(t *testing.T) {
	c := newTestController()
	it := c.AddImageFromUpload("data:image/png;base64,AA")
	c.KeyPress("Escape", false, false)
	c.ZoomIn() // scale 1.1

	// Canvas point (110, 110) sits inside the item at (60, 60) 180x180; in
	// stage space that press lands at (121, 121).
	c.PointerDown(121, 121)
	if c.SelectedItemID() != it.ID {
		t.Fatal("zoomed press over the item did not select it")
	}

	c.DragMove(220, 110)
	c.PointerUp()
	moved, _ := c.scene.Item(design.SideFront, it.ID)
	if math.Abs(moved.X-200) > 1e-6 || math.Abs(moved.Y-100) > 1e-6 {
		t.Errorf("item at (%v, %v), want (200, 100)", moved.X, moved.Y)
	}

	// A press just inside the item's stage-space footprint but outside its
	// canvas bounds clears the selection.
	c.PointerDown(61, 61)
	if c.SelectedItemID() != "" {
		t.Error("press outside the item in canvas space kept the selection")
	}
}

func TestToggleStylesIndependent(t *testing.T) {
	c := newTestController()
	c.AddText()

	c.ToggleBold()
	sel := selectedItem(t, c)
	if !sel.Bold || sel.Italic {
		t.Fatalf("after bold: bold=%v italic=%v", sel.Bold, sel.Italic)
	}

	c.ToggleItalic()
	sel = selectedItem(t, c)
	if !sel.Bold || !sel.Italic {
		t.Fatalf("after italic: bold=%v italic=%v", sel.Bold, sel.Italic)
	}

	c.ToggleBold()
	sel = selectedItem(t, c)
	if sel.Bold || !sel.Italic {
		t.Fatalf("bold off clobbered italic: bold=%v italic=%v", sel.Bold, sel.Italic)
	}
}

func TestTextOpsIgnoreImageSelection(t *testing.T) {
	c := newTestController()
	it := c.AddImageFromUpload("data:image/png;base64,AA")

	c.SetTextColor("#ff0000")
	c.ToggleBold()
	c.SetFontSize(64)

	got, _ := findItem(c, it.ID)
	if got.Fill != "" || got.Bold || got.FontSize != 0 {
		t.Errorf("text ops mutated an image item: %+v", got)
	}
}

func TestOpsWithoutSelectionAreNoOps(t *testing.T) {
	c := newTestController()
	c.SetTextColor("#ff0000")
	c.DeleteSelected()
	c.DuplicateSelected()
	c.BringForward()

	if n := len(c.Items()); n != 0 {
		t.Errorf("no-op calls created %d items", n)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %q, want idle", c.State())
	}
}

func TestSwitchSideClearsSelection(t *testing.T) {
	c := newTestController()
	c.AddText()

	c.SwitchSide(design.SideBack)

	if c.ActiveSide() != design.SideBack {
		t.Errorf("active side = %q", c.ActiveSide())
	}
	if c.SelectedItemID() != "" {
		t.Error("selection survived the side switch")
	}
	if c.State() != StateIdle {
		t.Errorf("state = %q, want idle", c.State())
	}
	if c.MockupURL() != "/assets/mockups/tee-back-white.png" {
		t.Errorf("mockup = %q, not re-resolved", c.MockupURL())
	}

	// The front item is still there, just not visible on this side.
	if n := len(c.ItemsOn(design.SideFront)); n != 1 {
		t.Errorf("front items = %d, want 1", n)
	}
}

func TestSwitchSideUnsupported(t *testing.T) {
	c := newTestController()
	c.AddText()
	c.SwitchSide(design.SideLeftSleeve)

	if c.ActiveSide() != design.SideFront {
		t.Errorf("unsupported side switch moved to %q", c.ActiveSide())
	}
	if c.SelectedItemID() == "" {
		t.Error("failed switch cleared the selection")
	}
}

func TestPointerSelection(t *testing.T) {
	c := newTestController()
	it := c.AddImageFromUpload("data:image/png;base64,AA") // 180x180 at (60, 60)

	// Background press deselects.
	c.PointerDown(450, 450)
	if c.SelectedItemID() != "" || c.State() != StateIdle {
		t.Fatalf("background press: selected=%q state=%q", c.SelectedItemID(), c.State())
	}

	// Press inside the item selects it.
	c.PointerDown(100, 100)
	if c.SelectedItemID() != it.ID {
		t.Fatalf("press on item selected %q", c.SelectedItemID())
	}
	if c.State() != StateSelected {
		t.Errorf("state = %q, want selected", c.State())
	}
}

func TestPointerSelectsTopmost(t *testing.T) {
	c := newTestController()
	c.AddImageFromUpload("data:image/png;base64,AA")
	top := c.AddImageFromUpload("data:image/png;base64,BB")

	// Both items overlap at (100, 100); the later one paints on top.
	c.PointerDown(100, 100)
	if c.SelectedItemID() != top.ID {
		t.Errorf("selected %q, want topmost %q", c.SelectedItemID(), top.ID)
	}
}

func TestDragClampsToCanvas(t *testing.T) {
	c := newTestController()
	it := c.AddImageFromUpload("data:image/png;base64,AA") // 180x180

	c.PointerDown(100, 100)
	c.DragMove(900, -50)

	if c.State() != StateDragging {
		t.Errorf("state = %q, want dragging", c.State())
	}
	got, _ := findItem(c, it.ID)
	if got.X != 320 || got.Y != 0 {
		t.Errorf("dragged to (%v, %v), want clamped (320, 0)", got.X, got.Y)
	}

	c.PointerUp()
	if c.State() != StateSelected {
		t.Errorf("state after release = %q, want selected", c.State())
	}
}

func TestTransformEndCommitsAndClamps(t *testing.T) {
	c := newTestController()
	it := c.AddImageFromUpload("data:image/png;base64,AA")
	c.PointerDown(100, 100)

	c.TransformEnd(480, 100, 200, 100, 30)

	got, _ := findItem(c, it.ID)
	if got.Width != 200 || got.Height != 100 || got.Rotation != 30 {
		t.Errorf("dimensions not committed: %+v", got)
	}
	// The rotated AABB of a 200x100 box at 30deg is wider than 200, so x must
	// land left of 300.
	if got.X > 500-200 {
		t.Errorf("x = %v, rotated bounds not clamped", got.X)
	}
	if c.State() != StateSelected {
		t.Errorf("state = %q, want selected", c.State())
	}
}

func TestZoomClamping(t *testing.T) {
	c := newTestController()

	for i := 0; i < 30; i++ {
		c.ZoomIn()
	}
	if s := c.View().Scale; s != ZoomMax {
		t.Errorf("scale = %v, want clamped to %v", s, ZoomMax)
	}

	for i := 0; i < 30; i++ {
		c.ZoomOut()
	}
	if s := c.View().Scale; s != ZoomMin {
		t.Errorf("scale = %v, want clamped to %v", s, ZoomMin)
	}

	c.ResetView()
	if v := c.View(); v.Scale != 1 || v.PanX != 0 || v.PanY != 0 {
		t.Errorf("reset view = %+v", v)
	}
}

func TestPanMode(t *testing.T) {
	c := newTestController()
	c.AddImageFromUpload("data:image/png;base64,AA")
	c.TogglePanMode()

	// In pan mode a press on an item starts panning instead of selecting.
	c.PointerDown(100, 100)
	if c.State() != StatePanning {
		t.Fatalf("state = %q, want panning", c.State())
	}

	c.DragMove(40, -25)
	if v := c.View(); v.PanX != 40 || v.PanY != -25 {
		t.Errorf("pan = (%v, %v), want (40, -25)", v.PanX, v.PanY)
	}

	// Items were not moved by the pan drag.
	if it := c.Items()[0]; it.X != 60 || it.Y != 60 {
		t.Errorf("item moved during pan: (%v, %v)", it.X, it.Y)
	}

	c.TogglePanMode()
	if c.State() != StateIdle {
		t.Errorf("state = %q, want idle after leaving pan mode", c.State())
	}
}

func TestKeyboardShortcuts(t *testing.T) {
	c := newTestController()
	c.AddText()

	// Escape clears the selection but keeps the item.
	c.KeyPress("Escape", false, false)
	if c.SelectedItemID() != "" || len(c.Items()) != 1 {
		t.Fatalf("escape: selected=%q items=%d", c.SelectedItemID(), len(c.Items()))
	}

	// Reselect, then delete.
	c.PointerDown(100, 70)
	if c.SelectedItemID() == "" {
		t.Fatal("reselect failed")
	}
	c.KeyPress("Delete", false, false)
	if len(c.Items()) != 0 {
		t.Error("delete left the item in place")
	}
}

func TestDeleteSuppressedWhileTyping(t *testing.T) {
	c := newTestController()
	c.AddText()

	c.KeyPress("Backspace", false, true)
	c.KeyPress("Delete", false, true)
	if len(c.Items()) != 1 {
		t.Error("delete fired while a form text field had focus")
	}

	c.KeyPress("d", true, true)
	if len(c.Items()) != 1 {
		t.Error("duplicate shortcut fired while typing")
	}
}

func TestDuplicateShortcut(t *testing.T) {
	c := newTestController()
	first := c.AddText()

	c.KeyPress("d", true, false)
	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if c.SelectedItemID() == first.ID {
		t.Error("selection stayed on the source instead of the clone")
	}

	// Without the platform modifier "d" is just a letter.
	c.KeyPress("d", false, false)
	if len(c.Items()) != 2 {
		t.Error("plain d duplicated")
	}
}

func TestSetGarmentColor(t *testing.T) {
	c := newTestController()
	c.SetGarmentColor("#8b0000")
	if c.GarmentColor() != "#8b0000" {
		t.Errorf("garment color = %q", c.GarmentColor())
	}

	snap := c.Snapshot()
	if snap.GarmentColor != "#8b0000" {
		t.Errorf("snapshot garment color = %q", snap.GarmentColor)
	}
}

func TestEventsOnMutation(t *testing.T) {
	c := newTestController()

	var events []Event
	c.Subscribe(func(ev Event) { events = append(events, ev) })

	c.AddText()
	c.ZoomIn()
	c.SwitchSide(design.SideBack)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Type != EventSceneChanged {
		t.Errorf("event 0 = %q", events[0].Type)
	}
	if events[0].SelectedItem == nil || events[0].SelectedItem.Text != DefaultText {
		t.Error("scene event missing the selected item payload")
	}
	if events[1].Type != EventViewChanged || events[1].View.Scale != 1.1 {
		t.Errorf("event 1 = %q scale %v", events[1].Type, events[1].View.Scale)
	}
	if events[2].Type != EventSideChanged || events[2].ActiveSide != design.SideBack {
		t.Errorf("event 2 = %q side %q", events[2].Type, events[2].ActiveSide)
	}
}

func TestRestoreFromSnapshot(t *testing.T) {
	c := newTestController()
	c.AddText()
	c.SetGarmentColor("#223344")
	snap := c.Snapshot()

	c2 := newTestController()
	c2.Restore(snap)

	if len(c2.ItemsOn(design.SideFront)) != 1 {
		t.Error("restored controller lost the item")
	}
	if c2.GarmentColor() != "#223344" {
		t.Errorf("restored garment color = %q", c2.GarmentColor())
	}
	if c2.SelectedItemID() != "" || c2.State() != StateIdle {
		t.Error("restore should start unselected")
	}
}

func selectedItem(t *testing.T, c *Controller) design.CanvasItem {
	t.Helper()
	it, ok := findItem(c, c.SelectedItemID())
	if !ok {
		t.Fatal("no selected item")
	}
	return it
}

func findItem(c *Controller, id string) (design.CanvasItem, bool) {
	for _, it := range c.Items() {
		if it.ID == id {
			return it, true
		}
	}
	return design.CanvasItem{}, false
}
