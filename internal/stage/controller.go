package stage

import (
	"log/slog"
	"sync"

	"github.com/maketee/maketee/backend-go/internal/catalog"
	"github.com/maketee/maketee/backend-go/internal/design"
)

// State is the controller's interaction mode.
type State string

const (
	StateIdle         State = "idle"
	StateSelected     State = "selected"
	StateDragging     State = "dragging"
	StateTransforming State = "transforming"
	StatePanning      State = "panning"
)

// View zoom limits and step.
const (
	ZoomMin  = 0.6
	ZoomMax  = 2.0
	ZoomStep = 0.1
)

// ViewTransform is presentation-only pan/zoom state. It never affects
// exported pixel coordinates.
type ViewTransform struct {
	Scale float64 `json:"scale"`
	PanX  float64 `json:"panX"`
	PanY  float64 `json:"panY"`
}

// EventType labels controller notifications.
type EventType string

const (
	EventSceneChanged     EventType = "scene.changed"
	EventSelectionChanged EventType = "selection.changed"
	EventSideChanged      EventType = "side.changed"
	EventViewChanged      EventType = "view.changed"
)

// Event is pushed to listeners after every mutation so surrounding UI can
// mirror the current item's properties.
type Event struct {
	Type           EventType          `json:"type"`
	ActiveSide     design.Side        `json:"activeSide"`
	SelectedItemID string             `json:"selectedItemId,omitempty"`
	SelectedItem   *design.CanvasItem `json:"selectedItem,omitempty"`
	GarmentColor   string             `json:"garmentColor,omitempty"`
	MockupURL      string             `json:"mockupUrl,omitempty"`
	View           ViewTransform      `json:"view"`
	ViewMatrix     []float64          `json:"viewMatrix"`
	Items          []design.CanvasItem `json:"items"`
}

// Listener receives controller events. Called synchronously under no lock.
type Listener func(Event)

// MockupResolver resolves the base mockup image for (product, color, side).
type MockupResolver interface {
	ResolveMockup(productID, colorID string, side design.Side) (string, error)
}

// Controller owns one buyer's live customizer session: the scene model, the
// single selection, the view transform, and the active side. All mutations
// come through its methods; operations on a missing or wrong-kind selection
// are silent no-ops, never errors.
type Controller struct {
	mu sync.Mutex

	sessionID string
	product   catalog.Product
	colorID   string
	resolver  MockupResolver

	scene        *design.Scene
	activeSide   design.Side
	selectedID   string
	garmentColor string
	mockupURL    string

	state   State
	panMode bool
	view    ViewTransform

	canvasW float64
	canvasH float64

	listeners []Listener
}

// NewController mounts a customizer session for a product.
func NewController(sessionID string, product catalog.Product, colorID string, resolver MockupResolver, canvasW, canvasH float64) *Controller {
	c := &Controller{
		sessionID:    sessionID,
		product:      product,
		colorID:      colorID,
		resolver:     resolver,
		scene:        design.NewScene(product.AvailableSides),
		activeSide:   product.AvailableSides[0],
		garmentColor: "",
		state:        StateIdle,
		view:         ViewTransform{Scale: 1},
		canvasW:      canvasW,
		canvasH:      canvasH,
	}
	c.mockupURL = c.resolveMockup(c.activeSide)
	return c
}

// Restore rebuilds the scene from a persisted snapshot (cart reload).
func (c *Controller) Restore(snap design.Snapshot) {
	c.mu.Lock()
	c.scene = design.RestoreScene(snap, c.product.AvailableSides)
	c.garmentColor = snap.GarmentColor
	if snap.ColorID != "" {
		c.colorID = snap.ColorID
	}
	c.selectedID = ""
	c.state = StateIdle
	c.mockupURL = c.resolveMockup(c.activeSide)
	c.mu.Unlock()
	c.notify(EventSceneChanged)
}

// Subscribe registers a listener for controller events.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string { return c.sessionID }

// Product returns the product this session customizes.
func (c *Controller) Product() catalog.Product { return c.product }

// ColorID returns the selected product color.
func (c *Controller) ColorID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.colorID
}

// ActiveSide returns the side currently being edited.
func (c *Controller) ActiveSide() design.Side {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeSide
}

// State returns the current interaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectedItemID returns the selected item id, or "" when idle.
func (c *Controller) SelectedItemID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// GarmentColor returns the current tint color ("" means no tint).
func (c *Controller) GarmentColor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.garmentColor
}

// MockupURL returns the resolved base mockup for the active side.
func (c *Controller) MockupURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mockupURL
}

// View returns the presentation transform.
func (c *Controller) View() ViewTransform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// CanvasSize returns the logical stage dimensions.
func (c *Controller) CanvasSize() (float64, float64) {
	return c.canvasW, c.canvasH
}

// Items returns the active side's item list in paint order.
func (c *Controller) Items() []design.CanvasItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene.Items(c.activeSide)
}

// ItemsOn returns a given side's item list in paint order.
func (c *Controller) ItemsOn(side design.Side) []design.CanvasItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene.Items(side)
}

// CustomizedSides returns the sides carrying at least one item.
func (c *Controller) CustomizedSides() []design.Side {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene.CustomizedSides()
}

// Snapshot captures the persistable session state.
func (c *Controller) Snapshot() design.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return design.SnapshotScene(c.scene, c.product.ID, c.colorID, c.garmentColor)
}

// SwitchSide changes the active side, clearing selection (it never crosses
// sides) and swapping the base mockup. Unsupported sides are no-ops.
func (c *Controller) SwitchSide(side design.Side) {
	c.mu.Lock()
	if !c.scene.HasSide(side) {
		c.mu.Unlock()
		return
	}
	c.activeSide = side
	c.selectedID = ""
	c.state = StateIdle
	c.mockupURL = c.resolveMockup(side)
	c.mu.Unlock()
	c.notify(EventSideChanged)
}

// SetColor changes the product color and re-resolves the active mockup.
func (c *Controller) SetColor(colorID string) {
	c.mu.Lock()
	c.colorID = colorID
	c.mockupURL = c.resolveMockup(c.activeSide)
	c.mu.Unlock()
	c.notify(EventSideChanged)
}

// MockupFor resolves the base mockup for any side at the current color,
// used when exporting sides the buyer never switched to.
func (c *Controller) MockupFor(side design.Side) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveMockup(side)
}

func (c *Controller) resolveMockup(side design.Side) string {
	if c.resolver == nil {
		return c.product.DefaultImage
	}
	url, err := c.resolver.ResolveMockup(c.product.ID, c.colorID, side)
	if err != nil {
		slog.Warn("resolve mockup", "product", c.product.ID, "side", side, "error", err)
		return c.product.DefaultImage
	}
	return url
}

// selectedItemLocked returns the selected item, if any. Caller holds mu.
func (c *Controller) selectedItemLocked() (design.CanvasItem, bool) {
	if c.selectedID == "" {
		return design.CanvasItem{}, false
	}
	return c.scene.Item(c.activeSide, c.selectedID)
}

// notify snapshots event payload under the lock, then calls listeners outside it.
func (c *Controller) notify(t EventType) {
	c.mu.Lock()
	ev := Event{
		Type:           t,
		ActiveSide:     c.activeSide,
		SelectedItemID: c.selectedID,
		GarmentColor:   c.garmentColor,
		MockupURL:      c.mockupURL,
		View:           c.view,
		ViewMatrix:     c.view.Matrix().ToSlice(),
		Items:          c.scene.Items(c.activeSide),
	}
	if it, ok := c.selectedItemLocked(); ok {
		ev.SelectedItem = &it
	}
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}
