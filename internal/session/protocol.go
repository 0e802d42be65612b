package session

import (
	"encoding/json"

	"github.com/maketee/maketee/backend-go/internal/design"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Stage events (client → server)
	TypeOpSubmit = "op.submit"

	// Stage sync (server → clients)
	TypeSceneSync       = "scene.sync"
	TypeSelectionChange = "selection.change"
	TypeViewChange      = "view.change"

	// Observer presence
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

// Op is one stage operation submitted by the editing client. Type selects
// which of the optional fields are read.
type Op struct {
	Type string `json:"type"`

	// Pointer gestures
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	// Keyboard
	Key              string `json:"key,omitempty"`
	PlatformModifier bool   `json:"platformModifier,omitempty"`
	TextFieldFocused bool   `json:"textFieldFocused,omitempty"`

	// Tool operations
	Value string           `json:"value,omitempty"` // color, url, data URI, family, text
	Size  float64          `json:"size,omitempty"`  // font size / stroke width
	Align design.TextAlign `json:"align,omitempty"`
	Side  design.Side      `json:"side,omitempty"`
}

// Op types mirror the stage controller's operation set.
const (
	OpTextAdd         = "text.add"
	OpImageUploadAdd  = "image.upload.add"
	OpImageLibraryAdd = "image.library.add"
	OpTextColor       = "text.color"
	OpTextContent     = "text.content"
	OpFontFamily      = "text.fontFamily"
	OpFontSize        = "text.fontSize"
	OpToggleBold      = "text.toggleBold"
	OpToggleItalic    = "text.toggleItalic"
	OpTextAlign       = "text.align"
	OpStrokeColor     = "text.stroke"
	OpStrokeWidth     = "text.strokeWidth"
	OpDuplicate       = "item.duplicate"
	OpBringForward    = "item.bringForward"
	OpSendBackward    = "item.sendBackward"
	OpDelete          = "item.delete"
	OpGarmentColor    = "garment.color"
	OpProductColor    = "product.color"
	OpSideSwitch      = "side.switch"
	OpPointerDown     = "pointer.down"
	OpDragMove        = "pointer.drag"
	OpTransformEnd    = "pointer.transformEnd"
	OpPointerUp       = "pointer.up"
	OpKeyPress        = "key.press"
	OpZoomIn          = "view.zoomIn"
	OpZoomOut         = "view.zoomOut"
	OpResetView       = "view.reset"
	OpTogglePan       = "view.togglePan"
)

// PresencePayload is an observer's cursor state over the buyer's canvas.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}
