package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/maketee/maketee/backend-go/internal/catalog"
	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/stage"
	"github.com/maketee/maketee/backend-go/internal/typeid"
)

var ErrSessionNotFound = errors.New("session not found")

// SnapshotSaver persists a session's editable state (cart persistence).
type SnapshotSaver func(sessionID string, snap design.Snapshot) error

// SnapshotLoader restores a previously saved session state.
type SnapshotLoader func(sessionID string) (design.Snapshot, error)

// Room is one live customizer session plus its connected clients.
type Room struct {
	sessionID  string
	controller *stage.Controller
	clients    map[string]*Client // clientID -> client
	presence   *PresenceManager
	dirty      bool
}

// Hub owns all live customizer sessions and routes websocket traffic between
// clients and each session's stage controller.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room // sessionID -> room

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	resolver stage.MockupResolver
	canvasW  float64
	canvasH  float64
	saver    SnapshotSaver
	loader   SnapshotLoader
}

func NewHub(resolver stage.MockupResolver, canvasW, canvasH float64, saver SnapshotSaver, loader SnapshotLoader) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		resolver:   resolver,
		canvasW:    canvasW,
		canvasH:    canvasH,
		saver:      saver,
		loader:     loader,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop halts the hub loop and saves every dirty session snapshot.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		if room.dirty && h.saver != nil {
			if err := h.saver(id, room.controller.Snapshot()); err != nil {
				slog.Error("save session snapshot", "session", id, "error", err)
			}
		}
	}
}

// CreateSession mounts a new customizer session for a product and returns its id.
func (h *Hub) CreateSession(product catalog.Product, colorID string) string {
	sessionID := typeid.NewSessionID()
	ctrl := stage.NewController(sessionID, product, colorID, h.resolver, h.canvasW, h.canvasH)
	h.attachRoom(sessionID, ctrl)
	return sessionID
}

// ResumeSession remounts a session from its stored snapshot (cart reload).
func (h *Hub) ResumeSession(sessionID string, product catalog.Product) (*stage.Controller, error) {
	if h.loader == nil {
		return nil, ErrSessionNotFound
	}
	snap, err := h.loader(sessionID)
	if err != nil {
		return nil, err
	}

	ctrl := stage.NewController(sessionID, product, snap.ColorID, h.resolver, h.canvasW, h.canvasH)
	ctrl.Restore(snap)
	h.attachRoom(sessionID, ctrl)
	return ctrl, nil
}

func (h *Hub) attachRoom(sessionID string, ctrl *stage.Controller) {
	room := &Room{
		sessionID:  sessionID,
		controller: ctrl,
		clients:    make(map[string]*Client),
		presence:   NewPresenceManager(),
	}

	h.mu.Lock()
	h.rooms[sessionID] = room
	h.mu.Unlock()

	ctrl.Subscribe(func(ev stage.Event) {
		h.onStageEvent(sessionID, ev)
	})

	slog.Info("session mounted", "session", sessionID, "product", ctrl.Product().ID)
}

// Controller returns the stage controller for a live session.
func (h *Hub) Controller(sessionID string) (*stage.Controller, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return room.controller, nil
}

// HasSession reports whether a session is live.
func (h *Hub) HasSession(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[sessionID]
	return ok
}

// MarkSaved clears a session's dirty flag after an external save.
func (h *Hub) MarkSaved(sessionID string) {
	h.mu.Lock()
	if room, ok := h.rooms[sessionID]; ok {
		room.dirty = false
	}
	h.mu.Unlock()
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		close(client.send)
		return
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Current scene state so the new client can render immediately
	welcome := sceneMessage(TypeWelcome, room.controller)
	client.Send(welcome)

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.SessionID, &Message{
		Type:    TypePresenceJoin,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "client", client.ClientID, "session", client.SessionID, "observer", client.Observer)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.ClientID)

	saveNeeded := len(room.clients) == 0 && room.dirty
	if saveNeeded {
		room.dirty = false
	}
	snap := design.Snapshot{}
	if saveNeeded {
		snap = room.controller.Snapshot()
	}
	h.mu.Unlock()

	// The session stays mounted for reconnects; its state is persisted once
	// the last client drops so the cart can reload it later.
	if saveNeeded && h.saver != nil {
		if err := h.saver(client.SessionID, snap); err != nil {
			slog.Error("save session snapshot", "session", client.SessionID, "error", err)
		}
	}

	leavePayload, _ := json.Marshal(PresenceLeavePayload{ClientID: client.ClientID})
	h.broadcastToRoom(client.SessionID, &Message{
		Type:    TypePresenceLeave,
		Payload: leavePayload,
	}, "")

	slog.Info("client left", "client", client.ClientID, "session", client.SessionID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeOpSubmit:
		h.handleOp(sender, msg)
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
	}
}

func (h *Hub) handleOp(sender *Client, msg *Message) {
	if sender.Observer {
		h.sendError(sender, "observers cannot edit")
		return
	}

	var op Op
	if err := json.Unmarshal(msg.Payload, &op); err != nil {
		h.sendError(sender, "invalid operation payload")
		return
	}

	h.mu.RLock()
	room, ok := h.rooms[sender.SessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	applyOp(room.controller, op)
}

// applyOp routes one submitted operation to the stage controller. Unknown or
// inapplicable ops fall through silently, matching the controller's no-op
// failure semantics.
func applyOp(c *stage.Controller, op Op) {
	switch op.Type {
	case OpTextAdd:
		c.AddText()
	case OpImageUploadAdd:
		c.AddImageFromUpload(op.Value)
	case OpImageLibraryAdd:
		c.AddImageFromLibraryURL(op.Value)
	case OpTextColor:
		c.SetTextColor(op.Value)
	case OpTextContent:
		c.SetText(op.Value)
	case OpFontFamily:
		c.SetFontFamily(op.Value)
	case OpFontSize:
		c.SetFontSize(op.Size)
	case OpToggleBold:
		c.ToggleBold()
	case OpToggleItalic:
		c.ToggleItalic()
	case OpTextAlign:
		c.SetTextAlign(op.Align)
	case OpStrokeColor:
		c.SetStroke(op.Value)
	case OpStrokeWidth:
		c.SetStrokeWidth(op.Size)
	case OpDuplicate:
		c.DuplicateSelected()
	case OpBringForward:
		c.BringForward()
	case OpSendBackward:
		c.SendBackward()
	case OpDelete:
		c.DeleteSelected()
	case OpGarmentColor:
		c.SetGarmentColor(op.Value)
	case OpProductColor:
		c.SetColor(op.Value)
	case OpSideSwitch:
		c.SwitchSide(op.Side)
	case OpPointerDown:
		c.PointerDown(op.X, op.Y)
	case OpDragMove:
		c.DragMove(op.X, op.Y)
	case OpTransformEnd:
		c.TransformEnd(op.X, op.Y, op.Width, op.Height, op.Rotation)
	case OpPointerUp:
		c.PointerUp()
	case OpKeyPress:
		c.KeyPress(op.Key, op.PlatformModifier, op.TextFieldFocused)
	case OpZoomIn:
		c.ZoomIn()
	case OpZoomOut:
		c.ZoomOut()
	case OpResetView:
		c.ResetView()
	case OpTogglePan:
		c.TogglePanMode()
	default:
		slog.Warn("unknown op type", "type", op.Type)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.SessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.ClientID, &presence)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.SessionID, &Message{
		Type:     TypePresenceUpdate,
		ClientID: sender.ClientID,
		Payload:  outPayload,
	}, sender.ClientID)
}

// onStageEvent fans a controller notification out to the session's clients.
func (h *Hub) onStageEvent(sessionID string, ev stage.Event) {
	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	if ok && ev.Type == stage.EventSceneChanged {
		room.dirty = true
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	msgType := TypeSceneSync
	switch ev.Type {
	case stage.EventSelectionChanged:
		msgType = TypeSelectionChange
	case stage.EventViewChanged:
		msgType = TypeViewChange
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal stage event", "error", err)
		return
	}
	h.broadcastToRoom(sessionID, &Message{
		Type:      msgType,
		SessionID: sessionID,
		Payload:   payload,
	}, "")
}

func sceneMessage(msgType string, c *stage.Controller) *Message {
	payload, _ := json.Marshal(stage.Event{
		Type:           stage.EventSceneChanged,
		ActiveSide:     c.ActiveSide(),
		SelectedItemID: c.SelectedItemID(),
		GarmentColor:   c.GarmentColor(),
		MockupURL:      c.MockupURL(),
		View:           c.View(),
		ViewMatrix:     c.View().Matrix().ToSlice(),
		Items:          c.Items(),
	})
	return &Message{Type: msgType, Payload: payload}
}

func (h *Hub) sendError(client *Client, reason string) {
	payload, _ := json.Marshal(ErrorPayload{Reason: reason})
	client.Send(&Message{Type: TypeError, Payload: payload})
}

func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

// Register queues a client for room membership.
func (h *Hub) Register(client *Client) {
	h.register <- client
}
