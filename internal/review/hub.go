package review

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/inamate/inkoverlay/internal/settings"
	"github.com/inamate/inkoverlay/internal/wire"
)

// StatusSaver persists the last status an overlay reported for a session.
type StatusSaver func(sessionID string, status json.RawMessage) error

type Room struct {
	sessionID  string
	profileID  string
	clients    map[string]*Client // clientID -> client
	lastStatus json.RawMessage
	seq        int64
}

func NewRoom(sessionID, profileID string) *Room {
	return &Room{
		sessionID: sessionID,
		profileID: profileID,
		clients:   make(map[string]*Client),
	}
}

// Hub relays host lifecycle events to the overlays of each review session.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sessionID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	saveStatus StatusSaver
}

func NewHub(saveStatus StatusSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		saveStatus: saveStatus,
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
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client's send queue.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		room = NewRoom(client.SessionID, client.ProfileID)
		h.rooms[client.SessionID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	welcome, err := wire.New(wire.TypeWelcome, wire.WelcomePayload{
		ClientID:  client.ClientID,
		SessionID: client.SessionID,
	})
	if err == nil {
		client.Send(welcome)
	}

	slog.Info("overlay joined", "session", client.SessionID, "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()

	if len(room.clients) == 0 {
		delete(h.rooms, client.SessionID)
	}
	h.mu.Unlock()

	slog.Info("overlay left", "session", client.SessionID, "client", client.ClientID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, room := range h.rooms {
		for _, c := range room.clients {
			c.closeSend()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *wire.Message) {
	switch msg.Type {
	case wire.TypeOverlayStatus:
		h.handleStatus(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		if reply, err := wire.New(wire.TypeError, wire.ErrorPayload{Message: "unknown message type " + msg.Type}); err == nil {
			sender.Send(reply)
		}
	}
}

func (h *Hub) handleStatus(sender *Client, msg *wire.Message) {
	if !json.Valid(msg.Payload) {
		slog.Warn("invalid status payload", "client", sender.ClientID)
		return
	}

	h.mu.Lock()
	if room, ok := h.rooms[sender.SessionID]; ok {
		room.lastStatus = msg.Payload
	}
	h.mu.Unlock()

	if h.saveStatus != nil {
		if err := h.saveStatus(sender.SessionID, msg.Payload); err != nil {
			slog.Warn("save overlay status", "session", sender.SessionID, "error", err)
		}
	}
}

// Publish sends msg to every overlay of the session and returns how many
// received it.
func (h *Hub) Publish(sessionID string, msg *wire.Message) int {
	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.Unlock()
		return 0
	}
	room.seq++
	out := *msg
	out.SessionID = sessionID
	out.Seq = room.seq
	h.mu.Unlock()

	return h.broadcastToRoom(sessionID, &out, "")
}

// SettingsChanged pushes new pen settings to every open overlay of the
// profile.
func (h *Hub) SettingsChanged(profileID string, s settings.Settings) {
	msg, err := wire.New(wire.TypeSettingsChanged, s)
	if err != nil {
		slog.Error("marshal settings", "error", err)
		return
	}

	h.mu.RLock()
	var sessions []string
	for id, room := range h.rooms {
		if room.profileID == profileID {
			sessions = append(sessions, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range sessions {
		h.Publish(id, msg)
	}
}

// LastStatus returns the most recent status reported by a connected overlay
// of the session. Once the last overlay leaves, the stored copy is the only
// one.
func (h *Hub) LastStatus(sessionID string) (json.RawMessage, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[sessionID]
	if !ok || room.lastStatus == nil {
		return nil, false
	}
	return room.lastStatus, true
}

// Clients returns the number of overlays connected to the session.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[sessionID]; ok {
		return len(room.clients)
	}
	return 0
}

func (h *Hub) broadcastToRoom(sessionID string, msg *wire.Message, excludeClientID string) int {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return 0
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if c.Send(msg) {
			sent++
		}
	}
	return sent
}
