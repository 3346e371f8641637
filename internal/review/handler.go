package review

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/inkoverlay/internal/auth"
	"github.com/inamate/inkoverlay/internal/wire"
)

// TokenValidator resolves a bearer token to a profile ID.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type Handler struct {
	service        *Service
	hub            *Hub
	tokens         TokenValidator
	originPatterns []string
}

func NewHandler(service *Service, hub *Hub, tokens TokenValidator, originPatterns []string) *Handler {
	return &Handler{
		service:        service,
		hub:            hub,
		tokens:         tokens,
		originPatterns: originPatterns,
	}
}

type eventRequest struct {
	Type string `json:"type"`
}

type eventResponse struct {
	Delivered int `json:"delivered"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileIDFromContext(r.Context())

	sess, err := h.service.Create(r.Context(), profileID)
	if err != nil {
		slog.Error("create review session", "error", err)
		auth.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	auth.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileIDFromContext(r.Context())
	sessionID := mux.Vars(r)["sessionId"]

	sess, err := h.service.Get(r.Context(), sessionID, profileID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if status, ok := h.hub.LastStatus(sessionID); ok {
		sess.Status = status
	}
	sess.Clients = h.hub.Clients(sessionID)

	auth.WriteJSON(w, http.StatusOK, sess)
}

// PostEvent relays a host lifecycle event to the session's overlays.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileIDFromContext(r.Context())
	sessionID := mux.Vars(r)["sessionId"]

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	msg, err := wire.MessageForEvent(req.Type)
	if err != nil {
		auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if _, err := h.service.Get(r.Context(), sessionID, profileID); err != nil {
		h.writeError(w, err)
		return
	}

	delivered := h.hub.Publish(sessionID, msg)
	slog.Debug("relayed event", "session", sessionID, "event", req.Type, "delivered", delivered)

	auth.WriteJSON(w, http.StatusAccepted, eventResponse{Delivered: delivered})
}

// ServeWS upgrades an overlay connection. The token comes from the query
// string since browsers cannot set headers on websocket requests.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	profileID, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.service.Get(r.Context(), sessionID, profileID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "review session not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "not your review session", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, profileID, sessionID, uuid.New().String())
	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		auth.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "review session not found"})
	case errors.Is(err, ErrForbidden):
		auth.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		slog.Error("review session", "error", err)
		auth.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
