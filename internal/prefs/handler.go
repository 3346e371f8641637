package prefs

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inamate/inkoverlay/internal/auth"
	"github.com/inamate/inkoverlay/internal/settings"
)

// Publisher is told when a profile's settings change, so open overlays can
// follow.
type Publisher interface {
	SettingsChanged(profileID string, s settings.Settings)
}

type Handler struct {
	repo      Repository
	publisher Publisher
}

func NewHandler(repo Repository, publisher Publisher) *Handler {
	return &Handler{repo: repo, publisher: publisher}
}

// Response is returned by both endpoints. Warning is set when stored values
// could not be used as they were.
type Response struct {
	Settings settings.Settings `json:"settings"`
	Warning  string            `json:"warning,omitempty"`
}

// Get returns the profile's settings. Missing, unreadable or invalid stored
// settings never fail the request: defaults are substituted and a warning
// is attached for the host to show once.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileIDFromContext(r.Context())

	stored, err := h.repo.Load(r.Context(), profileID)
	switch {
	case errors.Is(err, ErrNotFound):
		auth.WriteJSON(w, http.StatusOK, Response{Settings: settings.Default()})
		return
	case err != nil:
		slog.Warn("load settings failed", "profile", profileID, "error", err)
		auth.WriteJSON(w, http.StatusOK, Response{
			Settings: settings.Default(),
			Warning:  "saved pen settings could not be loaded; using defaults",
		})
		return
	}

	resp := Response{}
	resp.Settings, err = stored.Normalize()
	if err != nil {
		slog.Warn("stored settings corrected", "profile", profileID, "error", err)
		resp.Warning = err.Error()
	}
	auth.WriteJSON(w, http.StatusOK, resp)
}

// Put validates and stores the posted settings.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	profileID := auth.ProfileIDFromContext(r.Context())

	var req settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	normalized, err := req.Normalize()
	if err != nil {
		auth.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	saved, err := h.repo.Save(r.Context(), profileID, normalized)
	if err != nil {
		slog.Error("save settings failed", "profile", profileID, "error", err)
		auth.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if h.publisher != nil {
		h.publisher.SettingsChanged(profileID, saved)
	}
	auth.WriteJSON(w, http.StatusOK, Response{Settings: saved})
}
