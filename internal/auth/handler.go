package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLen = 8
	maxNameLen     = 64
	maxCredsBody   = 4 << 10
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// decodeCredentials reads and checks a login or registration body. Names
// are trimmed; passwords are taken as sent.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCredsBody)).Decode(&req); err != nil {
		return req, errors.New("invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "" || req.Password == "":
		return req, errors.New("name and password are required")
	case utf8.RuneCountInString(req.Name) > maxNameLen:
		return req, fmt.Errorf("name must be at most %d characters", maxNameLen)
	}
	return req, nil
}

// Register creates a study profile and signs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < minPasswordLen {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		return
	}

	result, err := h.service.Register(r.Context(), req.Name, req.Password)
	switch {
	case errors.Is(err, ErrNameTaken):
		WriteError(w, http.StatusConflict, "profile name already taken")
	case err != nil:
		slog.Error("register profile", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
	default:
		slog.Info("profile registered", "profile", result.Profile.ID)
		WriteJSON(w, http.StatusCreated, result)
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Login(r.Context(), req.Name, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		slog.Error("login", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
	default:
		WriteJSON(w, http.StatusOK, result)
	}
}

// Me returns the profile behind the bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), ProfileIDFromContext(r.Context()))
	switch {
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, "profile not found")
	case err != nil:
		slog.Error("get profile", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error")
	default:
		WriteJSON(w, http.StatusOK, profile)
	}
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}
