package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// SessionCreator starts a new editing session and returns its id.
type SessionCreator interface {
	CreateSession(sample bool) (string, error)
}

type Handler struct {
	service  *Service
	sessions SessionCreator
}

func NewHandler(service *Service, sessions SessionCreator) *Handler {
	return &Handler{service: service, sessions: sessions}
}

type createSessionRequest struct {
	Sample bool `json:"sample"`
}

type SessionResult struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// CreateSession starts a session and hands back a token for it. The body is
// optional.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sessionID, err := h.sessions.CreateSession(req.Sample)
	if err != nil {
		slog.Error("create session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	token, err := h.service.IssueToken(sessionID)
	if err != nil {
		slog.Error("issue token failed", "error", err, "session", sessionID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, SessionResult{SessionID: sessionID, Token: token})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
