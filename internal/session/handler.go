package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/sketchpad/sketchpad/backend-go/internal/typeid"
)

// Authorizer checks that a token grants access to a session.
type Authorizer interface {
	Authorize(token, sessionID string) error
}

type Handler struct {
	manager        *Manager
	auth           Authorizer
	originPatterns []string
}

func NewHandler(manager *Manager, auth Authorizer, originPatterns []string) *Handler {
	return &Handler{manager: manager, auth: auth, originPatterns: originPatterns}
}

// Frame writes the session's current frame. Access is checked by the
// route's middleware.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	frame, err := h.manager.Frame(sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		slog.Error("frame failed", "error", err, "session", sessionID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, frame)
}

// ServeWS upgrades to a websocket bound to one session. The token comes in
// the query string since browsers cannot set headers on websocket requests.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if err := h.auth.Authorize(token, sessionID); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if _, ok := h.manager.Get(sessionID); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.manager, conn, sessionID, typeid.NewClientID())
	h.manager.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
