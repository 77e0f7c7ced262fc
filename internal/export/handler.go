package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
	"github.com/sketchpad/sketchpad/backend-go/internal/render"
	"github.com/sketchpad/sketchpad/backend-go/internal/session"
)

// maxSide bounds each side of an exported image, in pixels.
const maxSide = 8192

// FrameSource looks up the current frame of a session.
type FrameSource interface {
	Frame(sessionID string) (engine.Frame, error)
}

type Handler struct {
	frames FrameSource
}

func NewHandler(frames FrameSource) *Handler {
	return &Handler{frames: frames}
}

// ExportPNG renders what the session currently shows, at the session's
// viewport size, and sends it as a PNG attachment.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	frame, err := h.frames.Frame(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		slog.Error("export frame", "error", err, "session", sessionID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	width, height := int(math.Ceil(frame.View.Width)), int(math.Ceil(frame.View.Height))
	if width <= 0 || height <= 0 || width > maxSide || height > maxSide {
		http.Error(w, fmt.Sprintf("cannot export a %dx%d viewport", width, height), http.StatusBadRequest)
		return
	}

	name := sanitizeName(r.URL.Query().Get("name"))

	canvas, err := render.NewCanvas(width, height)
	if err != nil {
		slog.Error("create canvas", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer canvas.Close()

	if err := canvas.Draw(frame); err != nil {
		slog.Error("draw frame", "error", err, "session", sessionID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		slog.Error("encode png", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)

	slog.Info("export complete", "session", sessionID, "size", buf.Len())
}

func sanitizeName(name string) string {
	if name == "" {
		return "sketch"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
