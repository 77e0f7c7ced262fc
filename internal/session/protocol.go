package session

import (
	"encoding/json"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
)

type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeBlur        = "blur"
	TypeKeyDown     = "key.down"
	TypeKeyUp       = "key.up"
	TypeWheel       = "wheel"
	TypeToolSet     = "tool.set"
	TypeStyleSet    = "style.set"
	TypeZoom        = "zoom"
	TypeZoomReset   = "zoom.reset"
	TypeUndo        = "undo"
	TypeRedo        = "redo"
	TypeViewportSet = "viewport.set"

	// Server to client
	TypeFrame = "frame"
	TypeError = "error"
)

type PointerPayload = engine.PointerEvent

type WheelPayload = engine.WheelEvent

type StylePayload = document.Style

type BlurPayload struct {
	Content string `json:"content"`
}

type KeyPayload struct {
	Key string `json:"key"`
}

type ToolPayload struct {
	Tool engine.Tool `json:"tool"`
}

type ZoomPayload struct {
	Delta float64 `json:"delta"`
}

type ViewportPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
