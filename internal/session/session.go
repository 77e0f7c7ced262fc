package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
	"github.com/sketchpad/sketchpad/backend-go/internal/render"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrBadPayload     = errors.New("invalid payload")
)

// Session is one editing session: an engine plus the websocket clients
// watching it. Events are applied one at a time under mu.
type Session struct {
	ID string

	mu       sync.Mutex
	engine   *engine.Engine
	measurer *render.Canvas
	lastSeen time.Time

	// Guarded by the manager's lock.
	clients map[string]*Client
}

func newSession(id string, width, height float64, now time.Time) (*Session, error) {
	canvas, err := render.NewCanvas(1, 1)
	if err != nil {
		return nil, fmt.Errorf("text measurer: %w", err)
	}

	e := engine.NewEngine()
	e.SetViewport(width, height)
	e.SetMeasurer(canvas)

	return &Session{
		ID:       id,
		engine:   e,
		measurer: canvas,
		lastSeen: now,
		clients:  make(map[string]*Client),
	}, nil
}

// Handle applies msg to the engine and returns the resulting frame message.
func (s *Session) Handle(msg *Message, now time.Time) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now

	if err := s.apply(msg); err != nil {
		return nil, err
	}

	frame, err := s.engine.Frame()
	if err != nil {
		return nil, fmt.Errorf("compile frame: %w", err)
	}
	return frameMessage(msg.Seq, frame)
}

func (s *Session) apply(msg *Message) error {
	e := s.engine
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		switch msg.Type {
		case TypePointerDown:
			return e.PointerDown(p)
		case TypePointerMove:
			return e.PointerMove(p)
		default:
			return e.PointerUp(p)
		}

	case TypeBlur:
		var p BlurPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.Blur(p.Content)

	case TypeKeyDown, TypeKeyUp:
		var p KeyPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if msg.Type == TypeKeyDown {
			e.KeyDown(p.Key)
		} else {
			e.KeyUp(p.Key)
		}

	case TypeWheel:
		var p WheelPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.Wheel(p)

	case TypeToolSet:
		var p ToolPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.SetTool(p.Tool)

	case TypeStyleSet:
		var p StylePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.SetStyle(p)

	case TypeZoom:
		var p ZoomPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.Zoom(p.Delta)

	case TypeZoomReset:
		e.ResetZoom()

	case TypeUndo:
		e.Undo()

	case TypeRedo:
		e.Redo()

	case TypeViewportSet:
		var p ViewportPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: viewport %vx%v", ErrBadPayload, p.Width, p.Height)
		}
		e.SetViewport(p.Width, p.Height)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: %s needs a payload", ErrBadPayload, msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadPayload, msg.Type, err)
	}
	return nil
}

// Frame returns the current frame.
func (s *Session) Frame() (engine.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Frame()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measurer.Close()
}

func errorMessage(seq int64, err error) *Message {
	payload, _ := json.Marshal(ErrorPayload{Message: err.Error()})
	return &Message{Type: TypeError, Seq: seq, Payload: payload}
}
