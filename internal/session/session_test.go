package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
)

func msg(t *testing.T, typ string, payload any) *Message {
	t.Helper()
	m := &Message{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		m.Payload = data
	}
	return m
}

func frameOf(t *testing.T, m *Message) engine.Frame {
	t.Helper()
	require.Equal(t, TypeFrame, m.Type)
	var f engine.Frame
	require.NoError(t, json.Unmarshal(m.Payload, &f))
	return f
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := newSession("sess_test", 800, 600, time.Now())
	require.NoError(t, err)
	t.Cleanup(s.close)
	return s
}

func TestHandleDrawsRectangle(t *testing.T) {
	s := newTestSession(t)
	now := time.Now()

	for _, m := range []*Message{
		msg(t, TypeToolSet, ToolPayload{Tool: engine.ToolRectangle}),
		msg(t, TypeStyleSet, StylePayload{Fill: "Orange"}),
		msg(t, TypePointerDown, PointerPayload{X: 100, Y: 100}),
		msg(t, TypePointerMove, PointerPayload{X: 300, Y: 250}),
	} {
		_, err := s.Handle(m, now)
		require.NoError(t, err)
	}

	up := msg(t, TypePointerUp, PointerPayload{X: 300, Y: 250})
	up.Seq = 7
	reply, err := s.Handle(up, now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), reply.Seq)

	f := frameOf(t, reply)
	assert.Equal(t, engine.ActionIdle, f.Action)
	require.Len(t, f.Commands, 1)
	assert.Equal(t, engine.OpPath, f.Commands[0].Op)
	assert.Equal(t, "Orange", f.Commands[0].Fill)
	assert.Equal(t, 800.0, f.View.Width)
	assert.Equal(t, 1, f.HistoryIndex)
}

func TestHandleTextUsesMeasurer(t *testing.T) {
	s := newTestSession(t)
	now := time.Now()

	_, err := s.Handle(msg(t, TypeToolSet, ToolPayload{Tool: engine.ToolText}), now)
	require.NoError(t, err)
	reply, err := s.Handle(msg(t, TypePointerDown, PointerPayload{X: 10, Y: 10}), now)
	require.NoError(t, err)
	f := frameOf(t, reply)
	require.NotNil(t, f.Editor)
	assert.Equal(t, 8.0, f.Editor.Top)

	reply, err = s.Handle(msg(t, TypeBlur, BlurPayload{Content: "hello"}), now)
	require.NoError(t, err)
	f = frameOf(t, reply)
	assert.Nil(t, f.Editor)
	require.Len(t, f.Commands, 1)
	assert.Equal(t, "hello", f.Commands[0].Text)

	txt, ok := s.engine.Document()[0].(document.Text)
	require.True(t, ok)
	w, _ := s.measurer.MeasureString("hello")
	assert.Positive(t, w)
	assert.InDelta(t, 10+w, txt.X2, 1e-9)
}

func TestHandleViewMessages(t *testing.T) {
	s := newTestSession(t)
	now := time.Now()

	_, err := s.Handle(msg(t, TypeViewportSet, ViewportPayload{Width: 1000, Height: 500}), now)
	require.NoError(t, err)
	_, err = s.Handle(msg(t, TypeZoom, ZoomPayload{Delta: 0.5}), now)
	require.NoError(t, err)
	_, err = s.Handle(msg(t, TypeWheel, WheelPayload{DeltaX: 5, DeltaY: 10}), now)
	require.NoError(t, err)

	reply, err := s.Handle(msg(t, TypeZoomReset, nil), now)
	require.NoError(t, err)
	f := frameOf(t, reply)
	assert.Equal(t, engine.View{PanX: -5, PanY: -10, Scale: 1, Width: 1000, Height: 500}, f.View)
}

func TestHandleKeysUndoRedo(t *testing.T) {
	s := newTestSession(t)
	now := time.Now()

	for _, m := range []*Message{
		msg(t, TypePointerDown, PointerPayload{X: 0, Y: 0}),
		msg(t, TypePointerMove, PointerPayload{X: 10, Y: 10}),
		msg(t, TypePointerUp, PointerPayload{X: 10, Y: 10}),
		msg(t, TypeKeyDown, KeyPayload{Key: engine.KeyControl}),
		msg(t, TypeKeyDown, KeyPayload{Key: "z"}),
		msg(t, TypeKeyUp, KeyPayload{Key: "z"}),
		msg(t, TypeKeyUp, KeyPayload{Key: engine.KeyControl}),
	} {
		_, err := s.Handle(m, now)
		require.NoError(t, err)
	}
	assert.Empty(t, s.engine.Document())

	reply, err := s.Handle(msg(t, TypeRedo, nil), now)
	require.NoError(t, err)
	assert.Len(t, frameOf(t, reply).Commands, 1)

	reply, err = s.Handle(msg(t, TypeUndo, nil), now)
	require.NoError(t, err)
	assert.Empty(t, frameOf(t, reply).Commands)
}

func TestHandleErrors(t *testing.T) {
	s := newTestSession(t)
	now := time.Now()

	_, err := s.Handle(msg(t, "teleport", nil), now)
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = s.Handle(msg(t, TypePointerDown, nil), now)
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = s.Handle(&Message{Type: TypeWheel, Payload: json.RawMessage(`"sideways"`)}, now)
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = s.Handle(msg(t, TypeViewportSet, ViewportPayload{Width: 0, Height: 10}), now)
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = s.Handle(msg(t, TypeStyleSet, StylePayload{Fill: "Plaid"}), now)
	assert.ErrorIs(t, err, engine.ErrUnknownColor)

	_, err = s.Handle(msg(t, TypeToolSet, ToolPayload{Tool: "lasso"}), now)
	require.NoError(t, err)
	_, err = s.Handle(msg(t, TypePointerDown, PointerPayload{X: 1, Y: 1}), now)
	assert.ErrorIs(t, err, document.ErrInvalidKind)
}

func TestErrorMessage(t *testing.T) {
	m := errorMessage(3, ErrUnknownMessage)
	assert.Equal(t, TypeError, m.Type)
	assert.Equal(t, int64(3), m.Seq)

	var p ErrorPayload
	require.NoError(t, json.Unmarshal(m.Payload, &p))
	assert.Equal(t, ErrUnknownMessage.Error(), p.Message)
}
