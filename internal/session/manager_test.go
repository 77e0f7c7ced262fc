package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
	"github.com/sketchpad/sketchpad/backend-go/internal/typeid"
)

func TestCreateAndGetSession(t *testing.T) {
	m := NewManager(640, 480, time.Minute)

	id, err := m.CreateSession(false)
	require.NoError(t, err)
	require.NoError(t, typeid.Validate(id, typeid.PrefixSession))

	s, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, 1, m.Len())

	f, err := m.Frame(id)
	require.NoError(t, err)
	assert.Empty(t, f.Commands)
	assert.Equal(t, 640.0, f.View.Width)

	_, err = m.Frame("sess_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSampleSession(t *testing.T) {
	m := NewManager(640, 480, time.Minute)
	id, err := m.CreateSession(true)
	require.NoError(t, err)

	f, err := m.Frame(id)
	require.NoError(t, err)
	assert.Len(t, f.Commands, 5)
}

func TestSweepDropsIdleSessions(t *testing.T) {
	m := NewManager(640, 480, time.Minute)
	start := time.Now()
	m.now = func() time.Time { return start }

	idle, err := m.CreateSession(false)
	require.NoError(t, err)
	busy, err := m.CreateSession(false)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(50 * time.Second) }
	s, _ := m.Get(busy)
	_, err = s.Handle(&Message{Type: TypeUndo}, m.now())
	require.NoError(t, err)

	assert.Zero(t, m.Sweep())

	m.now = func() time.Time { return start.Add(90 * time.Second) }
	assert.Equal(t, 1, m.Sweep())

	_, ok := m.Get(idle)
	assert.False(t, ok)
	_, ok = m.Get(busy)
	assert.True(t, ok)
}

func TestSweepKeepsSessionsWithClients(t *testing.T) {
	m := NewManager(640, 480, time.Minute)
	start := time.Now()
	m.now = func() time.Time { return start }
	id, err := m.CreateSession(false)
	require.NoError(t, err)

	m.addClient(NewClient(m, newFakeConn(), id, "c1"))
	m.now = func() time.Time { return start.Add(time.Hour) }
	assert.Zero(t, m.Sweep())
}

var errConnClosed = errors.New("connection closed")

// fakeConn feeds queued frames to the read pump and records writes.
type fakeConn struct {
	in      chan []byte
	out     chan []byte
	closeMu sync.Once
	closed  chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case data, ok := <-c.in:
		if !ok {
			return 0, nil, errConnClosed
		}
		return websocket.MessageText, data, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (c *fakeConn) Write(ctx context.Context, _ websocket.MessageType, p []byte) error {
	select {
	case c.out <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) Ping(context.Context) error { return nil }

func (c *fakeConn) Close(websocket.StatusCode, string) error {
	c.closeMu.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) SetReadLimit(int64) {}

func next(t *testing.T, out <-chan []byte) Message {
	t.Helper()
	select {
	case data := <-out:
		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message written")
		return Message{}
	}
}

func send(t *testing.T, in chan<- []byte, m *Message) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	in <- data
}

func TestClientPumps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(640, 480, time.Minute)
	go m.Run(ctx)
	id, err := m.CreateSession(false)
	require.NoError(t, err)

	conn := newFakeConn()
	client := NewClient(m, conn, id, "c1")
	m.Register(client)
	go client.WritePump(ctx)
	go client.ReadPump(ctx)

	hello := next(t, conn.out)
	assert.Equal(t, TypeFrame, hello.Type)

	down := msg(t, TypePointerDown, PointerPayload{X: 5, Y: 5})
	down.Seq = 1
	send(t, conn.in, down)
	reply := next(t, conn.out)
	assert.Equal(t, int64(1), reply.Seq)
	assert.Equal(t, engine.ActionDrawing, frameOf(t, &reply).Action)

	send(t, conn.in, &Message{Type: "nonsense", Seq: 2})
	bad := next(t, conn.out)
	assert.Equal(t, TypeError, bad.Type)
	assert.Equal(t, int64(2), bad.Seq)

	conn.in <- []byte("{not json")
	assert.Equal(t, TypeError, next(t, conn.out).Type)

	close(conn.in)
	select {
	case <-conn.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection not closed")
	}
}

func TestRegisterUnknownSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(640, 480, time.Minute)
	go m.Run(ctx)

	conn := newFakeConn()
	client := NewClient(m, conn, "sess_gone", "c1")
	m.Register(client)
	go client.WritePump(ctx)

	assert.Equal(t, TypeError, next(t, conn.out).Type)
	select {
	case <-conn.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection not closed")
	}
}

type allowToken string

func (a allowToken) Authorize(token, _ string) error {
	if token != string(a) {
		return errors.New("denied")
	}
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := NewManager(640, 480, time.Minute)
	go m.Run(ctx)

	h := NewHandler(m, allowToken("ok"), nil)
	r := mux.NewRouter()
	r.HandleFunc("/api/sessions/{sessionId}/frame", h.Frame)
	r.HandleFunc("/ws/sessions/{sessionId}", h.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, m
}

func TestFrameEndpoint(t *testing.T) {
	srv, m := newTestServer(t)
	id, err := m.CreateSession(true)
	require.NoError(t, err)

	res, err := http.Get(srv.URL + "/api/sessions/" + id + "/frame")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var f engine.Frame
	require.NoError(t, json.NewDecoder(res.Body).Decode(&f))
	assert.Len(t, f.Commands, 5)

	res, err = http.Get(srv.URL + "/api/sessions/sess_missing/frame")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestWebSocketSession(t *testing.T) {
	srv, m := newTestServer(t)
	id, err := m.CreateSession(false)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions/" + id

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, res, err := websocket.Dial(ctx, wsURL+"?token=bad", nil)
	require.Error(t, err)
	if res != nil {
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	}

	conn, _, err := websocket.Dial(ctx, wsURL+"?token=ok", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() Message {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}
	write := func(m *Message) {
		data, err := json.Marshal(m)
		require.NoError(t, err)
		require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
	}

	assert.Equal(t, TypeFrame, read().Type)

	write(msg(t, TypePointerDown, PointerPayload{X: 10, Y: 10}))
	read()
	write(msg(t, TypePointerMove, PointerPayload{X: 60, Y: 40}))
	read()
	write(msg(t, TypePointerUp, PointerPayload{X: 60, Y: 40}))
	last := read()

	f := frameOf(t, &last)
	require.Len(t, f.Commands, 1)
	assert.Equal(t, engine.ActionIdle, f.Action)
}
