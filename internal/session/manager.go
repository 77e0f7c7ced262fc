package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
	"github.com/sketchpad/sketchpad/backend-go/internal/typeid"
)

const sweepInterval = time.Minute

// Manager owns every live session and the clients attached to them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	width  float64
	height float64
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(width, height float64, ttl time.Duration) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		width:      width,
		height:     height,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Run serves client registration and sweeps idle sessions until ctx ends.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	defer close(m.done)

	for {
		select {
		case client := <-m.register:
			m.addClient(client)
		case client := <-m.unregister:
			m.removeClient(client)
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("swept idle sessions", "count", n)
			}
		case <-ctx.Done():
			m.closeAll()
			return
		}
	}
}

func (m *Manager) Register(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
		client.close()
	}
}

func (m *Manager) Unregister(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// CreateSession starts an empty session, or one holding the sample document.
func (m *Manager) CreateSession(sample bool) (string, error) {
	id := typeid.NewSessionID()
	s, err := newSession(id, m.width, m.height, m.now())
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if sample {
		s.engine.LoadSampleDocument()
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	slog.Info("session created", "session", id, "sample", sample)
	return id, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Frame returns the current frame of a session.
func (m *Manager) Frame(id string) (engine.Frame, error) {
	s, ok := m.Get(id)
	if !ok {
		return engine.Frame{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Frame()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions that have no clients and have been idle for longer
// than the TTL. It returns how many were dropped.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if len(s.clients) == 0 && s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		slog.Debug("session expired", "session", s.ID)
	}
	return len(expired)
}

func (m *Manager) addClient(client *Client) {
	m.mu.Lock()
	s, ok := m.sessions[client.SessionID]
	if !ok {
		m.mu.Unlock()
		client.Send(errorMessage(0, fmt.Errorf("%w: %s", ErrNotFound, client.SessionID)))
		client.close()
		return
	}
	s.clients[client.ID] = client
	m.mu.Unlock()

	// Bring the new client up to date.
	if frame, err := s.Frame(); err == nil {
		if msg, err := frameMessage(0, frame); err == nil {
			client.Send(msg)
		}
	}

	slog.Info("client joined", "client", client.ID, "session", client.SessionID)
}

func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	s, ok := m.sessions[client.SessionID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, attached := s.clients[client.ID]; !attached {
		m.mu.Unlock()
		return
	}
	delete(s.clients, client.ID)
	m.mu.Unlock()
	client.close()

	slog.Info("client left", "client", client.ID, "session", client.SessionID)
}

// handleMessage applies a client message. Frames go to every client of the
// session; errors only to the sender.
func (m *Manager) handleMessage(sender *Client, msg *Message) {
	s, ok := m.Get(sender.SessionID)
	if !ok {
		sender.Send(errorMessage(msg.Seq, fmt.Errorf("%w: %s", ErrNotFound, sender.SessionID)))
		return
	}

	reply, err := s.Handle(msg, m.now())
	if err != nil {
		slog.Warn("message failed", "type", msg.Type, "session", s.ID, "error", err)
		sender.Send(errorMessage(msg.Seq, err))
		return
	}
	m.broadcast(s, reply)
}

func (m *Manager) broadcast(s *Session, msg *Message) {
	m.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

func frameMessage(seq int64, frame engine.Frame) (*Message, error) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}
	return &Message{Type: TypeFrame, Seq: seq, Payload: payload}, nil
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		for cid, c := range s.clients {
			delete(s.clients, cid)
			c.close()
		}
		s.close()
		delete(m.sessions, id)
	}
}
