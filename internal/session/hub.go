package session

import (
	"encoding/json"
	"sync"
	"time"

	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/render"
	"bracketbuddy/internal/scatter"
)

// Message types pushed to viewers.
const (
	MessageChartInit   = "chart.init"
	MessageChartUpdate = "chart.update"
	MessageChartError  = "chart.error"
	MessagePong        = "pong"
)

// Message is the envelope written to websocket clients.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Revision  int             `json:"revision,omitempty"`
	Option    json.RawMessage `json:"option,omitempty"`
	Error     *ErrorBody      `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Hub fans chart messages out to the websocket clients of one session.
type Hub struct {
	sessionID string
	log       *logger.Component

	mu      sync.Mutex
	clients map[*Client]struct{}
	last    *Message
	closed  bool
}

func NewHub(sessionID string) *Hub {
	return &Hub{
		sessionID: sessionID,
		clients:   make(map[*Client]struct{}),
		log:       logger.Named("hub").With("session", sessionID),
	}
}

// Register adds c and replays the current chart so a late viewer starts in sync.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		replay := *h.last
		replay.Type = MessageChartInit
		c.enqueue(replay)
	}
	h.log.Debugf("client %s connected (total: %d)", c.ID, len(h.clients))
	return true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.log.Debugf("client %s disconnected (total: %d)", c.ID, len(h.clients))
}

// Broadcast sends msg to every client without blocking. Clients whose buffer
// is full are disconnected.
func (h *Hub) Broadcast(msg Message) {
	msg.SessionID = h.sessionID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if msg.Type == MessageChartInit || msg.Type == MessageChartUpdate {
		kept := msg
		h.last = &kept
	}
	for c := range h.clients {
		if !c.enqueue(msg) {
			h.log.Warnf("client %s buffer full, disconnecting", c.ID)
			h.dropLocked(c)
		}
	}
}

// sendTo queues msg for a single client. The send channel is only touched
// while c is still registered, since dropLocked closes it under the same lock.
func (h *Hub) sendTo(c *Client, msg Message) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	return c.enqueue(msg)
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client; later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// hubSurface pushes each drawn frame to the hub as an echarts option.
type hubSurface struct {
	hub   *Hub
	style render.Style
}

func (s hubSurface) Draw(frame scatter.Frame) error {
	commit, err := s.Stage(frame)
	if err != nil {
		return err
	}
	commit()
	return nil
}

// Stage builds the option; the broadcast waits for commit.
func (s hubSurface) Stage(frame scatter.Frame) (func(), error) {
	option, err := render.OptionJSON(frame, s.style)
	if err != nil {
		return nil, err
	}
	typ := MessageChartUpdate
	if frame.Revision <= 1 {
		typ = MessageChartInit
	}
	return func() {
		s.hub.Broadcast(Message{Type: typ, Revision: frame.Revision, Option: option})
	}, nil
}
