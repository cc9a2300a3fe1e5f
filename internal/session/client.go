package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bracketbuddy/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// clientMessage is what viewers may send; only pings are answered.
type clientMessage struct {
	Type string `json:"type"`
}

// Client is one websocket connection watching a session.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan Message
	hub  *Hub
	log  *logger.Component
}

func newClient(conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan Message, sendBufferSize),
		hub:  hub,
		log:  logger.Named("ws").With("client", id),
	}
}

// TrySend queues msg without blocking and reports whether it fit. It returns
// false once the client has been dropped from its hub.
func (c *Client) TrySend(msg Message) bool {
	return c.hub.sendTo(c, msg)
}

// enqueue must be called with the hub lock held and the client still registered.
func (c *Client) enqueue(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump consumes client frames until the connection fails, then unregisters.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if ctx.Err() != nil {
			return
		}
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warnf("unexpected close: %v", err)
			}
			return
		}
		if msg.Type == "ping" {
			c.TrySend(Message{Type: MessagePong, SessionID: c.hub.sessionID, Timestamp: time.Now()})
		}
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Warnf("write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades the request and streams hub messages until either side hangs up.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(conn, h)
	if !h.Register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ErrClosed.Error()))
		_ = conn.Close()
		return ErrClosed
	}
	ctx := r.Context()
	go c.WritePump(ctx)
	c.ReadPump(ctx)
	return nil
}
