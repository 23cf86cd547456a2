// Package server manages individual WebSocket clients, handling the read and
// write pumps and translating inbound frames into hub commands.
package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single outbound frame or control message.
	writeWait = 10 * time.Second

	// pongWait is how long the read side tolerates silence; pings go out
	// early enough to keep a healthy peer inside that window.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client represents one WebSocket connection in the chat system. The hub owns
// username and room: both are read and written only on the hub loop, so the
// pump goroutines never touch them.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	addr string

	username string
	room     string
}

// NewClient creates a Client for the provided WebSocket connection. The send
// channel is buffered so a burst of broadcasts does not immediately stall the
// hub; a client that lets it fill up is dropped instead (see Hub.deliver).
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	if conn != nil {
		conn.SetReadLimit(hub.cfg.MaxMessageSize)
	}
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, hub.cfg.SendBuffer),
		hub:  hub,
		addr: addr,
	}
}

// setupReadConnection configures the read deadline and pong handler for the
// WebSocket connection.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn("failed to set read deadline", "clientId", c.id, "addr", c.addr, "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// handleReadError logs the reason the read loop is stopping.
func (c *Client) handleReadError(err error) {
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		slog.Debug("client disconnected", "clientId", c.id, "addr", c.addr, "error", err)
	case isExpectedCloseError(err):
		slog.Debug("client connection closed", "clientId", c.id, "addr", c.addr, "error", err)
	default:
		slog.Warn("websocket read error", "clientId", c.id, "addr", c.addr, "error", err)
	}
}

// readPump reads frames off the socket and dispatches them until the
// connection dies, then disconnects the client from the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.requestDisconnect(c)
		_ = c.conn.Close()
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			break
		}
		c.processEvent(raw)
	}
}

// processEvent decodes one inbound frame and turns it into a hub command.
// Malformed frames and unknown event types are dropped; the connection stays
// open either way.
func (c *Client) processEvent(raw []byte) {
	ev, err := decodeInbound(raw)
	if err != nil {
		slog.Warn("dropping malformed frame", "clientId", c.id, "addr", c.addr, "error", err)
		return
	}

	switch ev.Type {
	case EventJoin, EventSwitchRoom:
		username := strings.TrimSpace(ev.Username)
		if username == "" {
			slog.Warn("dropping join without username", "clientId", c.id, "addr", c.addr)
			return
		}
		c.hub.requestJoin(c, username, strings.TrimSpace(ev.Room))
	case EventMessage:
		// The sender's identity and room come from hub state, not from
		// whatever the frame claims.
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return
		}
		c.hub.requestSend(c, text)
	default:
		slog.Warn("ignoring unknown event type", "clientId", c.id, "addr", c.addr, "type", ev.Type)
	}
}

// writePump pushes queued frames to the socket and keeps the connection alive
// with periodic pings. Each queued event goes out as its own frame so every
// frame stays a single self-contained JSON object.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub dropped us; say goodbye properly.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !isExpectedCloseError(err) {
					slog.Warn("websocket write error", "clientId", c.id, "addr", c.addr, "error", err)
				}
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

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
