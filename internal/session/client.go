package session

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errNoConnection = errors.New("no connection")

// Client wraps the outbound side of one WebSocket connection. The transport
// layer owns the connection; everything else sends through this handle.
type Client struct {
	Conn    *websocket.Conn
	timeout time.Duration
	mu      sync.Mutex
	hook    func([]byte) error
}

func NewClient(conn *websocket.Conn, timeout time.Duration) *Client {
	return &Client{Conn: conn, timeout: timeout}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func([]byte) error) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send writes one serialized event to the connection. A write deadline keeps
// a stalled peer from blocking fan-out to the rest of a room.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		return c.hook(payload)
	}
	if c.Conn == nil {
		return errNoConnection
	}
	if c.timeout > 0 {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	return c.Conn.WriteMessage(websocket.TextMessage, payload)
}
