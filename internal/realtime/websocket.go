package realtime

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// frameWriter is the part of *websocket.Conn the hub writes through.
type frameWriter interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// WebSocketConn serialises writes to one socket. The underlying conn allows a
// single concurrent writer.
type WebSocketConn struct {
	mu     sync.Mutex
	conn   frameWriter
	closed bool
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{conn: c}
}

func (w *WebSocketConn) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return websocket.ErrCloseSent
	}
	return w.conn.WriteMessage(messageType, data)
}

// Close is safe to call more than once.
func (w *WebSocketConn) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.conn.Close()
}

// WritePump writes queued payloads to the client's socket until Send is
// closed or a write fails.
func (c *Client) WritePump() error {
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return err
		}
	}
	return nil
}
