package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn serializes writes to a gorilla connection, which allows only one
// concurrent writer. Ticks, relayed events and replies share it.
type Conn struct {
	*websocket.Conn
	mu sync.Mutex
}

// Wrap returns a Conn around c.
func Wrap(c *websocket.Conn) *Conn {
	return &Conn{Conn: c}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(code, msg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Code:  code,
		Error: msg,
	})
}

// ReadJSON reads and decodes a message into v with a read deadline.
func (c *Conn) ReadJSON(v any) error {
	c.SetReadDeadline(time.Now().Add(readWait))
	return c.Conn.ReadJSON(v)
}
