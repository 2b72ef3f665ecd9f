package broker

import (
	"sync"

	"github.com/gorilla/websocket"
)

// safeConn serializes writes to a single websocket connection. A
// control connection can receive a write both from its own read loop
// (an ERROR reply) and from a concurrent dispatch task forwarding an
// INPUT frame; gorilla/websocket does not allow concurrent writers.
type safeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newSafeConn(c *websocket.Conn) *safeConn {
	return &safeConn{conn: c}
}

func (c *safeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *safeConn) Close() error {
	return c.conn.Close()
}
