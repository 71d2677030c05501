package websocket

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn wraps a gorilla connection with a write mutex so the read loop, the
// keepalive pinger and relay pushes can write without interleaving frames.
type wsConn struct {
	conn     *websocket.Conn
	mu       sync.Mutex
	isClosed bool
	done     chan struct{}
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		done: make(chan struct{}),
	}
}

func (c *wsConn) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed {
		return fmt.Errorf("websocket: connection closed")
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed {
		return
	}
	c.isClosed = true
	c.conn.Close()
	close(c.done)
}

func (c *wsConn) keepAlive(ticketID int64) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.isClosed {
				c.mu.Unlock()
				return
			}
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()

			if err != nil {
				log.Printf("websocket: ticket %d: ping failed: %v", ticketID, err)
				return
			}
		}
	}
}
