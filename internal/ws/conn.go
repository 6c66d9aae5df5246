package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messenger-service/internal/models"
)

// ConnInfo carries identity and tracing context for a live connection.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// Conn wraps a websocket connection as a registry handle. Pushes can arrive
// from any request goroutine, so writes are serialized with a mutex.
type Conn struct {
	ws   *websocket.Conn
	mu   sync.Mutex
	info ConnInfo
}

// NewConn wraps an upgraded websocket connection.
func NewConn(wsConn *websocket.Conn, info ConnInfo) *Conn {
	return &Conn{ws: wsConn, info: info}
}

// Push writes the event as a JSON text frame.
func (c *Conn) Push(ctx context.Context, event models.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(event)
}

// Close closes the underlying websocket connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// Info returns the connection metadata.
func (c *Conn) Info() ConnInfo {
	return c.info
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
