package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vinhng/gatewatch/internal/fault"
)

// socket is the subset of *websocket.Conn the hub needs. Kept narrow so
// tests can register fake connections.
type socket interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

const writeTimeout = 10 * time.Second

// Conn is one live client connection tracked by the hub.
type Conn struct {
	ID       string
	ClientID string

	ws socket

	mu         sync.Mutex
	lastActive time.Time
}

func newConn(clientID string, ws socket) *Conn {
	return &Conn{
		ID:         uuid.New().String(),
		ClientID:   clientID,
		ws:         ws,
		lastActive: time.Now(),
	}
}

// Touch marks the connection as active now. Called on every inbound frame.
func (c *Conn) Touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}

// LastActive returns the time of the last observed activity.
func (c *Conn) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Send delivers a JSON payload to the client. Failures come back as
// classified send errors carrying the connection id.
func (c *Conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fault.SendFailed(c.ID, err)
	}
	if err := c.ws.WriteJSON(v); err != nil {
		return fault.SendFailed(c.ID, err)
	}

	c.lastActive = time.Now()
	return nil
}

func (c *Conn) close() error {
	return c.ws.Close()
}
