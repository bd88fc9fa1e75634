package hub

import (
	"sync"
	"time"
)

// Client is one websocket connection registered with the hub.
// Send is drained by the connection's write pump.
type Client struct {
	UserID    string
	SocketID  string
	Send      chan []byte
	Connected time.Time

	mu     sync.Mutex
	closed bool
}

func NewClient(userID, socketID string) *Client {
	return &Client{
		UserID:    userID,
		SocketID:  socketID,
		Send:      make(chan []byte, 256),
		Connected: time.Now().UTC(),
	}
}

// Close closes the send channel exactly once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}
