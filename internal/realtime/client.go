package realtime

import (
	"errors"
	"sync"

	"github.com/NitinGurawaliya/watch-dog/internal/dto"
)

var (
	// ErrClientClosed is returned by Send after Close.
	ErrClientClosed = errors.New("realtime client closed")

	// ErrClientStalled is returned when the client's buffer is full, which
	// means the consuming stream has stopped draining.
	ErrClientStalled = errors.New("realtime client not draining")
)

// defaultSendBuffer absorbs a tick burst without blocking the pusher.
const defaultSendBuffer = 16

// Client is the handle for one open dashboard stream. The SSE handler owns
// the receiving side; the broadcaster feeds the sending side.
type Client struct {
	send chan dto.RealtimeMessage

	mu     sync.Mutex
	closed bool
}

// NewClient creates a stream handle with the given buffer size; zero or
// negative means the default.
func NewClient(buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Client{send: make(chan dto.RealtimeMessage, buffer)}
}

// Send queues a message for the stream without blocking. It fails when the
// client is closed or its consumer has stalled; the caller is expected to
// drop the connection in either case.
func (c *Client) Send(msg dto.RealtimeMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return ErrClientStalled
	}
}

// Messages returns the channel the stream handler drains. It is closed by
// Close.
func (c *Client) Messages() <-chan dto.RealtimeMessage {
	return c.send
}

// Close releases the handle. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
