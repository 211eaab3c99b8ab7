package sse

import (
	"errors"
	"sync"
)

// sendBufferSize bounds the per-connection outbound buffer. When a client
// drains slower than broadcasts arrive, new frames for that connection are
// dropped rather than blocking the dispatch loop; the connection itself stays
// registered until the client disconnects.
const sendBufferSize = 16

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBufferFull       = errors.New("connection send buffer full")
)

// Connection is one open push channel. The registry holds a reference for
// matching and dispatch but does not own the underlying transport; the HTTP
// handler that created the connection drains Frames and writes them to the
// response stream.
type Connection struct {
	userID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a connection owned by the given user.
func NewConnection(userID string) *Connection {
	return &Connection{
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// UserID returns the owning user id.
func (c *Connection) UserID() string {
	return c.userID
}

// Frames is the outbound frame stream consumed by the transport handler.
func (c *Connection) Frames() <-chan []byte {
	return c.send
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Send enqueues a frame without blocking. It fails on a closed connection or a
// full buffer; the caller decides what a failed delivery means.
func (c *Connection) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close marks the connection closed. Idempotent: both the disconnect-signal
// path and any cleanup path may call it.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
