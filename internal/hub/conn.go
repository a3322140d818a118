// Package hub tracks live client connections per tenant and fans domain
// events out to them. The registry is the sole owner of connections; the
// broadcast hub delivers best-effort and never fails the originating
// command.
package hub

import (
	"sync"
)

// Sender is the wire transport half of a connection. Send must be safe to
// call from the connection's single writer goroutine; it is never called
// concurrently for one connection.
type Sender interface {
	Send(payload []byte) error
	Close() error
}

// Conn is one open real-time channel, owned by exactly one principal,
// tagged with its tenant and subscription groups. Delivery order per
// connection follows enqueue order; a full queue drops the event rather
// than blocking the publisher.
type Conn struct {
	id        string
	tenantID  string
	principal string
	groups    []string

	sender Sender
	out    chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewConn builds a connection over the given transport. bufSize is the
// outbound queue depth.
func NewConn(id, tenantID, principal string, groups []string, sender Sender, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Conn{
		id:        id,
		tenantID:  tenantID,
		principal: principal,
		groups:    groups,
		sender:    sender,
		out:       make(chan []byte, bufSize),
		done:      make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (c *Conn) ID() string { return c.id }

// TenantID returns the owning tenant.
func (c *Conn) TenantID() string { return c.tenantID }

// Principal returns the owning principal's name.
func (c *Conn) Principal() string { return c.principal }

// Groups returns the subscription groups the connection was registered under.
func (c *Conn) Groups() []string { return c.groups }

// enqueue offers a payload to the outbound queue without blocking.
// Returns false when the connection is closed or its queue is full.
func (c *Conn) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- payload:
		return true
	default:
		return false
	}
}

// close stops the writer goroutine and the transport. Idempotent.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.sender.Close()
	})
}

// writeLoop drains the outbound queue into the transport. It is the only
// caller of sender.Send, which gives per-connection delivery ordering.
// A send failure closes the connection; the registry drops it on the next
// unregister.
func (c *Conn) writeLoop(onFailure func(*Conn)) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.out:
			if err := c.sender.Send(payload); err != nil {
				c.close()
				if onFailure != nil {
					onFailure(c)
				}
				return
			}
		}
	}
}
