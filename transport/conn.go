// Package transport provides the byte-stream connections a session runs on.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

var (
	ErrNotOpen = errors.New("transport: connection is not open")
	ErrClosed  = errors.New("transport: connection is closed")
)

// OpenFunc establishes the underlying stream.
type OpenFunc func(ctx context.Context) (io.ReadWriteCloser, error)

// Conn wraps a stream with an open/close lifecycle. Open and Close are
// idempotent; a closed Conn cannot be reopened.
type Conn struct {
	open OpenFunc

	mu     sync.Mutex
	rwc    io.ReadWriteCloser
	closed bool
}

var _ io.ReadWriteCloser = (*Conn)(nil)

func NewConn(open OpenFunc) *Conn {
	return &Conn{open: open}
}

// Open establishes the stream unless it is already open.
func (c *Conn) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.rwc != nil {
		return nil
	}
	if c.open == nil {
		return ErrNotOpen
	}
	rwc, err := c.open(ctx)
	if err != nil {
		return err
	}
	c.rwc = rwc
	return nil
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rwc != nil && !c.closed
}

func (c *Conn) stream() (io.ReadWriteCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return nil, ErrClosed
	case c.rwc == nil:
		return nil, ErrNotOpen
	}
	return c.rwc, nil
}

func (c *Conn) Read(p []byte) (int, error) {
	rwc, err := c.stream()
	if err != nil {
		return 0, err
	}
	return rwc.Read(p)
}

func (c *Conn) Write(p []byte) (int, error) {
	rwc, err := c.stream()
	if err != nil {
		return 0, err
	}
	return rwc.Write(p)
}

// Close closes the stream if it was opened. Later calls return nil.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.rwc == nil {
		return nil
	}
	return c.rwc.Close()
}

// Dialer opens TCP or unix stream connections.
type Dialer struct {
	Network   string // "tcp" when empty
	Address   string
	Timeout   time.Duration
	KeepAlive time.Duration
}

// Conn returns an unopened Conn that dials d on Open.
func (d Dialer) Conn() *Conn {
	return NewConn(func(ctx context.Context) (io.ReadWriteCloser, error) {
		network := d.Network
		if network == "" {
			network = "tcp"
		}
		nd := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
		return nd.DialContext(ctx, network, d.Address)
	})
}

// Dial returns an opened Conn.
func (d Dialer) Dial(ctx context.Context) (*Conn, error) {
	c := d.Conn()
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Pipe returns two opened Conns joined in memory. Writes block until the
// other side reads.
func Pipe() (*Conn, *Conn) {
	a, b := net.Pipe()
	return opened(a), opened(b)
}

func opened(rwc io.ReadWriteCloser) *Conn {
	return &Conn{rwc: rwc}
}
