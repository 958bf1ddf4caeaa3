// File: transport/netconn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package transport provides api.Transport implementations: NetConn
// over a net.Conn (optionally fronted by a bufio.Reader holding
// handshake leftovers) and an in-memory Pipe for tests and examples.
package transport

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// NetConn adapts a net.Conn to api.Transport. The context-suspendable
// variants are implemented with deadlines: cancelling the context
// interrupts the blocked call.
type NetConn struct {
	conn   net.Conn
	reader io.Reader
	closed int32
}

// NewNetConn wraps an established net.Conn.
func NewNetConn(conn net.Conn) *NetConn {
	return &NetConn{conn: conn, reader: conn}
}

// NewNetConnBuffered wraps a net.Conn whose read side is fronted by a
// bufio.Reader that may already hold bytes, as left behind by an HTTP
// Upgrade exchange. Buffered bytes are drained before the socket.
func NewNetConnBuffered(br *bufio.Reader, conn net.Conn) *NetConn {
	return &NetConn{conn: conn, reader: br}
}

// Read reads into a preallocated buffer.
func (n *NetConn) Read(p []byte) (int, error) {
	return n.reader.Read(p)
}

// Write writes buffer contents into the connection.
func (n *NetConn) Write(p []byte) (int, error) {
	return n.conn.Write(p)
}

// ReadContext is Read interruptible by ctx via the read deadline.
func (n *NetConn) ReadContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = n.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	read, err := n.reader.Read(p)
	if err != nil && ctx.Err() != nil {
		_ = n.conn.SetReadDeadline(time.Time{})
		return read, ctx.Err()
	}
	return read, err
}

// WriteContext is Write interruptible by ctx via the write deadline.
func (n *NetConn) WriteContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = n.conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	written, err := n.conn.Write(p)
	if err != nil && ctx.Err() != nil {
		_ = n.conn.SetWriteDeadline(time.Time{})
		return written, ctx.Err()
	}
	return written, err
}

// Readable reports whether the inbound half is usable.
func (n *NetConn) Readable() bool {
	return atomic.LoadInt32(&n.closed) == 0
}

// Writable reports whether the outbound half is usable.
func (n *NetConn) Writable() bool {
	return atomic.LoadInt32(&n.closed) == 0
}

// Close shuts down the connection. Idempotent.
func (n *NetConn) Close() error {
	if !atomic.CompareAndSwapInt32(&n.closed, 0, 1) {
		return nil
	}
	return n.conn.Close()
}

// CloseContext implements api.AsyncCloser. Closing a socket does not
// block, so this delegates to Close after a cancellation check.
func (n *NetConn) CloseContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.Close()
}
