// File: transport/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-memory duplex transport. Deterministic and free of real sockets,
// which makes it the transport of choice for tests and local wiring
// demos. Inbound chunks are staged in a FIFO so writes never block on a
// slow reader.

package transport

import (
	"context"
	"io"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/streamws/api"
)

// Pipe is one end of an in-memory duplex byte stream. Both ends
// implement api.Transport.
type Pipe struct {
	mu       *sync.Mutex  // shared by both ends
	inbox    *queue.Queue // pending inbound chunks ([]byte)
	leftover []byte       // partially consumed head chunk
	notify   chan struct{}
	closed   bool
	peer     *Pipe
}

// NewPipe returns the two connected ends of an in-memory duplex stream.
func NewPipe() (*Pipe, *Pipe) {
	mu := new(sync.Mutex)
	a := &Pipe{mu: mu, inbox: queue.New(), notify: make(chan struct{})}
	b := &Pipe{mu: mu, inbox: queue.New(), notify: make(chan struct{})}
	a.peer = b
	b.peer = a
	return a, b
}

// Write queues a copy of p for the peer. It never blocks.
func (p *Pipe) Write(buf []byte) (int, error) {
	return p.WriteContext(context.Background(), buf)
}

// WriteContext is Write with a cancellation check.
func (p *Pipe) WriteContext(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.peer.closed {
		return 0, api.ErrTransportClosed
	}

	c := make([]byte, len(buf))
	copy(c, buf)
	p.peer.inbox.Add(c)
	p.peer.wakeLocked()
	return len(buf), nil
}

// Read delivers queued bytes, blocking while the pipe is empty and
// open. After either end closes, remaining bytes drain and then Read
// returns io.EOF.
func (p *Pipe) Read(buf []byte) (int, error) {
	return p.ReadContext(context.Background(), buf)
}

// ReadContext is Read with cooperative suspension and cancellation.
func (p *Pipe) ReadContext(ctx context.Context, buf []byte) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		p.mu.Lock()
		if n := p.takeLocked(buf); n > 0 {
			p.mu.Unlock()
			return n, nil
		}
		if p.closed || p.peer.closed {
			p.mu.Unlock()
			return 0, io.EOF
		}
		wait := p.notify
		p.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// takeLocked moves buffered bytes into buf. Caller holds p.mu.
func (p *Pipe) takeLocked(buf []byte) int {
	if len(p.leftover) == 0 && p.inbox.Length() > 0 {
		p.leftover = p.inbox.Remove().([]byte)
	}
	if len(p.leftover) == 0 {
		return 0
	}
	n := copy(buf, p.leftover)
	p.leftover = p.leftover[n:]
	return n
}

// wakeLocked wakes blocked readers of this end. Caller holds p.mu.
func (p *Pipe) wakeLocked() {
	close(p.notify)
	p.notify = make(chan struct{})
}

// Readable reports whether the inbound half is usable.
func (p *Pipe) Readable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Writable reports whether the outbound half is usable.
func (p *Pipe) Writable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Close shuts this end down and wakes both ends. Idempotent.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.wakeLocked()
	p.peer.wakeLocked()
	return nil
}

// CloseContext implements api.AsyncCloser.
func (p *Pipe) CloseContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Close()
}
