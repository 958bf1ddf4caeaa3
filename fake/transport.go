// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for api.Transport.

package fake

import (
	"context"
	"io"
	"sync"

	"github.com/momentics/streamws/api"
)

// Transport is a scripted api.Transport for tests: reads consume bytes
// queued with AddRecvData, writes accumulate into an inspectable
// buffer, and any operation can be forced to fail.
type Transport struct {
	mu         sync.Mutex
	recvBuffer []byte
	sendBuffer []byte
	closed     bool
	readable   bool
	writable   bool
	sendError  error
	recvError  error
	closeError error
	shortRead  int // when > 0, cap each Read at this many bytes
}

// NewTransport creates a new fake transport, duplex by default.
func NewTransport() *Transport {
	return &Transport{readable: true, writable: true}
}

// NewHalfOpenTransport creates a fake transport with explicit half
// states, for exercising duplex validation.
func NewHalfOpenTransport(readable, writable bool) *Transport {
	return &Transport{readable: readable, writable: writable}
}

// Read implements api.Transport.
func (t *Transport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, api.ErrTransportClosed
	}
	if t.recvError != nil {
		return 0, t.recvError
	}
	if len(t.recvBuffer) == 0 {
		// Scripted transport never blocks; an empty script reads as
		// end-of-stream.
		return 0, io.EOF
	}
	limit := len(p)
	if t.shortRead > 0 && limit > t.shortRead {
		limit = t.shortRead
	}
	n := copy(p[:limit], t.recvBuffer)
	t.recvBuffer = t.recvBuffer[n:]
	return n, nil
}

// Write implements api.Transport.
func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, api.ErrTransportClosed
	}
	if t.sendError != nil {
		return 0, t.sendError
	}
	t.sendBuffer = append(t.sendBuffer, p...)
	return len(p), nil
}

// ReadContext implements api.Transport.
func (t *Transport) ReadContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return t.Read(p)
}

// WriteContext implements api.Transport.
func (t *Transport) WriteContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return t.Write(p)
}

// Readable implements api.Transport.
func (t *Transport) Readable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readable && !t.closed
}

// Writable implements api.Transport.
func (t *Transport) Writable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writable && !t.closed
}

// Close implements api.Transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closeError != nil {
		return t.closeError
	}
	t.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// SetSendError configures the transport to return an error on Write.
func (t *Transport) SetSendError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendError = err
}

// SetRecvError configures the transport to return an error on Read.
func (t *Transport) SetRecvError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recvError = err
}

// SetCloseError configures the transport to return an error on Close.
func (t *Transport) SetCloseError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeError = err
}

// SetShortRead caps each Read at n bytes to exercise partial-read
// handling.
func (t *Transport) SetShortRead(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shortRead = n
}

// AddRecvData appends data to be returned by subsequent Reads.
func (t *Transport) AddRecvData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recvBuffer = append(t.recvBuffer, data...)
}

// SentData returns a copy of everything written so far.
func (t *Transport) SentData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	sent := make([]byte, len(t.sendBuffer))
	copy(sent, t.sendBuffer)
	return sent
}

// ClearSentData clears the internal send buffer.
func (t *Transport) ClearSentData() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendBuffer = t.sendBuffer[:0]
}
