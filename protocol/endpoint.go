// File: protocol/endpoint.go
// Package protocol implements one side of an established connection.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Endpoint owns the transport for its whole lifetime, serializes
// outgoing frame headers, decodes incoming ones, and hands out the
// bound FrameWriter/FrameReader pair for payload streaming. It does no
// message reassembly and no automatic close-frame handling; both are
// layered above.

package protocol

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/streamws/api"
	"github.com/momentics/streamws/pool"
)

// Endpoint is one side of an established WebSocket connection. State is
// Open until Close; Closed is terminal and irreversible. SendHeader
// calls are internally serialized so two headers can never interleave;
// payload writers must still be driven one at a time per direction.
type Endpoint struct {
	transport api.Transport
	role      Role
	staging   *pool.BytePool
	log       *zap.Logger

	sendMu sync.Mutex
	recvMu sync.Mutex
	closed int32
}

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithLogger attaches a structured logger. The default is a nop logger,
// so the library stays silent unless wired into the host's logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Endpoint) {
		if l != nil {
			e.log = l
		}
	}
}

// WithStagingPool overrides the mask staging pool shared by this
// endpoint's writers.
func WithStagingPool(p *pool.BytePool) Option {
	return func(e *Endpoint) {
		if p != nil {
			e.staging = p
		}
	}
}

// NewEndpoint wraps a transport. The transport must be duplex: a
// read-only or write-only stream is rejected with ErrInvalidArgument.
// The endpoint owns the transport exclusively from here on.
func NewEndpoint(t api.Transport, role Role, opts ...Option) (*Endpoint, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transport", api.ErrInvalidArgument)
	}
	if !t.Readable() || !t.Writable() {
		return nil, fmt.Errorf("%w: transport must be readable and writable", api.ErrInvalidArgument)
	}
	e := &Endpoint{
		transport: t,
		role:      role,
		staging:   pool.Default(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Role returns the masking-policy side this endpoint plays.
func (e *Endpoint) Role() Role { return e.role }

// Transport provides access to the underlying transport, e.g. to set
// I/O deadlines. Reading or writing it directly breaks framing.
func (e *Endpoint) Transport() api.Transport { return e.transport }

// SendHeader transmits a frame header declaring payloadLen payload
// bytes and returns the writer bound to it. Client-role endpoints
// attach a fresh random masking key, server-role endpoints none. The
// header goes out as one unit relative to other SendHeader calls on
// this endpoint.
func (e *Endpoint) SendHeader(h FrameHeader, payloadLen int64) (*FrameWriter, error) {
	return e.sendHeader(context.Background(), h, payloadLen, false)
}

// SendHeaderContext is SendHeader with cooperative suspension. A
// cancelled partial header write leaves the transport position
// indeterminate; tear the endpoint down afterwards.
func (e *Endpoint) SendHeaderContext(ctx context.Context, h FrameHeader, payloadLen int64) (*FrameWriter, error) {
	return e.sendHeader(ctx, h, payloadLen, true)
}

func (e *Endpoint) sendHeader(ctx context.Context, h FrameHeader, payloadLen int64, suspendable bool) (*FrameWriter, error) {
	if atomic.LoadInt32(&e.closed) == 1 {
		return nil, fmt.Errorf("endpoint: %w", api.ErrDisposed)
	}
	if payloadLen < 0 {
		return nil, fmt.Errorf("%w: negative payload length %d", api.ErrInvalidArgument, payloadLen)
	}

	key, err := e.role.newMaskKey()
	if err != nil {
		return nil, err
	}
	buf, err := EncodeHeader(h, payloadLen, key)
	if err != nil {
		zeroKey(key)
		return nil, err
	}

	e.sendMu.Lock()
	err = e.writeFull(ctx, buf, suspendable)
	e.sendMu.Unlock()
	if err != nil {
		zeroKey(key)
		return nil, err
	}

	e.log.Debug("frame header sent",
		zap.String("opcode", fmt.Sprintf("%#x", byte(h.Opcode()))),
		zap.Int64("payload_len", payloadLen),
		zap.Bool("masked", key != nil))
	return newFrameWriter(e.transport, payloadLen, key, e.staging), nil
}

// RecvHeader reads and decodes the next frame header from the transport
// and returns it with the reader bound to its payload. Inbound masking
// must match the role: a server endpoint requires masked frames, a
// client endpoint unmasked ones. Any set RSV bit is rejected as
// ErrMalformedFrame since no extension is ever negotiated here.
func (e *Endpoint) RecvHeader() (FrameHeader, *FrameReader, error) {
	return e.recvHeader(context.Background(), false)
}

// RecvHeaderContext is RecvHeader with cooperative suspension.
func (e *Endpoint) RecvHeaderContext(ctx context.Context) (FrameHeader, *FrameReader, error) {
	return e.recvHeader(ctx, true)
}

func (e *Endpoint) recvHeader(ctx context.Context, suspendable bool) (FrameHeader, *FrameReader, error) {
	if atomic.LoadInt32(&e.closed) == 1 {
		return FrameHeader{}, nil, fmt.Errorf("endpoint: %w", api.ErrDisposed)
	}

	e.recvMu.Lock()
	defer e.recvMu.Unlock()

	var buf [MaxFrameHeaderLen]byte
	if err := e.readFull(ctx, buf[:MinFrameHeaderLen], suspendable); err != nil {
		return FrameHeader{}, nil, err
	}
	tail := headerTailLen(buf[1])
	if err := e.readFull(ctx, buf[MinFrameHeaderLen:MinFrameHeaderLen+tail], suspendable); err != nil {
		return FrameHeader{}, nil, err
	}

	h, payloadLen, key, _, err := DecodeHeader(buf[:MinFrameHeaderLen+tail])
	if err != nil {
		return FrameHeader{}, nil, err
	}
	if h.anyRsv() {
		return FrameHeader{}, nil, fmt.Errorf("%w: reserved bit set without negotiated extension", ErrMalformedFrame)
	}
	r, err := NewFrameReader(e.transport, payloadLen, key, e.role)
	if err != nil {
		return FrameHeader{}, nil, err
	}

	e.log.Debug("frame header received",
		zap.String("opcode", fmt.Sprintf("%#x", byte(h.Opcode()))),
		zap.Int64("payload_len", payloadLen),
		zap.Bool("masked", key != nil))
	return h, r, nil
}

func (e *Endpoint) writeFull(ctx context.Context, p []byte, suspendable bool) error {
	for len(p) > 0 {
		var (
			n   int
			err error
		)
		if suspendable {
			n, err = e.transport.WriteContext(ctx, p)
		} else {
			n, err = e.transport.Write(p)
		}
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (e *Endpoint) readFull(ctx context.Context, p []byte, suspendable bool) error {
	for len(p) > 0 {
		var (
			n   int
			err error
		)
		if suspendable {
			n, err = e.transport.ReadContext(ctx, p)
		} else {
			n, err = e.transport.Read(p)
		}
		p = p[n:]
		if len(p) == 0 {
			return nil
		}
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// Close releases the transport exactly once. Repeat calls are no-ops.
func (e *Endpoint) Close() error {
	if !atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		return nil
	}
	e.log.Debug("endpoint closed", zap.String("role", e.role.String()))
	return e.transport.Close()
}

// CloseContext is Close for asynchronous teardown paths. It prefers the
// transport's suspendable shutdown when the transport offers one.
func (e *Endpoint) CloseContext(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		return nil
	}
	e.log.Debug("endpoint closed", zap.String("role", e.role.String()))
	if ac, ok := e.transport.(api.AsyncCloser); ok {
		return ac.CloseContext(ctx)
	}
	return e.transport.Close()
}
