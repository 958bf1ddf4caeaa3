// File: protocol/reader.go
// Package protocol implements single-frame streaming payload input.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A FrameReader is the receive-side mirror of FrameWriter: bound to one
// decoded header, it delivers at most the declared payload length and
// lets the caller query the undelivered remainder to detect a frame
// larger than the buffer at hand — the capability this library exists
// to provide.

package protocol

import (
	"context"
	"fmt"
	"io"

	"github.com/momentics/streamws/api"
)

// FrameReader streams the payload of exactly one inbound frame.
// Created by Endpoint.RecvHeader. Not safe for concurrent use.
type FrameReader struct {
	transport api.Transport
	remaining int64
	key       *[4]byte
	maskPos   int
	disposed  bool
}

// NewFrameReader binds a reader to a declared payload length and the
// masking key decoded from the header. The role fixes the expected
// masking policy: server-role readers require a key, client-role
// readers require none; a mismatch is ErrMaskPolicyViolation.
func NewFrameReader(t api.Transport, payloadLen int64, key *[4]byte, role Role) (*FrameReader, error) {
	if payloadLen < 0 {
		return nil, fmt.Errorf("%w: negative payload length %d", api.ErrInvalidArgument, payloadLen)
	}
	if role.expectsMaskedInbound() != (key != nil) {
		return nil, fmt.Errorf("%w: %s role, masked=%t", ErrMaskPolicyViolation, role, key != nil)
	}
	return &FrameReader{transport: t, remaining: payloadLen, key: key}, nil
}

// Remaining returns how many payload bytes the frame still holds. It
// never depends on a pending read, so a caller can compare it against
// its buffer size before reading.
func (r *FrameReader) Remaining() int64 {
	return r.remaining
}

// Read fills p with up to the undelivered remainder of the frame. Once
// the declared length has been delivered it returns 0, io.EOF without
// touching the transport, regardless of len(p).
func (r *FrameReader) Read(p []byte) (int, error) {
	return r.read(context.Background(), p, false)
}

// ReadContext is Read with cooperative suspension and cancellation.
func (r *FrameReader) ReadContext(ctx context.Context, p []byte) (int, error) {
	return r.read(ctx, p, true)
}

func (r *FrameReader) read(ctx context.Context, p []byte, suspendable bool) (int, error) {
	if r.disposed {
		return 0, fmt.Errorf("frame reader: %w", api.ErrDisposed)
	}
	if r.remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}

	var (
		n   int
		err error
	)
	if suspendable {
		n, err = r.transport.ReadContext(ctx, p)
	} else {
		n, err = r.transport.Read(p)
	}
	if r.key != nil {
		r.maskPos = ApplyMask(p[:n], *r.key, r.maskPos)
	}
	r.remaining -= int64(n)
	if err == io.EOF && r.remaining > 0 {
		// The stream ended mid-frame; plain io.EOF is reserved for a
		// fully delivered payload.
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// Close releases the reader and wipes its key material. Idempotent.
// Undelivered payload bytes stay on the transport; skipping them is the
// caller's decision.
func (r *FrameReader) Close() error {
	if r.disposed {
		return nil
	}
	r.disposed = true
	zeroKey(r.key)
	r.key = nil
	return nil
}
