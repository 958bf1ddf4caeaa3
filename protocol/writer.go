// File: protocol/writer.go
// Package protocol implements single-frame streaming payload output.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A FrameWriter is bound to one transmitted header: it carries the
// declared payload length, the frame's masking key if the role requires
// one, and the running mask offset. The payload never has to be
// materialized; callers push it in chunks of any size.

package protocol

import (
	"context"
	"fmt"

	"github.com/momentics/streamws/api"
	"github.com/momentics/streamws/pool"
)

// FrameWriter streams the payload of exactly one frame to the
// transport. It is created by Endpoint.SendHeader after the header went
// out. Writing exactly the declared length completes the frame; no
// finish call exists. A FrameWriter must not be used from multiple
// goroutines.
type FrameWriter struct {
	transport api.Transport
	remaining int64
	key       *[4]byte
	maskPos   int
	staging   *pool.BytePool
	disposed  bool
}

func newFrameWriter(t api.Transport, payloadLen int64, key *[4]byte, staging *pool.BytePool) *FrameWriter {
	if staging == nil {
		staging = pool.Default()
	}
	return &FrameWriter{
		transport: t,
		remaining: payloadLen,
		key:       key,
		staging:   staging,
	}
}

// Remaining returns how many payload bytes the frame still expects.
func (w *FrameWriter) Remaining() int64 {
	return w.remaining
}

// Write sends len(p) payload bytes, masking them first when the frame
// carries a key. Pushing the cumulative written total past the declared
// length fails with ErrPayloadOverflow before anything reaches the
// transport.
func (w *FrameWriter) Write(p []byte) (int, error) {
	return w.write(context.Background(), p, false)
}

// WriteContext is Write with cooperative suspension and cancellation.
// A cancelled partial write leaves the transport position
// indeterminate; the owning Endpoint must be torn down.
func (w *FrameWriter) WriteContext(ctx context.Context, p []byte) (int, error) {
	return w.write(ctx, p, true)
}

func (w *FrameWriter) write(ctx context.Context, p []byte, suspendable bool) (int, error) {
	if w.disposed {
		return 0, fmt.Errorf("frame writer: %w", api.ErrDisposed)
	}
	if int64(len(p)) > w.remaining {
		return 0, fmt.Errorf("%w: %d bytes offered, %d remaining", ErrPayloadOverflow, len(p), w.remaining)
	}

	if w.key == nil {
		n, err := w.send(ctx, p, suspendable)
		w.remaining -= int64(n)
		return n, err
	}

	// Masked path: the caller's buffer stays untouched, each chunk is
	// copied into a pooled staging buffer, masked at the running payload
	// offset and forwarded.
	buf := w.staging.GetBuffer()
	defer w.staging.PutBuffer(buf)

	total := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > len(buf) {
			chunk = chunk[:len(buf)]
		}
		copy(buf, chunk)
		masked := buf[:len(chunk)]
		w.maskPos = ApplyMask(masked, *w.key, w.maskPos)

		n, err := w.send(ctx, masked, suspendable)
		total += n
		w.remaining -= int64(n)
		if err != nil {
			return total, err
		}
		p = p[len(chunk):]
	}
	return total, nil
}

func (w *FrameWriter) send(ctx context.Context, p []byte, suspendable bool) (int, error) {
	if suspendable {
		return w.transport.WriteContext(ctx, p)
	}
	return w.transport.Write(p)
}

// Close releases the writer and wipes its key material. Idempotent.
// The transport stays open; it belongs to the Endpoint.
func (w *FrameWriter) Close() error {
	if w.disposed {
		return nil
	}
	w.disposed = true
	zeroKey(w.key)
	w.key = nil
	return nil
}
