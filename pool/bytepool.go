// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pool provides reusable scratch buffers for the framing layer.
// Masking an outbound payload chunk needs a transient copy (the caller's
// buffer must not be mutated); pooling those copies keeps steady-state
// frame writes allocation-free.
package pool

import "sync"

// DefaultChunkSize is the staging buffer size handed out by the default
// pool. Larger writes are masked in chunks of this size.
const DefaultChunkSize = 4096

// BytePool hands out fixed-size byte buffers backed by sync.Pool.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool creates a pool of buffers of the given size.
func NewBytePool(size int) *BytePool {
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// Size returns the length of buffers this pool hands out.
func (b *BytePool) Size() int { return b.size }

// GetBuffer returns a buffer of exactly Size bytes.
func (b *BytePool) GetBuffer() []byte {
	return *b.p.Get().(*[]byte)
}

// PutBuffer returns a buffer to the pool. Buffers of the wrong size are
// dropped for the GC to collect.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.p.Put(&buf)
}

var (
	defaultOnce sync.Once
	defaultPool *BytePool
)

// Default returns the process-wide staging pool so all endpoints reuse
// the same buffers instead of fragmenting allocations.
func Default() *BytePool {
	defaultOnce.Do(func() {
		defaultPool = NewBytePool(DefaultChunkSize)
	})
	return defaultPool
}
