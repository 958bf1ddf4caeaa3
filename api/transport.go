// File: api/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the ordered duplex byte-stream abstraction the framing core
// runs on. Implementations may be a TCP socket, a TLS stream, the raw
// connection left over after an HTTP Upgrade, or an in-memory pipe.

package api

import "context"

// Transport is an ordered, reliable, bidirectional byte stream.
//
// Read and Write follow io.Reader/io.Writer semantics: Read returns
// io.EOF at end-of-stream, Write returns a non-nil error when fewer
// than len(p) bytes were accepted. The context variants carry the same
// semantics but suspend cooperatively and honor cancellation; a
// cancelled partial write leaves the stream position indeterminate, so
// the owning endpoint must be torn down afterwards.
type Transport interface {
	// Read reads into a preallocated buffer.
	Read(p []byte) (n int, err error)

	// Write writes buffer contents into the connection.
	Write(p []byte) (n int, err error)

	// ReadContext is Read with cooperative suspension and cancellation.
	ReadContext(ctx context.Context, p []byte) (n int, err error)

	// WriteContext is Write with cooperative suspension and cancellation.
	WriteContext(ctx context.Context, p []byte) (n int, err error)

	// Readable reports whether the inbound half of the stream is usable.
	Readable() bool

	// Writable reports whether the outbound half of the stream is usable.
	Writable() bool

	// Close shuts down the connection and notifies upstream layers.
	Close() error
}

// AsyncCloser is implemented by transports whose shutdown can itself
// suspend. Endpoints prefer it over Close when present.
type AsyncCloser interface {
	CloseContext(ctx context.Context) error
}
