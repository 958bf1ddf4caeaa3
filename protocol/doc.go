// File: protocol/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package protocol implements RFC 6455 framing with explicit control
// over frame boundaries and payload streaming.
//
// Unlike message-oriented WebSocket APIs, nothing here buffers a whole
// frame. A caller sends a header declaring the payload length, then
// streams the payload through the returned FrameWriter in chunks of any
// size; receiving mirrors this with FrameReader, whose Remaining method
// distinguishes "frame larger than my buffer" from "frame fits" before
// a single payload byte is pulled.
//
// The package is transport-agnostic: everything runs over api.Transport,
// and every operation has a blocking and a context-suspendable variant
// with identical semantics.
package protocol
