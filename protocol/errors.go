// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Protocol-level error values. All of them are fatal to the endpoint
// that observed them; this layer reports and leaves close-frame policy
// to the caller.

package protocol

import "errors"

var (
	// ErrMalformedFrame reports a peer frame-encoding violation: a
	// non-minimal payload length, a 64-bit length with the top bit set,
	// or a header shorter than its declared width.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrPayloadOverflow reports cumulative writes exceeding the length
	// the frame header declared.
	ErrPayloadOverflow = errors.New("payload exceeds declared frame length")

	// ErrMaskPolicyViolation reports a masked frame where none was
	// expected, or an unmasked frame where the role requires masking.
	ErrMaskPolicyViolation = errors.New("frame masking violates role policy")
)
