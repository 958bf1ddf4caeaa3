// File: protocol/mask.go
// Package protocol implements the RFC 6455 payload masking transform.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// ApplyMask XORs p in place with key, starting at running payload
// offset pos, and returns the offset after the transform. The transform
// is its own inverse and total for any buffer length, including zero.
//
// Callers masking one frame across several calls must thread the
// returned offset back in; resetting it per call would realign the key
// and corrupt the stream.
func ApplyMask(p []byte, key [4]byte, pos int) int {
	for i := range p {
		p[i] ^= key[(pos+i)&3]
	}
	return pos + len(p)
}
