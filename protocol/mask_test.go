// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

package protocol_test

import (
	"bytes"
	"testing"

	"github.com/momentics/streamws/protocol"
)

func TestApplyMaskSelfInverse(t *testing.T) {
	key := [4]byte{0x12, 0x34, 0x56, 0x78}
	original := []byte("the quick brown fox jumps over the lazy dog")

	data := append([]byte(nil), original...)
	protocol.ApplyMask(data, key, 0)
	if bytes.Equal(data, original) {
		t.Fatal("masking left the buffer unchanged")
	}
	protocol.ApplyMask(data, key, 0)
	if !bytes.Equal(data, original) {
		t.Errorf("double mask: got %q, want %q", data, original)
	}
}

func TestApplyMaskOffsetContinuity(t *testing.T) {
	key := [4]byte{0xA1, 0xB2, 0xC3, 0xD4}
	payload := []byte("payload masked across several calls")

	whole := append([]byte(nil), payload...)
	protocol.ApplyMask(whole, key, 0)

	// Same payload, masked in uneven chunks with the offset threaded
	// through, must produce identical bytes.
	chunked := append([]byte(nil), payload...)
	pos := 0
	for off := 0; off < len(chunked); {
		end := off + 1 + off%5 // uneven chunk sizes
		if end > len(chunked) {
			end = len(chunked)
		}
		pos = protocol.ApplyMask(chunked[off:end], key, pos)
		off = end
	}

	if !bytes.Equal(chunked, whole) {
		t.Errorf("chunked masking diverged:\n got %v\nwant %v", chunked, whole)
	}
	if pos != len(payload) {
		t.Errorf("final offset = %d, want %d", pos, len(payload))
	}
}

func TestApplyMaskEmptyBuffer(t *testing.T) {
	key := [4]byte{1, 2, 3, 4}
	if pos := protocol.ApplyMask(nil, key, 7); pos != 7 {
		t.Errorf("ApplyMask(nil) offset = %d, want 7", pos)
	}
}
