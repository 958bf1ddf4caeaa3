// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

package handshake_test

import (
	"encoding/base64"
	"testing"

	"github.com/momentics/streamws/handshake"
)

func TestComputeAcceptKeyRFCExample(t *testing.T) {
	// The worked example from RFC 6455 section 1.3.
	got := handshake.ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Errorf("ComputeAcceptKey = %q, want %q", got, want)
	}
}

func TestGenerateKeyShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		key, err := handshake.GenerateKey()
		if err != nil {
			t.Fatalf("GenerateKey failed: %v", err)
		}
		nonce, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			t.Fatalf("key %q is not valid base64: %v", key, err)
		}
		if len(nonce) != 16 {
			t.Fatalf("key decodes to %d bytes, want 16", len(nonce))
		}
		if seen[key] {
			t.Fatalf("key %q repeated", key)
		}
		seen[key] = true
	}
}
