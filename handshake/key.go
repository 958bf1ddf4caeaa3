// File: handshake/key.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package handshake

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
)

// WebSocketGUID is the fixed GUID from RFC 6455 section 1.3, appended
// to the client key before hashing.
const WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// keyNonceLen is the decoded length a Sec-WebSocket-Key must have.
const keyNonceLen = 16

// ComputeAcceptKey computes the Sec-WebSocket-Accept value proving the
// server read the client's handshake key.
func ComputeAcceptKey(clientKey string) string {
	hash := sha1.Sum([]byte(clientKey + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// GenerateKey returns a fresh Sec-WebSocket-Key: base64 of 16 random
// bytes, one per connection attempt.
func GenerateKey() (string, error) {
	nonce := make([]byte, keyNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate handshake key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(nonce), nil
}

// validKey reports whether key base64-decodes to exactly 16 bytes.
func validKey(key string) bool {
	nonce, err := base64.StdEncoding.DecodeString(key)
	return err == nil && len(nonce) == keyNonceLen
}
