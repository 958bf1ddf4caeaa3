// File: handshake/headers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package handshake

import (
	"net/http"
	"strings"
)

// Header names and required values used for handshake processing.
const (
	HeaderConnection         = "Connection"
	HeaderUpgrade            = "Upgrade"
	HeaderSecWebSocketKey    = "Sec-WebSocket-Key"
	HeaderSecWebSocketVer    = "Sec-WebSocket-Version"
	HeaderSecWebSocketAccept = "Sec-WebSocket-Accept"
	RequiredWebSocketVersion = "13"

	// MaxHandshakeHeadersSize caps the combined handshake header length
	// to prevent abuse.
	MaxHandshakeHeadersSize = 8192
)

// headerContainsToken checks if headerName contains the given token
// (case-insensitive) in its comma-separated value list.
func headerContainsToken(h http.Header, headerName, token string) bool {
	vals := h[http.CanonicalHeaderKey(headerName)]
	token = strings.ToLower(token)
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if strings.ToLower(strings.TrimSpace(part)) == token {
				return true
			}
		}
	}
	return false
}

// headersTooLarge reports whether the combined header size exceeds
// MaxHandshakeHeadersSize.
func headersTooLarge(h http.Header) bool {
	total := 0
	for k, vs := range h {
		total += len(k)
		for _, v := range vs {
			total += len(v)
			if total > MaxHandshakeHeadersSize {
				return true
			}
		}
	}
	return false
}
