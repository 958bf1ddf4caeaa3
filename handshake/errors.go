// Package handshake
// Author: momentics <momentics@gmail.com>
//
// Handshake error values. ErrMalformedHandshake covers peer rule
// violations on either side; RejectedError carries a non-101 response
// back to the caller for inspection.

package handshake

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedHandshake reports a peer that violated the Upgrade
// exchange rules. Servers map it to HTTP 400; clients treat it as fatal
// to the attempt. Never retried by this layer.
var ErrMalformedHandshake = errors.New("malformed handshake")

// RejectedError reports a server that answered the Upgrade request with
// a status other than 101. Response stays open for inspection; the
// caller owns closing its body.
type RejectedError struct {
	Response *http.Response
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("handshake rejected: status %d", e.Response.StatusCode)
}
