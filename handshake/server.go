// File: handshake/server.go
// Package handshake implements HTTP→WebSocket upgrade with strict
// validation, server side.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Upgrader validates the inbound Upgrade request, computes the
// Sec-WebSocket-Accept value, asks the host HTTP server to hand over
// the raw connection, and wraps it into a server-role Endpoint.

package handshake

import (
	"bufio"
	"fmt"
	"net/http"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/momentics/streamws/api"
	"github.com/momentics/streamws/protocol"
	"github.com/momentics/streamws/transport"
)

// Upgrader performs the server side of the WebSocket handshake. The
// zero value is usable.
type Upgrader struct {
	// Logger receives handshake debug events; nil means silent.
	Logger *zap.Logger

	// ResponseHeader is copied into the 101 response, e.g. a
	// Sec-WebSocket-Protocol pass-through chosen by the host.
	ResponseHeader http.Header
}

// Check validates r as a WebSocket upgrade request without committing
// to anything. Violations are structured api.Error values wrapping
// ErrMalformedHandshake, so errors.Is matches the sentinel and
// errors.As reaches the offending header values; the host maps them to
// HTTP 400.
func (u *Upgrader) Check(r *http.Request) error {
	malformed := func(message string) *api.Error {
		return api.WrapError(api.ErrCodeMalformedHandshake, ErrMalformedHandshake, message)
	}
	if r.Method != http.MethodGet {
		return malformed("handshake method must be GET").WithContext("method", r.Method)
	}
	if headersTooLarge(r.Header) {
		return malformed("handshake headers too large")
	}
	if !headerContainsToken(r.Header, HeaderUpgrade, "websocket") {
		return malformed("Upgrade header does not contain websocket").
			WithContext("upgrade", r.Header.Get(HeaderUpgrade))
	}
	if !headerContainsToken(r.Header, HeaderConnection, "Upgrade") {
		return malformed("Connection header does not contain Upgrade").
			WithContext("connection", r.Header.Get(HeaderConnection))
	}
	if v := r.Header.Get(HeaderSecWebSocketVer); v != RequiredWebSocketVersion {
		return malformed("unsupported Sec-WebSocket-Version").
			WithContext("version", v).
			WithContext("supported", RequiredWebSocketVersion)
	}
	keys := r.Header.Values(HeaderSecWebSocketKey)
	if len(keys) != 1 {
		return malformed("Sec-WebSocket-Key must appear exactly once").WithContext("count", len(keys))
	}
	if !validKey(keys[0]) {
		return malformed("Sec-WebSocket-Key does not decode to 16 bytes")
	}
	return nil
}

// Upgrade validates r, performs the protocol switch, and returns the
// server-role endpoint speaking over the raw connection. On a malformed
// request it responds 400 itself and returns ErrMalformedHandshake; on
// a host without hijack capability it responds 500.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*protocol.Endpoint, error) {
	log := u.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := u.Check(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "connection cannot be upgraded", http.StatusInternalServerError)
		return nil, fmt.Errorf("%w: response writer does not support hijacking", ErrMalformedHandshake)
	}
	conn, rw, err := hj.Hijack()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, fmt.Errorf("hijack connection: %w", err)
	}

	accept := ComputeAcceptKey(r.Header.Get(HeaderSecWebSocketKey))
	if err := writeAcceptResponse(rw, accept, u.ResponseHeader); err != nil {
		return nil, multierr.Append(fmt.Errorf("write handshake response: %w", err), conn.Close())
	}

	log.Debug("server handshake complete",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.String("path", r.URL.Path))

	// rw.Reader may hold frame bytes the client pipelined behind its
	// request; the transport must drain those before the socket.
	ep, err := protocol.NewEndpoint(
		transport.NewNetConnBuffered(rw.Reader, conn),
		protocol.RoleServer,
		protocol.WithLogger(log),
	)
	if err != nil {
		return nil, multierr.Append(err, conn.Close())
	}
	return ep, nil
}

// writeAcceptResponse serializes the 101 Switching Protocols response.
func writeAcceptResponse(rw *bufio.ReadWriter, accept string, extra http.Header) error {
	if _, err := fmt.Fprintf(rw, "HTTP/1.1 101 Switching Protocols\r\n"); err != nil {
		return err
	}
	hdr := make(http.Header)
	for k, vs := range extra {
		for _, v := range vs {
			hdr.Add(k, v)
		}
	}
	hdr.Set(HeaderUpgrade, "websocket")
	hdr.Set(HeaderConnection, "Upgrade")
	hdr.Set(HeaderSecWebSocketAccept, accept)
	for k, vs := range hdr {
		for _, v := range vs {
			if _, err := fmt.Fprintf(rw, "%s: %s\r\n", k, v); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprint(rw, "\r\n"); err != nil {
		return err
	}
	return rw.Flush()
}
