// File: handshake/client.go
// Package handshake implements the client side of the HTTP Upgrade
// exchange from RFC 6455 section 4.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dialer builds and sends the GET Upgrade request, validates the 101
// response, and wraps the raw connection left under it into a
// client-role Endpoint.

package handshake

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/momentics/streamws/api"
	"github.com/momentics/streamws/protocol"
	"github.com/momentics/streamws/transport"
)

// Dialer holds the client settings for establishing a WebSocket
// connection. The zero value is usable.
type Dialer struct {
	// HandshakeTimeout bounds the whole exchange, zero means no limit
	// beyond the caller's context.
	HandshakeTimeout time.Duration

	// TLSConfig is cloned for wss targets.
	TLSConfig *tls.Config

	// Logger receives handshake debug events; nil means silent.
	Logger *zap.Logger

	// NetDialer overrides the TCP dialer, e.g. for test listeners.
	NetDialer *net.Dialer
}

// Dial establishes a WebSocket connection to urlStr (ws or wss scheme)
// and returns the client-role endpoint speaking over it.
func (d *Dialer) Dial(ctx context.Context, urlStr string) (*protocol.Endpoint, error) {
	req, err := http.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrInvalidArgument, err)
	}
	return d.DialRequest(ctx, req)
}

// DialRequest establishes a WebSocket connection using a caller-built
// request, so custom headers (cookies, auth, subprotocol offers passed
// through verbatim) survive. The request must be a GET to a ws or wss
// URL. A request already carrying exactly one Sec-WebSocket-Key keeps
// it; carrying more than one is ErrInvalidArgument.
func (d *Dialer) DialRequest(ctx context.Context, req *http.Request) (*protocol.Endpoint, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if req.Method != http.MethodGet {
		return nil, fmt.Errorf("%w: handshake request must be GET, got %s", api.ErrInvalidArgument, req.Method)
	}

	var useTLS bool
	switch req.URL.Scheme {
	case "ws", "http":
		useTLS = false
	case "wss", "https":
		useTLS = true
	default:
		return nil, fmt.Errorf("%w: bad url scheme %q (must be ws or wss)", api.ErrInvalidArgument, req.URL.Scheme)
	}

	key, err := d.prepareRequest(req)
	if err != nil {
		return nil, err
	}

	if d.HandshakeTimeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.HandshakeTimeout)
		defer cancel()
	}

	conn, err := d.dialNet(ctx, req.URL, useTLS)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// The request-line wants the origin-form path; net/http rejects a
	// populated RequestURI on client writes.
	req.RequestURI = ""
	if err := req.Write(conn); err != nil {
		return nil, multierr.Append(fmt.Errorf("handshake write request: %w", err), conn.Close())
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("handshake read response: %w", err), conn.Close())
	}

	if err := validateResponse(resp, key); err != nil {
		if _, rejected := err.(*RejectedError); rejected {
			// Caller owns the response; closing its body releases the
			// connection under it.
			resp.Body = &rejectedBody{ReadCloser: resp.Body, conn: conn}
			return nil, err
		}
		resp.Body.Close()
		return nil, multierr.Append(err, conn.Close())
	}

	_ = conn.SetDeadline(time.Time{})
	log.Debug("client handshake complete", zap.String("host", req.URL.Host))

	// The bufio reader may hold bytes the server sent right after its
	// 101; the transport must drain those before the socket.
	return protocol.NewEndpoint(
		transport.NewNetConnBuffered(br, conn),
		protocol.RoleClient,
		protocol.WithLogger(log),
	)
}

// prepareRequest fills in the fixed Upgrade headers and returns the
// handshake key in use.
func (d *Dialer) prepareRequest(req *http.Request) (string, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	keys := req.Header.Values("Sec-WebSocket-Key")
	if len(keys) > 1 {
		return "", fmt.Errorf("%w: request carries %d Sec-WebSocket-Key headers", api.ErrInvalidArgument, len(keys))
	}
	var key string
	if len(keys) == 1 {
		key = keys[0]
	} else {
		var err error
		if key, err = GenerateKey(); err != nil {
			return "", err
		}
		req.Header.Set("Sec-WebSocket-Key", key)
	}

	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", RequiredWebSocketVersion)
	return key, nil
}

func (d *Dialer) dialNet(ctx context.Context, u *url.URL, useTLS bool) (net.Conn, error) {
	nd := d.NetDialer
	if nd == nil {
		nd = &net.Dialer{}
	}
	conn, err := nd.DialContext(ctx, "tcp", hostPort(u, useTLS))
	if err != nil {
		return nil, err
	}
	if !useTLS {
		return conn, nil
	}

	cfg := d.TLSConfig.Clone()
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = u.Hostname()
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, multierr.Append(err, conn.Close())
	}
	return tlsConn, nil
}

// validateResponse enforces RFC 6455 section 4.1 on the server's
// answer. A non-101 status is RejectedError; every other violation is
// ErrMalformedHandshake.
func validateResponse(resp *http.Response, key string) error {
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return &RejectedError{Response: resp}
	}
	if !headerContainsToken(resp.Header, "Connection", "Upgrade") {
		return fmt.Errorf("%w: Connection header does not contain Upgrade", ErrMalformedHandshake)
	}
	if !strings.EqualFold(strings.TrimSpace(resp.Header.Get("Upgrade")), "websocket") {
		return fmt.Errorf("%w: Upgrade header is not websocket", ErrMalformedHandshake)
	}
	accepts := resp.Header.Values("Sec-WebSocket-Accept")
	if len(accepts) != 1 {
		return fmt.Errorf("%w: Sec-WebSocket-Accept appears %d times, want exactly one", ErrMalformedHandshake, len(accepts))
	}
	if accepts[0] != ComputeAcceptKey(key) {
		return fmt.Errorf("%w: Sec-WebSocket-Accept mismatch", ErrMalformedHandshake)
	}
	// This client never offers extensions or subprotocols, so the
	// server agreeing to one proves it answered someone else's request.
	if resp.Header.Get("Sec-WebSocket-Extensions") != "" {
		return fmt.Errorf("%w: unrequested Sec-WebSocket-Extensions in response", ErrMalformedHandshake)
	}
	if resp.Header.Get("Sec-WebSocket-Protocol") != "" {
		return fmt.Errorf("%w: unrequested Sec-WebSocket-Protocol in response", ErrMalformedHandshake)
	}
	return nil
}

// rejectedBody ties the raw connection's lifetime to the diagnostic
// response handed back with RejectedError.
type rejectedBody struct {
	io.ReadCloser
	conn net.Conn
}

func (b *rejectedBody) Close() error {
	return multierr.Append(b.ReadCloser.Close(), b.conn.Close())
}

// hostPort resolves the dial address, supplying the scheme's default
// port. u.Port is empty for a bare host and for a bracketed IPv6
// literal without a port.
func hostPort(u *url.URL, useTLS bool) string {
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if useTLS {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
