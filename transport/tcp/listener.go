// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp provides a minimal TCP accept loop that runs the
// WebSocket handshake directly over the raw connection, without a host
// net/http server. Each accepted and upgraded connection is handed to
// the configured handler as a server-role Endpoint.
package tcp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/momentics/streamws/handshake"
	"github.com/momentics/streamws/protocol"
	"github.com/momentics/streamws/transport"
)

// handshakeDeadline bounds how long an accepted connection may take to
// complete its Upgrade exchange.
const handshakeDeadline = 5 * time.Second

// ListenerConfig holds configuration for the TCP listener.
type ListenerConfig struct {
	Addr        string                      // TCP address to bind (e.g., ":9001")
	NoDelay     bool                        // disable Nagle on accepted connections
	ConnHandler func(ep *protocol.Endpoint) // handler for upgraded connections
	Logger      *zap.Logger                 // optional; nil means silent
}

// Serve opens the listening socket, applies socket tuning, and runs the
// accept loop until ctx is cancelled. Each connection is upgraded in
// its own goroutine.
func Serve(ctx context.Context, cfg *ListenerConfig) error {
	if cfg == nil || cfg.ConnHandler == nil {
		return fmt.Errorf("tcp: config with ConnHandler required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	lc := net.ListenConfig{Control: listenControl}
	ln, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("tcp listen failed: %w", err)
	}
	defer ln.Close()
	log.Info("tcp listening", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("accept error", zap.Error(err))
			continue
		}
		if tc, ok := conn.(*net.TCPConn); ok && cfg.NoDelay {
			_ = tc.SetNoDelay(true)
		}
		go upgradeConn(conn, cfg.ConnHandler, log)
	}
}

// upgradeConn performs the RFC 6455 handshake over the raw connection.
// On any violation the connection is answered 400 and closed.
func upgradeConn(conn net.Conn, handler func(*protocol.Endpoint), log *zap.Logger) {
	_ = conn.SetDeadline(time.Now().Add(handshakeDeadline))
	br := bufio.NewReader(conn)

	req, err := http.ReadRequest(br)
	if err != nil {
		log.Debug("handshake read failed", zap.Error(err))
		conn.Close()
		return
	}

	var upg handshake.Upgrader
	if err := upg.Check(req); err != nil {
		log.Debug("handshake rejected", zap.Error(err))
		fmt.Fprint(conn, "HTTP/1.1 400 Bad Request\r\nContent-Length: 0\r\n\r\n")
		conn.Close()
		return
	}

	accept := handshake.ComputeAcceptKey(req.Header.Get(handshake.HeaderSecWebSocketKey))
	response := fmt.Sprintf("HTTP/1.1 101 Switching Protocols\r\n"+
		"Upgrade: websocket\r\n"+
		"Connection: Upgrade\r\n"+
		"Sec-WebSocket-Accept: %s\r\n\r\n", accept)
	if _, err := conn.Write([]byte(response)); err != nil {
		log.Debug("handshake write failed", zap.Error(multierr.Append(err, conn.Close())))
		return
	}
	_ = conn.SetDeadline(time.Time{})

	ep, err := protocol.NewEndpoint(
		transport.NewNetConnBuffered(br, conn),
		protocol.RoleServer,
		protocol.WithLogger(log),
	)
	if err != nil {
		log.Warn("endpoint setup failed", zap.Error(multierr.Append(err, conn.Close())))
		return
	}
	handler(ep)
}
