// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

package handshake_test

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/momentics/streamws/api"
	"github.com/momentics/streamws/handshake"
)

func upgradeRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("Sec-WebSocket-Version", "13")
	return req
}

func TestCheckAcceptsValidRequest(t *testing.T) {
	var upg handshake.Upgrader
	if err := upg.Check(upgradeRequest()); err != nil {
		t.Errorf("Check = %v, want nil", err)
	}
}

func TestCheckRejectsViolations(t *testing.T) {
	shortKey := base64.StdEncoding.EncodeToString(make([]byte, 15))

	cases := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"non-GET method", func(r *http.Request) { r.Method = http.MethodPost }},
		{"missing Upgrade", func(r *http.Request) { r.Header.Del("Upgrade") }},
		{"wrong Upgrade token", func(r *http.Request) { r.Header.Set("Upgrade", "h2c") }},
		{"version 12", func(r *http.Request) { r.Header.Set("Sec-WebSocket-Version", "12") }},
		{"missing key", func(r *http.Request) { r.Header.Del("Sec-WebSocket-Key") }},
		{"15-byte key", func(r *http.Request) { r.Header.Set("Sec-WebSocket-Key", shortKey) }},
		{"key not base64", func(r *http.Request) { r.Header.Set("Sec-WebSocket-Key", "not base64!") }},
		{"duplicate key", func(r *http.Request) { r.Header.Add("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==") }},
	}

	var upg handshake.Upgrader
	for _, c := range cases {
		req := upgradeRequest()
		c.mutate(req)
		if err := upg.Check(req); !errors.Is(err, handshake.ErrMalformedHandshake) {
			t.Errorf("%s: Check = %v, want ErrMalformedHandshake", c.name, err)
		}
	}
}

func TestCheckViolationCarriesStructuredDetail(t *testing.T) {
	var upg handshake.Upgrader
	req := upgradeRequest()
	req.Header.Set("Sec-WebSocket-Version", "12")

	err := upg.Check(req)
	if !errors.Is(err, handshake.ErrMalformedHandshake) {
		t.Fatalf("Check = %v, want ErrMalformedHandshake", err)
	}
	var detail *api.Error
	if !errors.As(err, &detail) {
		t.Fatalf("Check error %T does not expose *api.Error", err)
	}
	if detail.Code != api.ErrCodeMalformedHandshake {
		t.Errorf("Code = %d, want ErrCodeMalformedHandshake", detail.Code)
	}
	if got := detail.Context["version"]; got != "12" {
		t.Errorf("Context[version] = %v, want %q", got, "12")
	}
}

func TestUpgradeRespondsBadRequestOnViolation(t *testing.T) {
	var upg handshake.Upgrader
	req := upgradeRequest()
	req.Header.Set("Sec-WebSocket-Version", "12")

	w := httptest.NewRecorder()
	if _, err := upg.Upgrade(w, req); !errors.Is(err, handshake.ErrMalformedHandshake) {
		t.Fatalf("Upgrade = %v, want ErrMalformedHandshake", err)
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("response status = %d, want 400", w.Code)
	}
}

func TestUpgradeRequiresHijacker(t *testing.T) {
	var upg handshake.Upgrader
	// httptest.ResponseRecorder does not implement http.Hijacker.
	w := httptest.NewRecorder()
	if _, err := upg.Upgrade(w, upgradeRequest()); !errors.Is(err, handshake.ErrMalformedHandshake) {
		t.Fatalf("Upgrade without hijacker = %v, want ErrMalformedHandshake", err)
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("response status = %d, want 500", w.Code)
	}
}
