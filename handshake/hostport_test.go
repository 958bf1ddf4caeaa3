// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

package handshake

import (
	"net/url"
	"testing"
)

func TestHostPortDefaults(t *testing.T) {
	cases := []struct {
		rawURL string
		useTLS bool
		want   string
	}{
		{"ws://example.com/ws", false, "example.com:80"},
		{"wss://example.com/ws", true, "example.com:443"},
		{"ws://example.com:8080/ws", false, "example.com:8080"},
		{"ws://[::1]/ws", false, "[::1]:80"},
		{"wss://[::1]/ws", true, "[::1]:443"},
		{"ws://[::1]:9000/ws", false, "[::1]:9000"},
	}
	for _, c := range cases {
		u, err := url.Parse(c.rawURL)
		if err != nil {
			t.Fatalf("parse %q: %v", c.rawURL, err)
		}
		if got := hostPort(u, c.useTLS); got != c.want {
			t.Errorf("hostPort(%q) = %q, want %q", c.rawURL, got, c.want)
		}
	}
}
