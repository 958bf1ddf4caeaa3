// File: protocol/role.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Role is the two-valued masking strategy from RFC 6455 section 5.3:
// the client masks everything it sends, the server masks nothing.

package protocol

import (
	"crypto/rand"
	"fmt"
)

// Role selects the masking-key policy of an Endpoint.
type Role int

const (
	// RoleClient masks outbound frames and requires unmasked inbound ones.
	RoleClient Role = iota
	// RoleServer sends unmasked frames and requires masked inbound ones.
	RoleServer
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r Role) expectsMaskedInbound() bool { return r == RoleServer }

// newMaskKey returns a fresh random key for an outbound frame, or nil
// when the role sends unmasked.
func (r Role) newMaskKey() (*[4]byte, error) {
	if r != RoleClient {
		return nil, nil
	}
	key := new([4]byte)
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("generate mask key: %w", err)
	}
	return key, nil
}

// zeroKey wipes key material once its frame is done. Best effort; the
// value is tiny and never pooled.
func zeroKey(key *[4]byte) {
	if key != nil {
		*key = [4]byte{}
	}
}
