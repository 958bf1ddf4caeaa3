// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

package protocol_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/momentics/streamws/api"
	"github.com/momentics/streamws/fake"
	"github.com/momentics/streamws/protocol"
)

func newEndpoint(t *testing.T, tr api.Transport, role protocol.Role) *protocol.Endpoint {
	t.Helper()
	ep, err := protocol.NewEndpoint(tr, role)
	if err != nil {
		t.Fatalf("NewEndpoint failed: %v", err)
	}
	return ep
}

func TestFrameWriterExactLength(t *testing.T) {
	tr := fake.NewTransport()
	ep := newEndpoint(t, tr, protocol.RoleServer)
	h := mustHeader(t, protocol.OpcodeBinary, true)

	payload := []byte("twelve bytes")
	w, err := ep.SendHeader(h, int64(len(payload)))
	if err != nil {
		t.Fatalf("SendHeader failed: %v", err)
	}

	// Any sequence of writes summing exactly to the declared length
	// completes the frame.
	for _, chunk := range [][]byte{payload[:3], payload[3:3], payload[3:10], payload[10:]} {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("Write(%d bytes) failed: %v", len(chunk), err)
		}
	}
	if w.Remaining() != 0 {
		t.Errorf("Remaining = %d after writing the full payload", w.Remaining())
	}

	want := append([]byte{0x82, 12}, payload...)
	if got := tr.SentData(); !bytes.Equal(got, want) {
		t.Errorf("wire bytes = %v, want %v", got, want)
	}
}

func TestFrameWriterOverflow(t *testing.T) {
	tr := fake.NewTransport()
	ep := newEndpoint(t, tr, protocol.RoleServer)
	h := mustHeader(t, protocol.OpcodeBinary, true)

	w, err := ep.SendHeader(h, 4)
	if err != nil {
		t.Fatalf("SendHeader failed: %v", err)
	}
	if _, err := w.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	sentBefore := len(tr.SentData())
	if _, err := w.Write([]byte{4, 5}); !errors.Is(err, protocol.ErrPayloadOverflow) {
		t.Fatalf("overflowing write = %v, want ErrPayloadOverflow", err)
	}
	if len(tr.SentData()) != sentBefore {
		t.Error("overflowing write leaked bytes to the transport")
	}
	if w.Remaining() != 1 {
		t.Errorf("Remaining = %d after failed write, want 1", w.Remaining())
	}
}

func TestFrameWriterDisposed(t *testing.T) {
	tr := fake.NewTransport()
	ep := newEndpoint(t, tr, protocol.RoleServer)
	h := mustHeader(t, protocol.OpcodeBinary, true)

	w, err := ep.SendHeader(h, 8)
	if err != nil {
		t.Fatalf("SendHeader failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close = %v, want nil", err)
	}
	if _, err := w.Write([]byte{1}); !errors.Is(err, api.ErrDisposed) {
		t.Errorf("Write after Close = %v, want ErrDisposed", err)
	}
}

func TestClientWriterMasksWithOffsetContinuity(t *testing.T) {
	tr := fake.NewTransport()
	ep := newEndpoint(t, tr, protocol.RoleClient)
	h := mustHeader(t, protocol.OpcodeText, true)

	payload := []byte("masked across three separate writes")
	w, err := ep.SendHeader(h, int64(len(payload)))
	if err != nil {
		t.Fatalf("SendHeader failed: %v", err)
	}
	for _, chunk := range [][]byte{payload[:5], payload[5:6], payload[6:]} {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	sent := tr.SentData()
	_, length, key, consumed, err := protocol.DecodeHeader(sent)
	if err != nil {
		t.Fatalf("DecodeHeader of sent bytes failed: %v", err)
	}
	if key == nil {
		t.Fatal("client frame went out unmasked")
	}
	if length != int64(len(payload)) {
		t.Fatalf("declared length = %d, want %d", length, len(payload))
	}

	wire := append([]byte(nil), sent[consumed:]...)
	if bytes.Equal(wire, payload) {
		t.Fatal("payload bytes on the wire are not masked")
	}
	protocol.ApplyMask(wire, *key, 0)
	if !bytes.Equal(wire, payload) {
		t.Errorf("unmasked wire payload = %q, want %q", wire, payload)
	}

	// The caller's buffer must stay untouched by the masking path.
	if !bytes.Equal(payload, []byte("masked across three separate writes")) {
		t.Error("Write mutated the caller's buffer")
	}
}
