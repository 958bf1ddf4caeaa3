// File: protocol/header.go
// Package protocol implements the WebSocket frame-header codec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EncodeHeader and DecodeHeader translate between FrameHeader plus
// declared payload length plus optional masking key and the 2..14 byte
// wire form. Both operate on already-buffered bytes and never touch a
// stream; Endpoint owns the transport reads.

package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/momentics/streamws/api"
)

// FrameHeader carries the control bits and opcode of one frame. Fields
// are immutable after construction: a header is built once, encoded or
// matched, and thrown away. There are deliberately no setters, so stale
// opcode bits can never accumulate across reassignments.
type FrameHeader struct {
	fin              bool
	rsv1, rsv2, rsv3 bool
	opcode           Opcode
}

// NewFrameHeader constructs a header. The opcode must fit the 4-bit
// wire field.
func NewFrameHeader(opcode Opcode, fin bool) (FrameHeader, error) {
	return NewFrameHeaderRsv(opcode, fin, false, false, false)
}

// NewFrameHeaderRsv constructs a header with explicit reserved bits.
// Reserved bits only carry meaning under a negotiated extension, which
// this core never negotiates; Endpoint rejects them inbound.
func NewFrameHeaderRsv(opcode Opcode, fin, rsv1, rsv2, rsv3 bool) (FrameHeader, error) {
	if opcode > 0x0F {
		return FrameHeader{}, fmt.Errorf("%w: opcode %#x outside 4-bit range", api.ErrInvalidArgument, byte(opcode))
	}
	return FrameHeader{fin: fin, rsv1: rsv1, rsv2: rsv2, rsv3: rsv3, opcode: opcode}, nil
}

// Fin reports the FIN bit.
func (h FrameHeader) Fin() bool { return h.fin }

// Rsv1 reports the RSV1 bit.
func (h FrameHeader) Rsv1() bool { return h.rsv1 }

// Rsv2 reports the RSV2 bit.
func (h FrameHeader) Rsv2() bool { return h.rsv2 }

// Rsv3 reports the RSV3 bit.
func (h FrameHeader) Rsv3() bool { return h.rsv3 }

// Opcode returns the frame type.
func (h FrameHeader) Opcode() Opcode { return h.opcode }

func (h FrameHeader) anyRsv() bool { return h.rsv1 || h.rsv2 || h.rsv3 }

func (h FrameHeader) controlByte() byte {
	b := byte(h.opcode)
	if h.fin {
		b |= FinBit
	}
	if h.rsv1 {
		b |= Rsv1Bit
	}
	if h.rsv2 {
		b |= Rsv2Bit
	}
	if h.rsv3 {
		b |= Rsv3Bit
	}
	return b
}

// EncodeHeader serializes the frame header, always choosing the
// minimal-width payload length form. A non-nil key sets the mask bit
// and appends the 4 raw key bytes after the length field.
func EncodeHeader(h FrameHeader, payloadLen int64, key *[4]byte) ([]byte, error) {
	if payloadLen < 0 {
		return nil, fmt.Errorf("%w: negative payload length %d", api.ErrInvalidArgument, payloadLen)
	}

	var maskBit byte
	if key != nil {
		maskBit = MaskBit
	}

	buf := make([]byte, 2, MaxFrameHeaderLen)
	buf[0] = h.controlByte()
	switch {
	case payloadLen <= maxDirectPayloadLen:
		buf[1] = byte(payloadLen) | maskBit
	case payloadLen <= maxExtended16PayloadLen:
		buf[1] = payloadLen16Code | maskBit
		buf = binary.BigEndian.AppendUint16(buf, uint16(payloadLen))
	default:
		buf[1] = payloadLen64Code | maskBit
		buf = binary.BigEndian.AppendUint64(buf, uint64(payloadLen))
	}
	if key != nil {
		buf = append(buf, key[:]...)
	}
	return buf, nil
}

// DecodeHeader parses an already-buffered frame header. It returns the
// header, the declared payload length, the masking key (nil when the
// mask bit is clear) and the number of bytes consumed.
//
// ErrMalformedFrame is returned for a buffer shorter than the header's
// declared width, a non-minimal payload length encoding, or a 64-bit
// length with the reserved top bit set.
func DecodeHeader(buf []byte) (FrameHeader, int64, *[4]byte, int, error) {
	fail := func(format string, args ...any) (FrameHeader, int64, *[4]byte, int, error) {
		return FrameHeader{}, 0, nil, 0, fmt.Errorf("%w: "+format, append([]any{ErrMalformedFrame}, args...)...)
	}

	if len(buf) < MinFrameHeaderLen {
		return fail("header shorter than 2 bytes")
	}
	h := FrameHeader{
		fin:    buf[0]&FinBit != 0,
		rsv1:   buf[0]&Rsv1Bit != 0,
		rsv2:   buf[0]&Rsv2Bit != 0,
		rsv3:   buf[0]&Rsv3Bit != 0,
		opcode: Opcode(buf[0] & 0x0F),
	}
	masked := buf[1]&MaskBit != 0
	lengthCode := buf[1] & 0x7F
	offset := 2

	var payloadLen int64
	switch lengthCode {
	case payloadLen16Code:
		if len(buf) < offset+2 {
			return fail("truncated 16-bit payload length")
		}
		payloadLen = int64(binary.BigEndian.Uint16(buf[offset:]))
		offset += 2
		if payloadLen <= maxDirectPayloadLen {
			return fail("non-minimal 16-bit encoding of length %d", payloadLen)
		}
	case payloadLen64Code:
		if len(buf) < offset+8 {
			return fail("truncated 64-bit payload length")
		}
		raw := binary.BigEndian.Uint64(buf[offset:])
		offset += 8
		if raw&(1<<63) != 0 {
			return fail("64-bit payload length with reserved top bit set")
		}
		payloadLen = int64(raw)
		if payloadLen <= maxExtended16PayloadLen {
			return fail("non-minimal 64-bit encoding of length %d", payloadLen)
		}
	default:
		payloadLen = int64(lengthCode)
	}

	var key *[4]byte
	if masked {
		if len(buf) < offset+4 {
			return fail("truncated masking key")
		}
		key = new([4]byte)
		copy(key[:], buf[offset:offset+4])
		offset += 4
	}

	return h, payloadLen, key, offset, nil
}

// headerTailLen returns how many bytes follow the 2-byte prefix, given
// its second byte: extended length field plus masking key.
func headerTailLen(b1 byte) int {
	n := 0
	switch b1 & 0x7F {
	case payloadLen16Code:
		n = 2
	case payloadLen64Code:
		n = 8
	}
	if b1&MaskBit != 0 {
		n += 4
	}
	return n
}
