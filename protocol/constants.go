// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants.

package protocol

// Opcode is the 4-bit frame type from RFC 6455 section 5.2.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

// IsControl reports whether the opcode names a control frame.
func (op Opcode) IsControl() bool {
	return op >= OpcodeClose
}

const (
	// Frame limit settings
	MaxControlPayloadLen = 125
	MinFrameHeaderLen    = 2
	MaxFrameHeaderLen    = 14 // extended payload length plus masking key

	// Bit masks
	FinBit  = 0x80
	Rsv1Bit = 0x40
	Rsv2Bit = 0x20
	Rsv3Bit = 0x10
	MaskBit = 0x80

	// Payload length codes in byte 1 bits 0-6.
	payloadLen16Code = 126
	payloadLen64Code = 127

	// Largest payload length expressible without an extended field.
	maxDirectPayloadLen = 125
	// Largest payload length expressible in the 16-bit extended field.
	maxExtended16PayloadLen = 0xFFFF

	// Close codes
	CloseNormalClosure      = 1000
	CloseGoingAway          = 1001
	CloseProtocolError      = 1002
	CloseUnsupportedData    = 1003
	CloseNoStatusRcvd       = 1005
	CloseAbnormalClosure    = 1006
	CloseInvalidPayloadData = 1007
	ClosePolicyViolation    = 1008
	CloseMessageTooBig      = 1009
	CloseMissingExtension   = 1010
	CloseInternalServerErr  = 1011
)
