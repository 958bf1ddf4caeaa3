// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values and the structured error type shared by every
// streamws package. Callers are expected to match with errors.Is.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrInvalidArgument reports caller misuse: a negative payload length,
	// a transport that is not duplex, a custom handshake request carrying
	// more than one Sec-WebSocket-Key. Always synchronous, never retried.
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// ErrDisposed reports an operation on an object after its teardown.
	// Always a programming error.
	ErrDisposed = fmt.Errorf("use after dispose")

	// ErrTransportClosed reports I/O on a transport that reached
	// end-of-stream or was closed locally.
	ErrTransportClosed = fmt.Errorf("transport is closed")
)

// ErrorCode classifies a structured Error for callers that branch on
// the failure kind rather than on sentinel identity.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeMalformedFrame
	ErrCodeMalformedHandshake
	ErrCodeHandshakeRejected
	ErrCodePayloadOverflow
	ErrCodeMaskPolicyViolation
	ErrCodeDisposed
	ErrCodeInternal
)

// Error carries a code, a human-readable message, and key/value context
// describing the rejected input. It wraps the package sentinel for the
// same condition, so errors.Is matching keeps working while errors.As
// exposes the detail.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel this error elaborates on.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a structured error with no underlying sentinel.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError creates a structured error elaborating on cause.
func WrapError(code ErrorCode, cause error, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
