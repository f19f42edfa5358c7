package codec

import (
	"errors"
	"fmt"
)

// Decoding errors. A *DecodeError wraps one of these with the byte offset
// at which decoding stopped, so callers match with errors.Is.
var (
	ErrUnexpectedEndOfInput = errors.New("codec: unexpected end of input")
	ErrInvalidTypeTag       = errors.New("codec: invalid type tag")
	ErrTrailingBytes        = errors.New("codec: trailing bytes after value")
	ErrMaxDepthExceeded     = errors.New("codec: maximum nesting depth exceeded")
	ErrInvalidEnvelope      = errors.New("codec: invalid envelope")
	ErrInvalidMethodCall    = errors.New("codec: invalid method call")
)

// ErrMethodNotImplemented is returned by method handlers for calls they do
// not serve. The reply to such a call is an empty message.
var ErrMethodNotImplemented = errors.New("codec: method not implemented")

// DecodeError reports where in the input a decode failed.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MethodError is the error envelope of a failed method call.
type MethodError struct {
	Code    string
	Message string
	Details Value
}

func (e *MethodError) Error() string {
	if e.Message == "" {
		return "platform method error: " + e.Code
	}
	return fmt.Sprintf("platform method error: %s: %s", e.Code, e.Message)
}
