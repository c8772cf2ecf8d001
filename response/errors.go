package response

import (
	"errors"
	"fmt"
)

type (
	// Error object for outputting JSON-RPC 2.0 errors. It covers both
	// errors received from the server and errors generated locally while
	// handling a call, the latter reuse standard JSON-RPC codes.
	Error struct {
		Code    int64  `json:"code"`
		Message string `json:"message"`
		Data    string `json:"data,omitempty"`
	}
)

const (
	// ParseErrorCode is returned when a message can't be decoded at all.
	ParseErrorCode = -32700
	// InvalidParamsCode is returned for malformed caller-supplied arguments.
	InvalidParamsCode = -32602
	// InternalErrorCode is returned for client-internal failures like an
	// exceeded deadline. It is not retriable automatically.
	InternalErrorCode = -32603
	// ServerErrorCode is returned when the server's answer violates the
	// protocol (unsupported version, empty envelope).
	ServerErrorCode = -32000
)

// ErrConnClosed is returned by every call outstanding at the moment its
// connection terminates and by any send attempted afterwards.
var ErrConnClosed = errors.New("connection closed")

// NewError is an Error constructor that takes Error contents from its
// parameters.
func NewError(code int64, message string, data string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewParseError creates a new error with code -32700.
func NewParseError(data string) *Error {
	return NewError(ParseErrorCode, "Parse Error", data)
}

// NewInvalidParamsError creates a new error with code -32602.
func NewInvalidParamsError(data string) *Error {
	return NewError(InvalidParamsCode, "Invalid Params", data)
}

// NewInternalError creates a new error with code -32603.
func NewInternalError(data string) *Error {
	return NewError(InternalErrorCode, "Internal error", data)
}

// NewServerError creates a new error with code -32000.
func NewServerError(data string) *Error {
	return NewError(ServerErrorCode, "Server error", data)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, e.Data)
}

// Is makes errors.Is match two *Error values by code, so callers can test
// against taxonomy sentinels without caring about the data payload.
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return e.Code == te.Code
}

// WrapErrorWithData returns copy of the given error with the specified data.
// It does not modify the source error.
func WrapErrorWithData(e *Error, data string) *Error {
	return NewError(e.Code, e.Message, data)
}
