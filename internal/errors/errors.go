package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeTransport indicates a socket failure: dial, read or unexpected disconnect
	ErrorTypeTransport ErrorType = "Transport"

	// ErrorTypeProtocolParse indicates a line that was missing tokens its command needs
	ErrorTypeProtocolParse ErrorType = "ProtocolParse"

	// ErrorTypeIdentityCollision indicates both the primary and alternate nick were refused
	ErrorTypeIdentityCollision ErrorType = "IdentityCollision"

	// ErrorTypeAlreadyRegistered indicates the server refused a second registration
	ErrorTypeAlreadyRegistered ErrorType = "AlreadyRegistered"

	// ErrorTypeUnsupported indicates a reply code the engine knows but does not handle
	ErrorTypeUnsupported ErrorType = "Unsupported"

	// ErrorTypeUnknown indicates a command token the engine does not recognize
	ErrorTypeUnknown ErrorType = "Unknown"

	// ErrorTypeSearch indicates a channel search could not be started
	ErrorTypeSearch ErrorType = "Search"

	// ErrorTypeConfig indicates invalid or unreadable configuration
	ErrorTypeConfig ErrorType = "Config"
)

// EngineError is a categorized failure delivered to listeners as a status event
type EngineError struct {
	Type    ErrorType
	Message string // Human readable summary
	Line    string // Raw protocol line that caused it, if any
	Err     error  // Underlying cause
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	if e.Line != "" {
		return fmt.Sprintf("%s: %s (line: %q)", e.Type, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error ends the session
func (e *EngineError) Fatal() bool {
	switch e.Type {
	case ErrorTypeIdentityCollision, ErrorTypeAlreadyRegistered, ErrorTypeTransport:
		return true
	default:
		return false
	}
}

// NewTransportError creates an error for socket failures
func NewTransportError(message string, err error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewProtocolParseError creates an error for a line that could not be interpreted
func NewProtocolParseError(line string, err error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeProtocolParse,
		Message: "malformed line",
		Line:    line,
		Err:     err,
	}
}

// NewIdentityCollisionError creates the fatal error raised once every nick was refused
func NewIdentityCollisionError(primary, alternate string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeIdentityCollision,
		Message: fmt.Sprintf("nicknames %s and %s are both unavailable", primary, alternate),
	}
}

// NewAlreadyRegisteredError creates the fatal error for a 462 reply
func NewAlreadyRegisteredError(line string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeAlreadyRegistered,
		Message: "server reports this connection is already registered",
		Line:    line,
	}
}

// NewUnsupportedError creates an error for a reply the engine deliberately ignores
func NewUnsupportedError(command, line string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeUnsupported,
		Message: fmt.Sprintf("unsupported reply %s", command),
		Line:    line,
	}
}

// NewUnknownError creates an error for an unrecognized command token
func NewUnknownError(command, line string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeUnknown,
		Message: fmt.Sprintf("unknown command %s", command),
		Line:    line,
	}
}

// NewSearchError creates an error for a rejected channel search
func NewSearchError(err error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeSearch,
		Message: "channel search rejected",
		Err:     err,
	}
}

// NewConfigError creates an error for configuration problems
func NewConfigError(message string, err error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// IsEngineError checks if an error is, or wraps, an EngineError
func IsEngineError(err error) bool {
	_, ok := AsEngineError(err)
	return ok
}

// AsEngineError attempts to extract an EngineError from an error chain
func AsEngineError(err error) (*EngineError, bool) {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr, true
	}
	return nil, false
}

// IsFatal reports whether err carries a session-ending EngineError
func IsFatal(err error) bool {
	engineErr, ok := AsEngineError(err)
	return ok && engineErr.Fatal()
}
