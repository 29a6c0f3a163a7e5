package ircparse

import "fmt"

// ParseErrorKind categorizes what was wrong with a line
type ParseErrorKind int

const (
	// ErrKindMissingCommand indicates a line that has an origin but no command.
	ErrKindMissingCommand ParseErrorKind = iota
	// ErrKindMissingParam indicates a command without a parameter it needs.
	ErrKindMissingParam
	// ErrKindInvalidNumber indicates a parameter that should be numeric but is not.
	ErrKindInvalidNumber
)

// ParseError describes a line that could not be interpreted
type ParseError struct {
	Kind    ParseErrorKind
	Line    string
	Command string
	Index   int    // parameter index, for missing/invalid params
	Value   string // offending value, for invalid numbers
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrKindMissingCommand:
		return fmt.Sprintf("missing command in %q", e.Line)
	case ErrKindMissingParam:
		return fmt.Sprintf("%s: missing parameter %d in %q", e.Command, e.Index, e.Line)
	case ErrKindInvalidNumber:
		return fmt.Sprintf("%s: parameter %d is not a number: %q", e.Command, e.Index, e.Value)
	default:
		return fmt.Sprintf("cannot parse %q", e.Line)
	}
}
