package errors

import (
	"fmt"

	"github.com/yourusername/relay/internal/output"
)

// ErrorHandler logs errors to the terminal and the error log file
type ErrorHandler struct {
	output *output.Output
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(output *output.Output) *ErrorHandler {
	return &ErrorHandler{
		output: output,
	}
}

// Handle logs an error and returns a short message suitable for display
func (h *ErrorHandler) Handle(err error) string {
	if err == nil {
		return ""
	}

	if engineErr, ok := AsEngineError(err); ok {
		return h.handleEngineError(engineErr)
	}

	return h.handleGenericError(err)
}

// handleEngineError logs a categorized error. Only fatal ones reach the
// error file; the rest are informational and stay on the terminal.
func (h *ErrorHandler) handleEngineError(err *EngineError) string {
	if err.Fatal() {
		h.output.LogErrorToFile(string(err.Type), err.Message, err.Err)
		return err.Message
	}

	switch err.Type {
	case ErrorTypeUnknown, ErrorTypeUnsupported:
		h.output.Logger.Info("%s: %s", err.Type, err.Message)
	default:
		if err.Err != nil {
			h.output.Logger.Warning("%s: %s - %v", err.Type, err.Message, err.Err)
		} else {
			h.output.Logger.Warning("%s: %s", err.Type, err.Message)
		}
	}

	return err.Message
}

// handleGenericError processes an uncategorized error
func (h *ErrorHandler) handleGenericError(err error) string {
	h.output.LogErrorToFile(string(ErrorTypeUnknown), "Unexpected error occurred", err)
	return err.Error()
}

// LogError logs an error with additional context
func (h *ErrorHandler) LogError(err error, context string) {
	if err == nil {
		return
	}

	contextualErr := fmt.Errorf("%s: %w", context, err)

	if engineErr, ok := AsEngineError(err); ok {
		h.output.LogErrorToFile(
			string(engineErr.Type),
			fmt.Sprintf("%s: %s", context, engineErr.Message),
			contextualErr,
		)
		return
	}

	h.output.LogErrorToFile(string(ErrorTypeUnknown), context, contextualErr)
}
