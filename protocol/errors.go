package protocol

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents standardized error codes for the transport and codec
// layers.
type ErrorCode int

const (
	// Connection errors (1000-1099)
	ErrorCodeConnectionFailed ErrorCode = 1001
	ErrorCodeTimeout          ErrorCode = 1002
	ErrorCodeTransportClosed  ErrorCode = 1003

	// Codec errors (2000-2099)
	ErrorCodeEncodeFailed      ErrorCode = 2001
	ErrorCodeMalformedResponse ErrorCode = 2002
)

// TransportError represents a transport- or codec-level failure with a
// structured error code. Batch execution is not idempotent, so no transport
// error is ever marked retryable.
type TransportError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if len(e.Details) > 0 {
		detailsJSON, _ := json.Marshal(e.Details)
		return fmt.Sprintf("[%d] %s (details: %s)", e.Code, e.Message, string(detailsJSON))
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, so callers can reach the original
// net/http error with errors.Is and errors.As.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a new transport error.
func NewTransportError(code ErrorCode, message string, details map[string]interface{}) *TransportError {
	return &TransportError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WrapConnectionError wraps a network-level failure, keeping the original
// error reachable through Unwrap.
func WrapConnectionError(err error, details map[string]interface{}) *TransportError {
	return &TransportError{
		Code:    ErrorCodeConnectionFailed,
		Message: "connection failed",
		Details: details,
		Cause:   err,
	}
}

// WrapTimeoutError wraps a timeout or cancellation failure.
func WrapTimeoutError(err error, details map[string]interface{}) *TransportError {
	return &TransportError{
		Code:    ErrorCodeTimeout,
		Message: "request timed out",
		Details: details,
		Cause:   err,
	}
}
