package client

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"
)

// ValidationError represents an illegal argument or option combination
// detected while building a request or client. It is raised synchronously at
// the offending call, never deferred to Send time.
type ValidationError struct {
	Code    string                 `json:"code"`
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.FormatError(false)
}

// FormatError formats the error based on debug mode.
// When debugMode=false it returns a "CODE: message" line; when true, the full
// JSON structure.
func (e *ValidationError) FormatError(debugMode bool) string {
	if !debugMode {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	errorData := map[string]interface{}{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		errorData["details"] = e.Details
	}

	b, _ := json.MarshalIndent(errorData, "", "  ")
	return string(b)
}

// errInvalidArgument creates a ValidationError for a single bad argument or
// option placement.
func errInvalidArgument(message string, details map[string]interface{}) *ValidationError {
	return &ValidationError{
		Code:    "INVALID_ARGUMENT",
		Type:    "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}
}

// StateError represents an operation attempted in the wrong builder or client
// state.
type StateError struct {
	Code       string                 `json:"code"`
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StackTrace []string               `json:"stack_trace,omitempty"`
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return e.FormatError(false)
}

// FormatError formats the error based on debug mode.
func (e *StateError) FormatError(debugMode bool) string {
	if !debugMode {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	errorData := map[string]interface{}{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		errorData["details"] = e.Details
	}
	if len(e.StackTrace) > 0 {
		errorData["stack_trace"] = e.StackTrace
	}

	b, _ := json.MarshalIndent(errorData, "", "  ")
	return string(b)
}

// errInvalidState creates a StateError for an operation attempted out of
// sequence.
func errInvalidState(operation, message string) *StateError {
	return &StateError{
		Code:    "INVALID_STATE",
		Type:    "STATE_ERROR",
		Message: message,
		Details: map[string]interface{}{
			"operation": operation,
		},
		StackTrace: captureStackTrace(),
	}
}

// ServerError is the structured error decoded from a non-200 response. ReqIdx
// is the 0-based index of the failing sub-request, or -1 for a failure not
// attributable to one sub-request (malformed request, authentication failure).
type ServerError struct {
	Message   string    `json:"message"`
	ReqIdx    int       `json:"reqIdx"`
	Code      int       `json:"code"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return e.FormatError(false)
}

// FormatError formats the error based on debug mode.
func (e *ServerError) FormatError(debugMode bool) string {
	if !debugMode {
		if e.ReqIdx >= 0 {
			return fmt.Sprintf("server error %d at request %d: %s", e.Code, e.ReqIdx, e.Message)
		}
		return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
	}

	errorData := map[string]interface{}{
		"type":    "SERVER_ERROR",
		"code":    e.Code,
		"reqIdx":  e.ReqIdx,
		"message": e.Message,
	}
	if !e.Timestamp.IsZero() {
		errorData["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	}

	b, _ := json.MarshalIndent(errorData, "", "  ")
	return string(b)
}

// newServerError builds a ServerError stamped with the current time.
func newServerError(message string, reqIdx, code int) *ServerError {
	return &ServerError{
		Message:   message,
		ReqIdx:    reqIdx,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// captureStackTrace captures the current stack trace for error reporting.
func captureStackTrace() []string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(3, pcs)

	frames := make([]string, 0, n)
	callersFrames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := callersFrames.Next()
		frames = append(frames, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}

	return frames
}

// FormatError is a helper to format any error with debug mode support.
func FormatError(err error, debugMode bool) string {
	if err == nil {
		return ""
	}

	type debugFormatter interface {
		FormatError(bool) string
	}

	if formatter, ok := err.(debugFormatter); ok {
		return formatter.FormatError(debugMode)
	}

	return err.Error()
}
