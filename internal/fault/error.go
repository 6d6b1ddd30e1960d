package fault

import (
	"fmt"
	"runtime"
	"time"
)

// maxStackFrames limits the number of frames captured at construction.
const maxStackFrames = 16

// Error is a failure normalized into the taxonomy. Type, severity, and
// transport status are derived from Code and fixed once the code is chosen.
// The correlation ID is assigned by the boundary layer, exactly once.
type Error struct {
	Code             Code
	DeveloperMessage string

	// UserMessage overrides the taxonomy default when non-empty.
	UserMessage string

	// Cause is the wrapped native failure, if any. It is never mutated,
	// only rendered in the verbose view.
	Cause error

	Metadata  map[string]any
	Timestamp time.Time

	correlationID string
	stack         []string
}

// newError constructs an Error with a stack captured at the given skip.
func newError(code Code, devMsg string, skip int) *Error {
	return &Error{
		Code:             code,
		DeveloperMessage: devMsg,
		Metadata:         make(map[string]any),
		Timestamp:        time.Now().UTC(),
		stack:            captureStack(skip + 1),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.DeveloperMessage, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.DeveloperMessage)
}

// Unwrap returns the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Type returns the taxonomy type for the error's code.
func (e *Error) Type() Type {
	return TypeOf(e.Code)
}

// Severity returns the taxonomy severity for the error's code.
func (e *Error) Severity() Severity {
	return SeverityOf(e.Code)
}

// Status returns the transport status for the error's code.
func (e *Error) Status() int {
	return StatusOf(e.Code)
}

// UserFacingMessage returns the override message if set, otherwise the
// taxonomy default for the code.
func (e *Error) UserFacingMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return MessageOf(e.Code)
}

// CorrelationID returns the correlation ID, empty until assigned.
func (e *Error) CorrelationID() string {
	return e.correlationID
}

// WithCorrelationID assigns the correlation ID. Settable exactly once;
// later calls are no-ops so intermediate layers cannot overwrite the
// boundary-assigned ID.
func (e *Error) WithCorrelationID(id string) *Error {
	if e.correlationID == "" {
		e.correlationID = id
	}
	return e
}

// WithCause attaches the original native failure.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithMeta adds one metadata entry.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// WithUserMessage overrides the default user-facing message.
func (e *Error) WithUserMessage(msg string) *Error {
	e.UserMessage = msg
	return e
}

func captureStack(skip int) []string {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		stack = append(stack, fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return stack
}
