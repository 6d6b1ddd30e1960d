package fault

import (
	"errors"
	"fmt"
	"time"
)

// PublicView is the redacted rendering safe to return to any caller.
type PublicView struct {
	Error         string         `json:"error"`
	Code          Code           `json:"code"`
	Type          Type           `json:"type"`
	Severity      string         `json:"severity"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// CauseView is a serialized representation of the wrapped native failure.
type CauseView struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Chain   []string `json:"chain,omitempty"`
}

// VerboseView adds internals to the public rendering. Only emitted when
// the caller explicitly asks for the non-production rendering.
type VerboseView struct {
	PublicView
	DeveloperMessage string     `json:"developer_message"`
	OriginalError    *CauseView `json:"original_error,omitempty"`
	Stack            []string   `json:"stack,omitempty"`
}

// Public returns the redacted rendering.
func (e *Error) Public() PublicView {
	return PublicView{
		Error:         e.UserFacingMessage(),
		Code:          e.Code,
		Type:          e.Type(),
		Severity:      e.Severity().String(),
		Timestamp:     e.Timestamp,
		CorrelationID: e.correlationID,
		Metadata:      e.Metadata,
	}
}

// Verbose returns the internal rendering with developer message, cause
// chain, and the stack captured at construction.
func (e *Error) Verbose() VerboseView {
	return VerboseView{
		PublicView:       e.Public(),
		DeveloperMessage: e.DeveloperMessage,
		OriginalError:    causeView(e.Cause),
		Stack:            e.stack,
	}
}

// FormatForTransport coerces any failure into the outward response body,
// classifying it first when needed. This and LogFailure are the only
// approved ways to turn a failure into a response or a log record.
func FormatForTransport(err error, verbose bool) any {
	ce := Classify(err, Context{})
	if ce == nil {
		return nil
	}
	if verbose {
		return ce.Verbose()
	}
	return ce.Public()
}

func causeView(cause error) *CauseView {
	if cause == nil {
		return nil
	}

	view := &CauseView{
		Type:    fmt.Sprintf("%T", cause),
		Message: cause.Error(),
	}
	for c := errors.Unwrap(cause); c != nil; c = errors.Unwrap(c) {
		view.Chain = append(view.Chain, c.Error())
	}
	return view
}
