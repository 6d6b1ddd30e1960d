package fault

import (
	"errors"
	"strings"
	"testing"
)

func TestCorrelationIDSetOnce(t *testing.T) {
	ce := NotFound("session", "abc")

	ce.WithCorrelationID("first")
	ce.WithCorrelationID("second")

	if got := ce.CorrelationID(); got != "first" {
		t.Errorf("CorrelationID() = %q, want %q", got, "first")
	}
}

func TestErrorString(t *testing.T) {
	cause := errors.New("boom")
	ce := Internal("handler blew up", cause)

	s := ce.Error()
	if !strings.Contains(s, string(CodeInternal)) {
		t.Errorf("Error() = %q, want it to contain the code", s)
	}
	if !strings.Contains(s, "boom") {
		t.Errorf("Error() = %q, want it to contain the cause", s)
	}
}

func TestUserMessageOverride(t *testing.T) {
	ce := RateLimited("client-9", 100)

	if got := ce.UserFacingMessage(); got != MessageOf(CodeRateLimited) {
		t.Errorf("default user message = %q, want taxonomy default", got)
	}

	ce.WithUserMessage("You are generating too fast.")
	if got := ce.UserFacingMessage(); got != "You are generating too fast." {
		t.Errorf("user message = %q, want the override", got)
	}
}

func TestFactoryMetadata(t *testing.T) {
	ce := NotFound("job", "42")
	if ce.Metadata["resource"] != "job" || ce.Metadata["id"] != "42" {
		t.Errorf("metadata = %v, want resource/id populated", ce.Metadata)
	}

	ce = MissingField("prompt")
	if ce.Metadata["field"] != "prompt" {
		t.Errorf("metadata = %v, want field populated", ce.Metadata)
	}

	ce = ConnectionRefused("10.0.0.5", 6379, errors.New("connect ECONNREFUSED"))
	if ce.Metadata["host"] != "10.0.0.5" || ce.Metadata["port"] != 6379 {
		t.Errorf("metadata = %v, want host/port populated", ce.Metadata)
	}
}

func TestFactoryStackCaptured(t *testing.T) {
	ce := Internal("whoops", nil)
	if len(ce.stack) == 0 {
		t.Fatal("expected a captured stack")
	}
	if !strings.Contains(ce.stack[0], "TestFactoryStackCaptured") {
		t.Errorf("stack[0] = %q, want the constructing test frame", ce.stack[0])
	}
}
