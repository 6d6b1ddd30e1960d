package fault

import (
	"encoding/json"
	"errors"
	"testing"
)

func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := make(map[string]any)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestPublicRenderingOmitsInternals(t *testing.T) {
	cause := errors.New("pg: connection reset")
	ce := StorageFailed("insert", cause).WithCorrelationID("req-123")

	body := marshalToMap(t, FormatForTransport(ce, false))

	if _, ok := body["stack"]; ok {
		t.Error("public rendering must not include stack")
	}
	if _, ok := body["original_error"]; ok {
		t.Error("public rendering must not include original_error")
	}
	if _, ok := body["developer_message"]; ok {
		t.Error("public rendering must not include developer_message")
	}
	if body["code"] != string(CodeStorageQueryFailed) {
		t.Errorf("code = %v, want %s", body["code"], CodeStorageQueryFailed)
	}
	if body["correlation_id"] != "req-123" {
		t.Errorf("correlation_id = %v, want req-123", body["correlation_id"])
	}
	if body["error"] != MessageOf(CodeStorageQueryFailed) {
		t.Errorf("error = %v, want the taxonomy default message", body["error"])
	}
}

func TestVerboseRenderingIncludesInternals(t *testing.T) {
	cause := errors.New("pg: connection reset")
	ce := StorageFailed("insert", cause)

	body := marshalToMap(t, FormatForTransport(ce, true))

	if _, ok := body["stack"]; !ok {
		t.Error("verbose rendering must include stack")
	}
	orig, ok := body["original_error"].(map[string]any)
	if !ok {
		t.Fatal("verbose rendering must include original_error")
	}
	if orig["message"] != "pg: connection reset" {
		t.Errorf("original_error.message = %v, want the cause message", orig["message"])
	}
	if body["developer_message"] == "" {
		t.Error("verbose rendering must include developer_message")
	}
}

func TestFormatForTransportClassifiesNativeFailures(t *testing.T) {
	body := marshalToMap(t, FormatForTransport(errors.New("database is locked"), false))

	if body["type"] != string(TypeTimeout) {
		t.Errorf("type = %v, want %s", body["type"], TypeTimeout)
	}
}

func TestCauseChain(t *testing.T) {
	inner := errors.New("socket closed")
	ce := SendFailed("conn-1", &wrapPair{outer: "write failed", inner: inner})

	view := ce.Verbose()
	if view.OriginalError == nil {
		t.Fatal("expected a cause view")
	}
	if len(view.OriginalError.Chain) != 1 || view.OriginalError.Chain[0] != "socket closed" {
		t.Errorf("chain = %v, want the unwrapped inner message", view.OriginalError.Chain)
	}
}

type wrapPair struct {
	outer string
	inner error
}

func (w *wrapPair) Error() string { return w.outer }
func (w *wrapPair) Unwrap() error { return w.inner }
