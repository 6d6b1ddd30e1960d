package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vinhng/gatewatch/internal/fault"
	"github.com/vinhng/gatewatch/internal/hub"
	"github.com/vinhng/gatewatch/internal/monitor"
)

func newTestServer(t *testing.T, hubCfg hub.Config) *Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	h := hub.New(hubCfg, nil, log)
	m := monitor.New(h, log)
	return NewServer(h, m, 0, false, log)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func TestStatusNoData(t *testing.T) {
	s := newTestServer(t, hub.DefaultConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report monitor.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status != monitor.ReportStatusNoData {
		t.Fatalf("report status = %q, want %q", report.Status, monitor.ReportStatusNoData)
	}
}

func TestCorrelationHeaderSet(t *testing.T) {
	s := newTestServer(t, hub.DefaultConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get(correlationHeader) == "" {
		t.Fatal("expected a correlation id header on the response")
	}
}

func TestCorrelationHeaderPropagated(t *testing.T) {
	s := newTestServer(t, hub.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(correlationHeader, "caller-supplied")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get(correlationHeader); got != "caller-supplied" {
		t.Fatalf("correlation header = %q, want caller-supplied", got)
	}
}

func TestUpdateThresholds(t *testing.T) {
	s := newTestServer(t, hub.DefaultConfig())

	body := strings.NewReader(`{"max_connections": 7}`)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/status/thresholds", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got monitor.Thresholds
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode thresholds: %v", err)
	}
	if got.MaxConnections != 7 {
		t.Fatalf("MaxConnections = %d, want 7", got.MaxConnections)
	}
	defaults := monitor.DefaultThresholds()
	if got.MaxProcessingJobs != defaults.MaxProcessingJobs {
		t.Fatalf("MaxProcessingJobs = %d, want untouched default %d", got.MaxProcessingJobs, defaults.MaxProcessingJobs)
	}
}

func TestUpdateThresholdsMalformedBody(t *testing.T) {
	s := newTestServer(t, hub.DefaultConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/status/thresholds", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["code"] != string(fault.CodeValidationFailed) {
		t.Fatalf("code = %v, want %s", body["code"], fault.CodeValidationFailed)
	}
	if body["correlation_id"] == "" {
		t.Fatal("expected correlation id in error body")
	}
	if _, leaked := body["stack"]; leaked {
		t.Fatal("public rendering must not carry a stack")
	}
}

func TestClearHistory(t *testing.T) {
	s := newTestServer(t, hub.DefaultConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/status/history", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestWSRateLimited(t *testing.T) {
	cfg := hub.DefaultConfig()
	cfg.RateLimit.MaxRequests = 1
	cfg.RateLimit.Window = time.Minute
	s := newTestServer(t, cfg)

	// First request passes the limiter; the upgrade itself fails because
	// the recorder is not a real websocket client, which is fine here.
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?client=c1", nil))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?client=c1", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["code"] != string(fault.CodeRateLimited) {
		t.Fatalf("code = %v, want %s", body["code"], fault.CodeRateLimited)
	}
}

func TestWSConnectRegisters(t *testing.T) {
	s := newTestServer(t, hub.DefaultConfig())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?client=c1"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	waitFor(t, func() bool { return s.hub.Stats().ActiveConnections == 1 })

	if err := ws.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}

	ws.Close()
	waitFor(t, func() bool {
		stats := s.hub.Stats()
		return stats.ActiveConnections == 0 && stats.InactiveConnections == 0
	})
}

// captureHandler records every log record for inspection.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.records = append(h.records, r.Clone())
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) attr(t *testing.T, key string) any {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()

	var found any
	for _, r := range h.records {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				found = a.Value.Any()
				return false
			}
			return true
		})
	}
	if found == nil {
		t.Fatalf("no %q attr logged", key)
	}
	return found
}

func TestReadFailureNotLoggedAsDeliveryFailure(t *testing.T) {
	capture := &captureHandler{}
	log := slog.New(capture)
	h := hub.New(hub.DefaultConfig(), nil, log)
	s := NewServer(h, monitor.New(h, log), 0, false, log)

	s.logReadFailure("conn-1", &websocket.CloseError{
		Code: websocket.CloseAbnormalClosure,
		Text: "unexpected EOF",
	})

	if code := capture.attr(t, "code"); code == fault.CodeSendFailed {
		t.Fatalf("read failure logged with delivery code %v", code)
	}
	meta, ok := capture.attr(t, "metadata").(map[string]any)
	if !ok || meta["connection_id"] != "conn-1" {
		t.Fatalf("metadata = %v, want connection_id conn-1", meta)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
