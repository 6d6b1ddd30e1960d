// Package api is the HTTP boundary: the status/health endpoints, the
// websocket upgrade path, and the only place failures are turned into
// responses.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinhng/gatewatch/internal/fault"
	"github.com/vinhng/gatewatch/internal/hub"
	"github.com/vinhng/gatewatch/internal/monitor"
)

// Server provides the HTTP surface of the gateway.
type Server struct {
	hub     *hub.Hub
	monitor *monitor.Monitor
	log     *slog.Logger

	// verbose enables the non-production error rendering. Set from
	// deployment config, never inferred per request.
	verbose bool

	mux      *http.ServeMux
	server   *http.Server
	upgrader websocket.Upgrader
}

// NewServer creates the HTTP server.
func NewServer(h *hub.Hub, m *monitor.Monitor, port int, verbose bool, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		hub:     h,
		monitor: m,
		log:     log,
		verbose: verbose,
		mux:     mux,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: withCorrelation(mux),
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("PUT /status/thresholds", s.handleThresholds)
	mux.HandleFunc("DELETE /status/history", s.handleClearHistory)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.HealthCheck())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Report())
}

func (s *Server) handleThresholds(w http.ResponseWriter, r *http.Request) {
	var patch monitor.ThresholdPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, r, fault.Validation("thresholds", "malformed JSON body").WithCause(err))
		return
	}

	writeJSON(w, http.StatusOK, s.monitor.UpdateThresholds(patch))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.monitor.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		clientID = r.RemoteAddr
	}

	if err := s.hub.Limiter().Allow(r.Context(), clientID); err != nil {
		s.writeError(w, r, err)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote its response; just record the failure.
		fault.LogFailure(s.log, fault.Classify(err, fault.Context{}), "api.ws")
		return
	}

	conn := s.hub.Register(clientID, ws)
	go s.readPump(conn, ws)
}

// readPump keeps the connection's activity fresh and tears it down when
// the peer goes away.
func (s *Server) readPump(conn *hub.Conn, ws *websocket.Conn) {
	defer s.hub.Unregister(conn.ID)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logReadFailure(conn.ID, err)
			}
			return
		}
		conn.Touch()
	}
}

// logReadFailure records an inbound-side connection failure. Read errors
// are classified as what they are, never as delivery failures.
func (s *Server) logReadFailure(connID string, err error) {
	ce := fault.Classify(err, fault.Context{}).WithMeta("connection_id", connID)
	fault.LogFailure(s.log, ce, "api.ws")
}

// writeError is the single path from a failure to a response body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ce := fault.Classify(err, fault.Context{})
	ce.WithCorrelationID(correlationID(r.Context()))

	fault.LogFailure(s.log, ce, r.URL.Path)
	writeJSON(w, ce.Status(), fault.FormatForTransport(ce, s.verbose))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
