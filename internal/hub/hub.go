// Package hub manages live client connections, in-flight job bookkeeping,
// and per-client rate limits. It is the shared resource the resource
// monitor observes and remediates.
package hub

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	redisclient "github.com/vinhng/gatewatch/internal/infra/redis"
	"github.com/vinhng/gatewatch/internal/metrics"
)

// Config holds hub settings.
type Config struct {
	// InactivityWindow is how long a connection may be idle before it
	// counts as inactive in the stats.
	InactivityWindow time.Duration

	// JobTTL is the age beyond which in-flight job bookkeeping is
	// considered stale and dropped by periodic cleanup.
	JobTTL time.Duration

	RateLimit RateLimitConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		InactivityWindow: 2 * time.Minute,
		JobTTL:           10 * time.Minute,
		RateLimit:        DefaultRateLimitConfig(),
	}
}

// ConnectionStats is the aggregate view the monitor samples each cycle.
type ConnectionStats struct {
	ActiveConnections   int `json:"active_connections"`
	InactiveConnections int `json:"inactive_connections"`
	ProcessingJobs      int `json:"processing_jobs"`
}

// HealthSummary is the hub's self-reported health.
type HealthSummary struct {
	Uptime         time.Duration `json:"uptime"`
	MemoryWarnings []string      `json:"memory_warnings,omitempty"`
}

// memoryWarningBytes is the heap size above which the hub reports a
// memory warning in its health summary.
const memoryWarningBytes = 1 << 30

// Hub is the connection registry. Request handlers mutate it concurrently;
// the monitor only reads aggregate stats and issues coarse remediation.
type Hub struct {
	cfg     Config
	log     *slog.Logger
	limiter *RateLimiter
	started time.Time

	mu    sync.RWMutex
	conns map[string]*Conn
	jobs  map[string]*Job
}

// New creates a hub. redis may be nil; rate limits then stay in memory.
func New(cfg Config, redis *redisclient.Client, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		cfg:     cfg,
		log:     log,
		limiter: NewRateLimiter(cfg.RateLimit, redis, log),
		started: time.Now(),
		conns:   make(map[string]*Conn),
		jobs:    make(map[string]*Job),
	}
}

// Limiter exposes the rate limiter to the transport layer.
func (h *Hub) Limiter() *RateLimiter {
	return h.limiter
}

// Register adds a websocket connection for the client and returns its
// tracked handle.
func (h *Hub) Register(clientID string, ws *websocket.Conn) *Conn {
	return h.register(clientID, ws)
}

func (h *Hub) register(clientID string, ws socket) *Conn {
	conn := newConn(clientID, ws)

	h.mu.Lock()
	h.conns[conn.ID] = conn
	total := len(h.conns)
	h.mu.Unlock()

	metrics.ActiveConnections.Set(float64(total))
	h.log.Debug("connection registered", "conn_id", conn.ID, "client_id", clientID, "total", total)
	return conn
}

// Unregister removes and closes a connection. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	conn, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
	}
	total := len(h.conns)
	h.mu.Unlock()

	if !ok {
		return
	}
	_ = conn.close()
	metrics.ActiveConnections.Set(float64(total))
	h.log.Debug("connection unregistered", "conn_id", id, "total", total)
}

// Get returns a connection by id.
func (h *Hub) Get(id string) (*Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[id]
	return conn, ok
}

// Stats returns the aggregate connection and job counts. Inactive counts
// connections idle beyond the configured inactivity window.
func (h *Hub) Stats() ConnectionStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := time.Now().Add(-h.cfg.InactivityWindow)
	inactive := 0
	for _, conn := range h.conns {
		if conn.LastActive().Before(cutoff) {
			inactive++
		}
	}

	return ConnectionStats{
		ActiveConnections:   len(h.conns),
		InactiveConnections: inactive,
		ProcessingJobs:      len(h.jobs),
	}
}

// HealthCheck returns uptime and any memory warnings.
func (h *Hub) HealthCheck() HealthSummary {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	var warnings []string
	if mem.HeapAlloc > memoryWarningBytes {
		warnings = append(warnings,
			fmt.Sprintf("heap allocation %dMB exceeds %dMB", mem.HeapAlloc/1024/1024, memoryWarningBytes/1024/1024))
	}

	return HealthSummary{
		Uptime:         time.Since(h.started),
		MemoryWarnings: warnings,
	}
}

// DisconnectInactive closes every connection idle longer than the given
// threshold and returns how many were dropped.
func (h *Hub) DisconnectInactive(threshold time.Duration) (int, error) {
	cutoff := time.Now().Add(-threshold)

	h.mu.Lock()
	var stale []*Conn
	for id, conn := range h.conns {
		if conn.LastActive().Before(cutoff) {
			stale = append(stale, conn)
			delete(h.conns, id)
		}
	}
	total := len(h.conns)
	h.mu.Unlock()

	for _, conn := range stale {
		_ = conn.close()
	}

	if len(stale) > 0 {
		metrics.ActiveConnections.Set(float64(total))
		h.log.Info("disconnected inactive connections", "count", len(stale), "threshold", threshold)
	}
	return len(stale), nil
}

// PerformPeriodicCleanup drops stale in-flight job bookkeeping.
func (h *Hub) PerformPeriodicCleanup() error {
	h.mu.Lock()
	dropped := h.dropStaleJobs(time.Now().Add(-h.cfg.JobTTL))
	remaining := len(h.jobs)
	h.mu.Unlock()

	if dropped > 0 {
		metrics.ProcessingJobs.Set(float64(remaining))
		h.log.Info("dropped stale jobs", "count", dropped, "remaining", remaining)
	}
	return nil
}

// CleanupRateLimits evicts expired rate-limit bookkeeping.
func (h *Hub) CleanupRateLimits() error {
	removed := h.limiter.CleanupExpired()
	if removed > 0 {
		h.log.Info("evicted expired rate limit buckets", "count", removed)
	}
	return nil
}
