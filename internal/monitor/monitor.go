// Package monitor samples process memory and connection-hub statistics on
// a fixed interval, keeps a bounded rolling history, raises threshold
// alerts, and dispatches remediation against the hub.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vinhng/gatewatch/internal/fault"
	"github.com/vinhng/gatewatch/internal/hub"
	"github.com/vinhng/gatewatch/internal/metrics"
)

// ConnectionService is the collaborator the monitor samples and
// remediates. The hub implements it; tests supply fakes.
type ConnectionService interface {
	Stats() hub.ConnectionStats
	HealthCheck() hub.HealthSummary
	DisconnectInactive(threshold time.Duration) (int, error)
	PerformPeriodicCleanup() error
	CleanupRateLimits() error
}

const (
	// DefaultInterval is the sampling period when none is given.
	DefaultInterval = 30 * time.Second

	// historyCapacity bounds the rolling snapshot history.
	historyCapacity = 100

	// inactiveGrace is the idle threshold passed to DisconnectInactive
	// when the inactive-ratio alert fires.
	inactiveGrace = 5 * time.Minute

	// trendLogEvery controls the verbose informational log cadence.
	trendLogEvery = 10

	// reportRecent is how many raw snapshots a report includes.
	reportRecent = 20
)

// Monitor owns the rolling history and baseline exclusively; only the
// sampling cycle writes them.
type Monitor struct {
	svc     ConnectionService
	log     *slog.Logger
	readMem memSampler
	gc      func()

	mu         sync.Mutex
	thresholds Thresholds
	history    []Snapshot
	baseline   *Snapshot
	startedAt  time.Time
	cycles     uint64
	running    bool
	cancel     context.CancelFunc

	// sampling serializes cycles: a tick arriving while a cycle is in
	// flight is skipped, never queued.
	sampling atomic.Bool
}

// New creates an idle monitor with default thresholds.
func New(svc ConnectionService, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		svc:        svc,
		log:        log,
		readMem:    readMemory,
		gc:         runtime.GC,
		thresholds: DefaultThresholds(),
	}
}

// Start captures a baseline snapshot, samples immediately, then samples on
// every tick of the interval. Starting a running monitor is a warning
// no-op; a second timer is never created.
func (m *Monitor) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		m.log.Warn("resource monitor already running, ignoring start")
		return
	}
	base := m.capture()
	m.baseline = &base
	m.startedAt = time.Now()
	m.cycles = 0
	m.running = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	m.log.Info("resource monitor started", "interval", interval, "baseline_heap_mb", base.Memory.HeapUsed/1024/1024)
	go m.run(ctx, interval)
}

// Stop cancels the timer and returns the monitor to idle. Idempotent, and
// never waits for an in-flight cycle; that cycle finishes naturally.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.cancel()
	m.cancel = nil
	m.running = false
	m.log.Info("resource monitor stopped")
}

// Running reports whether the sampling timer is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// UpdateThresholds merges the patch into the live thresholds; the change
// takes effect on the next cycle.
func (m *Monitor) UpdateThresholds(p ThresholdPatch) Thresholds {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.thresholds = m.thresholds.apply(p)
	m.log.Info("alert thresholds updated",
		"max_connections", m.thresholds.MaxConnections,
		"max_processing_jobs", m.thresholds.MaxProcessingJobs,
		"max_heap_growth_percent", m.thresholds.MaxHeapGrowthPercent,
		"max_inactive_ratio", m.thresholds.MaxInactiveRatio,
	)
	return m.thresholds
}

// ClearHistory discards the rolling history and re-captures a fresh
// baseline.
func (m *Monitor) ClearHistory() {
	base := m.capture()

	m.mu.Lock()
	m.history = nil
	m.baseline = &base
	m.mu.Unlock()

	m.log.Info("monitoring history cleared")
}

func (m *Monitor) run(ctx context.Context, interval time.Duration) {
	// Immediate first sample before waiting for the first tick.
	m.sample()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample performs one full cycle: read counters, append to history,
// evaluate alerts, remediate, log. A failure anywhere is classified and
// logged; the next scheduled cycle still runs. Partial snapshots are never
// appended.
func (m *Monitor) sample() {
	if !m.sampling.CompareAndSwap(false, true) {
		metrics.SamplesSkipped.Inc()
		m.log.Warn("sampling cycle still in progress, skipping tick")
		return
	}
	defer m.sampling.Store(false)

	defer func() {
		if r := recover(); r != nil {
			fault.LogFailure(m.log, fault.Internal(fmt.Sprintf("sampling cycle failed: %v", r), nil), "monitor.sample")
		}
	}()

	snap := m.capture()
	health := m.svc.HealthCheck()

	m.mu.Lock()
	snap = snap.withGrowth(m.baseline)
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.cycles++
	cycle := m.cycles
	thresholds := m.thresholds
	m.mu.Unlock()

	metrics.SamplesTotal.Inc()
	metrics.ActiveConnections.Set(float64(snap.Connections.ActiveConnections))
	metrics.InactiveConnections.Set(float64(snap.Connections.InactiveConnections))
	metrics.ProcessingJobs.Set(float64(snap.Connections.ProcessingJobs))
	metrics.HeapGrowthPercent.Set(snap.HeapGrowthPercent)

	alerts := evaluate(snap, thresholds)
	if len(alerts) > 0 {
		m.log.Warn("resource thresholds breached",
			"alerts", alerts,
			"active_connections", snap.Connections.ActiveConnections,
			"inactive_connections", snap.Connections.InactiveConnections,
			"processing_jobs", snap.Connections.ProcessingJobs,
			"heap_used_mb", snap.Memory.HeapUsed/1024/1024,
			"heap_growth_percent", snap.HeapGrowthPercent,
		)
		for _, a := range alerts {
			metrics.AlertsTotal.WithLabelValues(string(a.Kind)).Inc()
		}
		m.remediate(alerts)
	}

	if cycle%trendLogEvery == 0 {
		m.log.Info("resource trend",
			"cycle", cycle,
			"active_connections", snap.Connections.ActiveConnections,
			"inactive_connections", snap.Connections.InactiveConnections,
			"processing_jobs", snap.Connections.ProcessingJobs,
			"heap_used_mb", snap.Memory.HeapUsed/1024/1024,
			"heap_total_mb", snap.Memory.HeapTotal/1024/1024,
			"rss_mb", snap.Memory.RSS/1024/1024,
			"heap_growth_percent", snap.HeapGrowthPercent,
			"uptime", health.Uptime,
			"memory_warnings", health.MemoryWarnings,
		)
	}
}

func (m *Monitor) capture() Snapshot {
	return Snapshot{
		Timestamp:   time.Now().UTC(),
		Memory:      m.readMem(),
		Connections: m.svc.Stats(),
	}
}

// remediate dispatches one action per alert, sequentially. Each action is
// failure-isolated: an error or panic is classified and logged without
// stopping the remaining actions or the sampling loop.
func (m *Monitor) remediate(alerts []Alert) {
	for _, a := range alerts {
		m.runAction(a)
	}
}

func (m *Monitor) runAction(a Alert) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RemediationFailures.WithLabelValues(string(a.Kind)).Inc()
			fault.LogFailure(m.log, fault.Internal(fmt.Sprintf("remediation %s failed: %v", a.Kind, r), nil), "monitor.remediate")
		}
	}()

	var err error
	switch a.Kind {
	case AlertHighInactiveRatio:
		var dropped int
		dropped, err = m.svc.DisconnectInactive(inactiveGrace)
		if err == nil {
			m.log.Info("remediation: disconnected inactive connections", "count", dropped, "grace", inactiveGrace)
		}
	case AlertHighProcessingJobs:
		err = m.svc.PerformPeriodicCleanup()
	case AlertHighConnectionCount:
		err = m.svc.CleanupRateLimits()
	case AlertHighMemoryGrowth:
		m.gc()
		m.log.Info("remediation: requested garbage collection pass")
	}

	if err != nil {
		metrics.RemediationFailures.WithLabelValues(string(a.Kind)).Inc()
		fault.LogFailure(m.log, fault.Classify(err, fault.Context{}), "monitor.remediate")
	}
}
