package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vinhng/gatewatch/internal/hub"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeService struct {
	mu sync.Mutex

	stats  hub.ConnectionStats
	health hub.HealthSummary

	disconnectCalls int
	jobCleanupCalls int
	rateLimitCalls  int

	jobCleanupErr      error
	panicOnRateLimits  bool
	panicOnHealthCheck bool
}

func (f *fakeService) Stats() hub.ConnectionStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *fakeService) HealthCheck() hub.HealthSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnHealthCheck {
		panic("health check exploded")
	}
	return f.health
}

func (f *fakeService) DisconnectInactive(threshold time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnectCalls++
	return 3, nil
}

func (f *fakeService) PerformPeriodicCleanup() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobCleanupCalls++
	return f.jobCleanupErr
}

func (f *fakeService) CleanupRateLimits() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateLimitCalls++
	if f.panicOnRateLimits {
		panic("rate limit cleanup exploded")
	}
	return nil
}

func (f *fakeService) calls() (disconnect, jobs, limits int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnectCalls, f.jobCleanupCalls, f.rateLimitCalls
}

// newTestMonitor returns a monitor with a fixed memory sampler and a
// recorded GC hook, never started.
func newTestMonitor(svc ConnectionService, heapUsed uint64) (*Monitor, *int) {
	m := New(svc, nil)
	m.readMem = func() MemoryStats {
		return MemoryStats{HeapUsed: heapUsed, HeapTotal: heapUsed * 2}
	}
	gcCalls := 0
	m.gc = func() { gcCalls++ }
	return m, &gcCalls
}

// logCapture counts log records by message.
type logCapture struct {
	mu   sync.Mutex
	msgs []string
}

func (c *logCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *logCapture) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	c.msgs = append(c.msgs, r.Message)
	c.mu.Unlock()
	return nil
}

func (c *logCapture) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *logCapture) WithGroup(string) slog.Handler      { return c }

func (c *logCapture) count(msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, m := range c.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

// =============================================================================
// Tests
// =============================================================================

func TestHighConnectionCountTriggersRateLimitCleanup(t *testing.T) {
	svc := &fakeService{stats: hub.ConnectionStats{ActiveConnections: 6}}
	m, _ := newTestMonitor(svc, 1<<20)
	m.UpdateThresholds(ThresholdPatch{MaxConnections: intPtr(5)})

	m.sample()

	disconnect, jobs, limits := svc.calls()
	if limits != 1 {
		t.Errorf("CleanupRateLimits calls = %d, want 1", limits)
	}
	if disconnect != 0 || jobs != 0 {
		t.Errorf("unexpected remediation calls: disconnect=%d jobs=%d", disconnect, jobs)
	}
}

func TestAlertRulesAreIndependent(t *testing.T) {
	svc := &fakeService{stats: hub.ConnectionStats{
		ActiveConnections:   10,
		InactiveConnections: 9,
		ProcessingJobs:      100,
	}}
	m, gcCalls := newTestMonitor(svc, 1<<20)
	m.UpdateThresholds(ThresholdPatch{
		MaxConnections:    intPtr(5),
		MaxProcessingJobs: intPtr(50),
		MaxInactiveRatio:  floatPtr(0.5),
	})

	m.sample()

	disconnect, jobs, limits := svc.calls()
	if limits != 1 || jobs != 1 || disconnect != 1 {
		t.Errorf("remediation calls = limits:%d jobs:%d disconnect:%d, want 1 each", limits, jobs, disconnect)
	}
	if *gcCalls != 0 {
		t.Errorf("gc calls = %d, want 0 (no memory growth alert)", *gcCalls)
	}
}

func TestMemoryGrowthTriggersGC(t *testing.T) {
	svc := &fakeService{}
	m, gcCalls := newTestMonitor(svc, 200<<20)
	m.baseline = &Snapshot{Memory: MemoryStats{HeapUsed: 100 << 20}}
	m.UpdateThresholds(ThresholdPatch{MaxHeapGrowthPercent: floatPtr(50)})

	m.sample()

	if *gcCalls != 1 {
		t.Errorf("gc calls = %d, want 1", *gcCalls)
	}
}

func TestGrowthOnlyWithBaseline(t *testing.T) {
	svc := &fakeService{}
	m, gcCalls := newTestMonitor(svc, 200<<20)
	m.UpdateThresholds(ThresholdPatch{MaxHeapGrowthPercent: floatPtr(1)})

	// No baseline yet: the memory growth rule must not fire.
	m.sample()

	if *gcCalls != 0 {
		t.Errorf("gc calls = %d, want 0 without a baseline", *gcCalls)
	}
	if m.Report().Recent[0].HasGrowth {
		t.Error("snapshot reports growth without a baseline")
	}
}

func TestInactiveRatioZeroWhenNoActive(t *testing.T) {
	ratio := inactiveRatio(hub.ConnectionStats{ActiveConnections: 0, InactiveConnections: 5})
	if ratio != 0 {
		t.Errorf("inactiveRatio = %v, want 0 when nothing is active", ratio)
	}
}

func TestRemediationFailureIsIsolated(t *testing.T) {
	// Breach connection count, processing jobs, and inactive ratio at
	// once. Rate limit cleanup (dispatched first) panics; the remaining
	// actions must still run.
	svc := &fakeService{
		stats: hub.ConnectionStats{
			ActiveConnections:   10,
			InactiveConnections: 9,
			ProcessingJobs:      100,
		},
		panicOnRateLimits: true,
		jobCleanupErr:     errors.New("cleanup backend down"),
	}
	m, _ := newTestMonitor(svc, 1<<20)
	m.UpdateThresholds(ThresholdPatch{
		MaxConnections:    intPtr(5),
		MaxProcessingJobs: intPtr(50),
		MaxInactiveRatio:  floatPtr(0.5),
	})

	m.sample()

	disconnect, jobs, limits := svc.calls()
	if limits != 1 {
		t.Errorf("CleanupRateLimits calls = %d, want 1", limits)
	}
	if jobs != 1 {
		t.Errorf("PerformPeriodicCleanup calls = %d, want 1 despite earlier panic", jobs)
	}
	if disconnect != 1 {
		t.Errorf("DisconnectInactive calls = %d, want 1 despite earlier failures", disconnect)
	}

	// The next cycle must still run and commit a snapshot.
	m.sample()
	if got := m.Report().Summary.SnapshotCount; got != 2 {
		t.Errorf("snapshot count = %d, want 2", got)
	}
}

func TestFailingCycleDoesNotStopSampling(t *testing.T) {
	svc := &fakeService{panicOnHealthCheck: true}
	m, _ := newTestMonitor(svc, 1<<20)

	m.sample()

	// The failed cycle committed nothing.
	if got := m.Report().Status; got != ReportStatusNoData {
		t.Errorf("report status = %q, want %q after a failed cycle", got, ReportStatusNoData)
	}

	svc.mu.Lock()
	svc.panicOnHealthCheck = false
	svc.mu.Unlock()

	m.sample()
	if got := m.Report().Summary.SnapshotCount; got != 1 {
		t.Errorf("snapshot count = %d, want 1 after recovery", got)
	}
}

func TestTrendLoggedEveryTenthCycle(t *testing.T) {
	svc := &fakeService{stats: hub.ConnectionStats{ActiveConnections: 1}}
	m, _ := newTestMonitor(svc, 1<<20)
	capture := &logCapture{}
	m.log = slog.New(capture)

	for i := 0; i < 25; i++ {
		m.sample()
	}

	if got := capture.count("resource trend"); got != 2 {
		t.Errorf("trend logs after 25 cycles = %d, want 2 (cycles 10 and 20)", got)
	}

	for i := 0; i < 5; i++ {
		m.sample()
	}
	if got := capture.count("resource trend"); got != 3 {
		t.Errorf("trend logs after 30 cycles = %d, want 3", got)
	}
}

func TestHistoryCapacityFIFO(t *testing.T) {
	svc := &fakeService{stats: hub.ConnectionStats{ActiveConnections: 1}}
	m, _ := newTestMonitor(svc, 1<<20)

	for i := 0; i < historyCapacity+7; i++ {
		m.sample()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) != historyCapacity {
		t.Fatalf("history length = %d, want %d", len(m.history), historyCapacity)
	}
	// The oldest snapshots were evicted first; what remains must be in
	// chronological order.
	for i := 1; i < len(m.history); i++ {
		if m.history[i].Timestamp.Before(m.history[i-1].Timestamp) {
			t.Fatal("history is not in chronological order")
		}
	}
}

func TestOverlappingTickIsSkipped(t *testing.T) {
	svc := &fakeService{}
	m, _ := newTestMonitor(svc, 1<<20)

	m.sampling.Store(true)
	m.sample()
	m.sampling.Store(false)

	if got := m.Report().Status; got != ReportStatusNoData {
		t.Errorf("report status = %q, want %q after a skipped tick", got, ReportStatusNoData)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	svc := &fakeService{}
	m, _ := newTestMonitor(svc, 1<<20)

	m.Start(10 * time.Millisecond)
	if !m.Running() {
		t.Fatal("monitor not running after Start")
	}

	// Double start must not spin up a second timer.
	m.Start(10 * time.Millisecond)

	time.Sleep(50 * time.Millisecond)

	m.Stop()
	if m.Running() {
		t.Fatal("monitor still running after Stop")
	}
	m.Stop() // idempotent

	report := m.Report()
	if report.Status != ReportStatusOK {
		t.Fatalf("report status = %q, want %q", report.Status, ReportStatusOK)
	}
	if report.Summary.SnapshotCount < 2 {
		t.Errorf("snapshot count = %d, want at least the immediate sample plus one tick", report.Summary.SnapshotCount)
	}
}

func TestClearHistoryRecapturesBaseline(t *testing.T) {
	svc := &fakeService{}
	m, _ := newTestMonitor(svc, 1<<20)
	m.baseline = &Snapshot{Memory: MemoryStats{HeapUsed: 1}}
	m.sample()

	m.ClearHistory()

	if got := m.Report().Status; got != ReportStatusNoData {
		t.Errorf("report status = %q, want %q after clear", got, ReportStatusNoData)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.baseline == nil || m.baseline.Memory.HeapUsed != 1<<20 {
		t.Error("baseline was not recaptured from the live sampler")
	}
}

func TestUpdateThresholdsPartial(t *testing.T) {
	svc := &fakeService{}
	m, _ := newTestMonitor(svc, 1<<20)

	before := m.Report().Thresholds
	got := m.UpdateThresholds(ThresholdPatch{MaxConnections: intPtr(7)})

	if got.MaxConnections != 7 {
		t.Errorf("MaxConnections = %d, want 7", got.MaxConnections)
	}
	if got.MaxProcessingJobs != before.MaxProcessingJobs {
		t.Errorf("MaxProcessingJobs changed to %d, want untouched %d", got.MaxProcessingJobs, before.MaxProcessingJobs)
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
