package monitor

import (
	"time"

	"github.com/vinhng/gatewatch/internal/hub"
)

// AverageStats are arithmetic means across the rolling history.
type AverageStats struct {
	ActiveConnections   float64 `json:"active_connections"`
	InactiveConnections float64 `json:"inactive_connections"`
	ProcessingJobs      float64 `json:"processing_jobs"`
	HeapUsed            float64 `json:"heap_used"`
}

// TrendStats are first-vs-last deltas across the rolling history.
type TrendStats struct {
	ActiveConnections int   `json:"active_connections"`
	ProcessingJobs    int   `json:"processing_jobs"`
	HeapUsedBytes     int64 `json:"heap_used_bytes"`
}

// Summary condenses the rolling history.
type Summary struct {
	MonitoringDuration time.Duration `json:"monitoring_duration"`
	SnapshotCount      int           `json:"snapshot_count"`
	Latest             Snapshot      `json:"latest"`
	Averages           AverageStats  `json:"averages"`
	Trend              TrendStats    `json:"trend"`
}

// Report is the monitor's reporting surface. Status is "no_data" until at
// least one snapshot exists, with the summary and recent list absent.
type Report struct {
	Status     string     `json:"status"`
	Summary    *Summary   `json:"summary,omitempty"`
	Recent     []Snapshot `json:"recent,omitempty"`
	Thresholds Thresholds `json:"thresholds"`
}

const (
	ReportStatusOK     = "ok"
	ReportStatusNoData = "no_data"
)

// Report summarizes the rolling history. Callers get copies; the history
// itself is never exposed for mutation.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return Report{
			Status:     ReportStatusNoData,
			Thresholds: m.thresholds,
		}
	}

	first := m.history[0]
	latest := m.history[len(m.history)-1]

	var sumActive, sumInactive, sumJobs, sumHeap float64
	for _, s := range m.history {
		sumActive += float64(s.Connections.ActiveConnections)
		sumInactive += float64(s.Connections.InactiveConnections)
		sumJobs += float64(s.Connections.ProcessingJobs)
		sumHeap += float64(s.Memory.HeapUsed)
	}
	n := float64(len(m.history))

	summary := &Summary{
		MonitoringDuration: time.Since(m.startedAt),
		SnapshotCount:      len(m.history),
		Latest:             latest,
		Averages: AverageStats{
			ActiveConnections:   sumActive / n,
			InactiveConnections: sumInactive / n,
			ProcessingJobs:      sumJobs / n,
			HeapUsed:            sumHeap / n,
		},
		Trend: TrendStats{
			ActiveConnections: latest.Connections.ActiveConnections - first.Connections.ActiveConnections,
			ProcessingJobs:    latest.Connections.ProcessingJobs - first.Connections.ProcessingJobs,
			HeapUsedBytes:     int64(latest.Memory.HeapUsed) - int64(first.Memory.HeapUsed),
		},
	}

	start := len(m.history) - reportRecent
	if start < 0 {
		start = 0
	}
	recent := make([]Snapshot, len(m.history)-start)
	copy(recent, m.history[start:])

	return Report{
		Status:     ReportStatusOK,
		Summary:    summary,
		Recent:     recent,
		Thresholds: m.thresholds,
	}
}

// LatestStats returns the connection stats from the newest snapshot, or
// false when no snapshot exists.
func (m *Monitor) LatestStats() (hub.ConnectionStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return hub.ConnectionStats{}, false
	}
	return m.history[len(m.history)-1].Connections, true
}
