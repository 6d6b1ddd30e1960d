package monitor

import "github.com/vinhng/gatewatch/internal/hub"

// AlertKind names one threshold rule.
type AlertKind string

const (
	AlertHighConnectionCount AlertKind = "high_connection_count"
	AlertHighProcessingJobs  AlertKind = "high_processing_jobs"
	AlertHighMemoryGrowth    AlertKind = "high_memory_growth"
	AlertHighInactiveRatio   AlertKind = "high_inactive_ratio"
)

// Alert is one threshold breach observed in a sampling cycle. It lives
// only for the logging and remediation dispatch of that cycle.
type Alert struct {
	Kind      AlertKind `json:"kind"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// evaluate applies the four alert rules in fixed order. Rules are
// independent; one cycle may raise several alerts.
func evaluate(s Snapshot, t Thresholds) []Alert {
	var alerts []Alert

	if s.Connections.ActiveConnections > t.MaxConnections {
		alerts = append(alerts, Alert{
			Kind:      AlertHighConnectionCount,
			Value:     float64(s.Connections.ActiveConnections),
			Threshold: float64(t.MaxConnections),
		})
	}

	if s.Connections.ProcessingJobs > t.MaxProcessingJobs {
		alerts = append(alerts, Alert{
			Kind:      AlertHighProcessingJobs,
			Value:     float64(s.Connections.ProcessingJobs),
			Threshold: float64(t.MaxProcessingJobs),
		})
	}

	if s.HasGrowth && s.HeapGrowthPercent > t.MaxHeapGrowthPercent {
		alerts = append(alerts, Alert{
			Kind:      AlertHighMemoryGrowth,
			Value:     s.HeapGrowthPercent,
			Threshold: t.MaxHeapGrowthPercent,
		})
	}

	if ratio := inactiveRatio(s.Connections); ratio > t.MaxInactiveRatio {
		alerts = append(alerts, Alert{
			Kind:      AlertHighInactiveRatio,
			Value:     ratio,
			Threshold: t.MaxInactiveRatio,
		})
	}

	return alerts
}

// inactiveRatio is inactive over active, 0 when nothing is active.
func inactiveRatio(c hub.ConnectionStats) float64 {
	if c.ActiveConnections == 0 {
		return 0
	}
	return float64(c.InactiveConnections) / float64(c.ActiveConnections)
}
