package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsClassified tracks errors normalized by the classifier
	ErrorsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewatch_errors_classified_total",
			Help: "Total number of errors run through the fault classifier",
		},
		[]string{"type", "severity"},
	)

	// SamplesTotal tracks completed monitor sampling cycles
	SamplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatewatch_monitor_samples_total",
			Help: "Total number of completed health sampling cycles",
		},
	)

	// SamplesSkipped tracks ticks skipped because a cycle was still running
	SamplesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatewatch_monitor_samples_skipped_total",
			Help: "Total number of sampling ticks skipped due to an in-flight cycle",
		},
	)

	// AlertsTotal tracks raised alerts per kind
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewatch_monitor_alerts_total",
			Help: "Total number of threshold alerts raised",
		},
		[]string{"kind"},
	)

	// RemediationFailures tracks remediation actions that returned an error
	RemediationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewatch_monitor_remediation_failures_total",
			Help: "Total number of failed remediation actions",
		},
		[]string{"kind"},
	)

	// ActiveConnections tracks currently active hub connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatewatch_active_connections",
			Help: "Number of active websocket connections",
		},
	)

	// InactiveConnections tracks connections idle beyond the inactivity window
	InactiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatewatch_inactive_connections",
			Help: "Number of connections idle beyond the inactivity window",
		},
	)

	// ProcessingJobs tracks in-flight jobs registered with the hub
	ProcessingJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatewatch_processing_jobs",
			Help: "Number of in-flight jobs",
		},
	)

	// HeapGrowthPercent tracks heap growth relative to the monitor baseline
	HeapGrowthPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatewatch_heap_growth_percent",
			Help: "Heap growth percent relative to the monitoring baseline",
		},
	)
)
