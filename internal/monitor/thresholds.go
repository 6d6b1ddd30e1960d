package monitor

// Thresholds are the live alert limits read by every sampling cycle. They
// may be updated at runtime without restarting the monitor.
type Thresholds struct {
	MaxConnections       int     `json:"max_connections"        yaml:"max_connections"`
	MaxProcessingJobs    int     `json:"max_processing_jobs"    yaml:"max_processing_jobs"`
	MaxHeapGrowthPercent float64 `json:"max_heap_growth_percent" yaml:"max_heap_growth_percent"`
	MaxInactiveRatio     float64 `json:"max_inactive_ratio"     yaml:"max_inactive_ratio"`
}

// DefaultThresholds returns the stock alert limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxConnections:       100,
		MaxProcessingJobs:    50,
		MaxHeapGrowthPercent: 50,
		MaxInactiveRatio:     0.3,
	}
}

// ThresholdPatch is a partial threshold update; nil fields are left as-is.
type ThresholdPatch struct {
	MaxConnections       *int     `json:"max_connections,omitempty"`
	MaxProcessingJobs    *int     `json:"max_processing_jobs,omitempty"`
	MaxHeapGrowthPercent *float64 `json:"max_heap_growth_percent,omitempty"`
	MaxInactiveRatio     *float64 `json:"max_inactive_ratio,omitempty"`
}

// Patch converts full thresholds into a patch that sets every field,
// used when seeding the monitor from deployment config.
func (t Thresholds) Patch() ThresholdPatch {
	return ThresholdPatch{
		MaxConnections:       &t.MaxConnections,
		MaxProcessingJobs:    &t.MaxProcessingJobs,
		MaxHeapGrowthPercent: &t.MaxHeapGrowthPercent,
		MaxInactiveRatio:     &t.MaxInactiveRatio,
	}
}

func (t Thresholds) apply(p ThresholdPatch) Thresholds {
	if p.MaxConnections != nil {
		t.MaxConnections = *p.MaxConnections
	}
	if p.MaxProcessingJobs != nil {
		t.MaxProcessingJobs = *p.MaxProcessingJobs
	}
	if p.MaxHeapGrowthPercent != nil {
		t.MaxHeapGrowthPercent = *p.MaxHeapGrowthPercent
	}
	if p.MaxInactiveRatio != nil {
		t.MaxInactiveRatio = *p.MaxInactiveRatio
	}
	return t
}
