package monitor

import (
	"runtime"
	"time"

	"github.com/prometheus/procfs"

	"github.com/vinhng/gatewatch/internal/hub"
)

// MemoryStats holds process-level memory counters for one sample.
type MemoryStats struct {
	HeapUsed  uint64 `json:"heap_used"`  // bytes live on the heap
	HeapTotal uint64 `json:"heap_total"` // bytes obtained for the heap from the OS
	External  uint64 `json:"external"`   // off-heap runtime bytes (stacks, GC metadata)
	RSS       uint64 `json:"rss"`        // resident set size, 0 when unavailable
}

// Snapshot is one immutable sample of process and connection state.
// Growth figures are only meaningful once a baseline exists; HasGrowth
// marks that.
type Snapshot struct {
	Timestamp   time.Time           `json:"timestamp"`
	Memory      MemoryStats         `json:"memory"`
	Connections hub.ConnectionStats `json:"connections"`

	HasGrowth         bool    `json:"has_growth"`
	HeapGrowthBytes   int64   `json:"heap_growth_bytes"`
	HeapGrowthPercent float64 `json:"heap_growth_percent"`
}

// memSampler reads process memory counters. Swappable in tests.
type memSampler func() MemoryStats

// readMemory samples the Go runtime, plus RSS from procfs where the
// platform provides it.
func readMemory() MemoryStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	out := MemoryStats{
		HeapUsed:  ms.HeapAlloc,
		HeapTotal: ms.HeapSys,
		External:  ms.Sys - ms.HeapSys,
	}

	if proc, err := procfs.Self(); err == nil {
		if stat, err := proc.Stat(); err == nil {
			out.RSS = uint64(stat.ResidentMemory())
		}
	}
	return out
}

// withGrowth returns a copy of the snapshot with growth computed against
// the baseline.
func (s Snapshot) withGrowth(baseline *Snapshot) Snapshot {
	if baseline == nil {
		return s
	}

	s.HasGrowth = true
	s.HeapGrowthBytes = int64(s.Memory.HeapUsed) - int64(baseline.Memory.HeapUsed)
	if baseline.Memory.HeapUsed > 0 {
		s.HeapGrowthPercent = float64(s.HeapGrowthBytes) / float64(baseline.Memory.HeapUsed) * 100
	}
	return s
}
