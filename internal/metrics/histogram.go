package metrics

import (
	"sync"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

const (
	histogramMinValue = 1
	histogramMaxValue = 3_600_000 // [1, 3.6e6] ms
	histogramSigFigs  = 3
)

// LatencyHistogram implements the recorder/snapshot pattern spec §4.G and
// §9 call for: writes land in an interval HDR histogram under the same
// mutex that guards snapshots (recording is not lock-free); a short
// critical section merges it into an accumulated histogram that readers
// consult for percentiles/mean/stddev. Values recorded before snapshot call
// K become visible at or before call K+1, never before the first snapshot
// after they were recorded.
type LatencyHistogram struct {
	mu          sync.Mutex
	interval    *hdrhistogram.Histogram
	accumulated *hdrhistogram.Histogram
}

func NewLatencyHistogram() *LatencyHistogram {
	return &LatencyHistogram{
		interval:    hdrhistogram.New(histogramMinValue, histogramMaxValue, histogramSigFigs),
		accumulated: hdrhistogram.New(histogramMinValue, histogramMaxValue, histogramSigFigs),
	}
}

// RecordValue records one latency sample in milliseconds, clamped into the
// histogram's configured range.
func (h *LatencyHistogram) RecordValue(valueMs int64) {
	if valueMs < histogramMinValue {
		valueMs = histogramMinValue
	}
	if valueMs > histogramMaxValue {
		valueMs = histogramMaxValue
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.interval.RecordValue(valueMs)
}

// UpdateSnapshot merges the interval histogram into the accumulated one and
// clears the interval, making newly recorded values visible to readers.
func (h *LatencyHistogram) UpdateSnapshot() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accumulated.Merge(h.interval)
	h.interval.Reset()
}

// Snapshot is an immutable read view over percentile/mean/stddev queries.
type Snapshot struct {
	Min, Max, Mean, StdDev float64
	Percentiles            map[float64]int64
}

var defaultPercentiles = []float64{50, 90, 95, 99}

// Snapshot returns the current accumulated view. Callers must call
// UpdateSnapshot at least once after recording for values to appear here.
func (h *LatencyHistogram) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	pcts := make(map[float64]int64, len(defaultPercentiles))
	for _, p := range defaultPercentiles {
		pcts[p] = h.accumulated.ValueAtPercentile(p)
	}
	return Snapshot{
		Min:         float64(h.accumulated.Min()),
		Max:         float64(h.accumulated.Max()),
		Mean:        h.accumulated.Mean(),
		StdDev:      h.accumulated.StdDev(),
		Percentiles: pcts,
	}
}

func (h *LatencyHistogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.interval.Reset()
	h.accumulated.Reset()
}
