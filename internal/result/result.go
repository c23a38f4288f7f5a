// Package result assembles the immutable end-of-test snapshot exporters
// consume; it never mutates after construction.
package result

import (
	"time"

	"loadgen/internal/metrics"
)

// Snapshot is the complete, immutable result of one load test run.
type Snapshot struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	DurationMs int64

	TotalRequests int64
	SuccessCount  int64
	FailureCount  int64
	TimeoutCount  int64
	SkippedCount  int64
	SuccessRate   float64

	AverageTps float64
	MaxTps     float64

	ResponseTime LatencySnapshot
	RateLimiterWait LatencySnapshot

	StatusCodeCounts map[int]int64

	TopStatusCodes []metrics.StatusReport
	TopExceptions  []metrics.KindReport

	MaxCpuPct       float64
	MaxTotalMemUsed uint64

	TpsSamples        []metrics.TpsSample
	ResourceSnapshots []metrics.ResourceSnapshot
}

// LatencySnapshot is the read view of one HDR histogram at end-of-test.
type LatencySnapshot struct {
	Min, Median, P90, P95, P99, Max float64
	Mean, StdDev                    float64
}

func latencySnapshotFrom(s metrics.Snapshot) LatencySnapshot {
	return LatencySnapshot{
		Min:    s.Min,
		Median: float64(s.Percentiles[50]),
		P90:    float64(s.Percentiles[90]),
		P95:    float64(s.Percentiles[95]),
		P99:    float64(s.Percentiles[99]),
		Max:    s.Max,
		Mean:   s.Mean,
		StdDev: s.StdDev,
	}
}

// Params bundles the accumulators the controller owns at Stopped so Build
// can assemble one immutable Snapshot without the controller's full type
// being part of this package's API surface.
type Params struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time

	Counters         *metrics.Counters
	StatusCodes      *metrics.StatusCodeCounts
	TpsSampler       *metrics.TpsSampler
	ResponseTime     *metrics.LatencyHistogram
	RateLimiterWait  *metrics.LatencyHistogram
	ErrorAnalyzer    *metrics.ErrorAnalyzer
	ResourceMonitor  *metrics.ResourceMonitor
	MaxTps           float64
	TopN             int
}

// Build assembles a Snapshot. Latency figures reflect each histogram's last
// UpdateSnapshot; the controller calls UpdateSnapshot on both histograms
// before building the final snapshot, per spec §4.H's "final
// updateSnapshots" step.
func Build(p Params) Snapshot {
	durationMs := p.EndTime.Sub(p.StartTime).Milliseconds()
	total := p.Counters.Total()

	var avgTps float64
	if durationMs > 0 {
		avgTps = 1000 * float64(total) / float64(durationMs)
	}

	var successRate float64
	if total > 0 {
		successRate = float64(p.Counters.Success()) / float64(total)
	}

	topStatuses, topExceptions := p.ErrorAnalyzer.Report(p.TopN)

	var maxCpu float64
	var maxMem uint64
	var resourceSnaps []metrics.ResourceSnapshot
	if p.ResourceMonitor != nil {
		maxCpu = p.ResourceMonitor.MaxCpuPct()
		maxMem = p.ResourceMonitor.MaxTotalMemUsed()
		resourceSnaps = p.ResourceMonitor.Snapshots()
	}

	return Snapshot{
		Name:              p.Name,
		StartTime:         p.StartTime,
		EndTime:           p.EndTime,
		DurationMs:        durationMs,
		TotalRequests:     total,
		SuccessCount:      p.Counters.Success(),
		FailureCount:      p.Counters.Failure(),
		TimeoutCount:      p.Counters.Timeout(),
		SkippedCount:      p.Counters.Skipped(),
		SuccessRate:       successRate,
		AverageTps:        avgTps,
		MaxTps:            p.MaxTps,
		ResponseTime:      latencySnapshotFrom(p.ResponseTime.Snapshot()),
		RateLimiterWait:   latencySnapshotFrom(p.RateLimiterWait.Snapshot()),
		StatusCodeCounts:  p.StatusCodes.Snapshot(),
		TopStatusCodes:    topStatuses,
		TopExceptions:     topExceptions,
		MaxCpuPct:         maxCpu,
		MaxTotalMemUsed:   maxMem,
		TpsSamples:        p.TpsSampler.Samples(),
		ResourceSnapshots: resourceSnaps,
	}
}
