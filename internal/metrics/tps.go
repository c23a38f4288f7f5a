package metrics

import (
	"sync"
	"sync/atomic"
)

// TpsSample is one (timestampMs, tps) observation.
type TpsSample struct {
	TimestampMs int64
	Tps         float64
}

// maxTpsSamples bounds the retained sample ring at spec §3's N=3600.
const maxTpsSamples = 3600

// TpsSampler accumulates a requests-this-second counter and, once per
// second via UpdateTps, atomically reads-and-resets it into currentTps and
// appends it to a bounded ring, evicting the oldest sample when full.
type TpsSampler struct {
	requestsThisSecond atomic.Int64
	currentTps         atomic.Value // float64

	mu      sync.Mutex
	samples []TpsSample
}

func NewTpsSampler() *TpsSampler {
	s := &TpsSampler{}
	s.currentTps.Store(0.0)
	return s
}

// RecordRequest marks one completed request for the current second;
// callers invoke this exactly once per terminal request outcome.
func (s *TpsSampler) RecordRequest() {
	s.requestsThisSecond.Add(1)
}

// UpdateTps performs the sumThenReset: it atomically swaps the
// per-second counter to zero, publishes the observed count as the new
// currentTps, and appends the sample to the bounded ring.
func (s *TpsSampler) UpdateTps(timestampMs int64) float64 {
	n := s.requestsThisSecond.Swap(0)
	tps := float64(n)
	s.currentTps.Store(tps)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, TpsSample{TimestampMs: timestampMs, Tps: tps})
	if len(s.samples) > maxTpsSamples {
		s.samples = s.samples[len(s.samples)-maxTpsSamples:]
	}
	return tps
}

func (s *TpsSampler) CurrentTps() float64 {
	return s.currentTps.Load().(float64)
}

// Samples returns a defensive copy of the retained ring, oldest first.
func (s *TpsSampler) Samples() []TpsSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TpsSample, len(s.samples))
	copy(out, s.samples)
	return out
}

func (s *TpsSampler) Reset() {
	s.requestsThisSecond.Store(0)
	s.currentTps.Store(0.0)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = nil
}
