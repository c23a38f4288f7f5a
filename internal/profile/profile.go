// Package profile implements the traffic-shaping model: a pure function from
// elapsed time to target transactions-per-second for each supported pattern.
package profile

import (
	"fmt"
	"sort"
)

// Profile is a time-varying target TPS curve. Implementations must be pure:
// TpsAt never mutates state and never blocks.
type Profile interface {
	// TpsAt returns the target TPS at elapsedMs into a test of totalMs duration.
	// Always >= 0.
	TpsAt(elapsedMs, totalMs int64) float64

	// MaxTps is the largest target TPS the profile returns. The controller
	// reports it as the result snapshot's MaxTps; it is a configured bound,
	// not a measured rate, and nothing sizes the worker pool from it.
	MaxTps() float64
}

// Stable holds a constant target TPS for the whole run.
type Stable struct {
	TargetTps float64
}

func NewStable(targetTps float64) (*Stable, error) {
	if targetTps <= 0 {
		return nil, fmt.Errorf("%w: stable targetTps must be > 0, got %v", ErrInvalidProfile, targetTps)
	}
	return &Stable{TargetTps: targetTps}, nil
}

func (s *Stable) TpsAt(_, _ int64) float64 { return s.TargetTps }
func (s *Stable) MaxTps() float64          { return s.TargetTps }

// Ramp interpolates linearly from StartTps to TargetTps over RampMillis, then
// holds at TargetTps for the remainder of the run.
type Ramp struct {
	StartTps   float64
	TargetTps  float64
	RampMillis int64
}

func NewRamp(startTps, targetTps float64, rampMillis int64) (*Ramp, error) {
	if rampMillis <= 0 {
		return nil, fmt.Errorf("%w: ramp rampMillis must be > 0, got %v", ErrInvalidProfile, rampMillis)
	}
	if startTps < 0 || targetTps <= 0 {
		return nil, fmt.Errorf("%w: ramp requires startTps >= 0 and targetTps > 0", ErrInvalidProfile)
	}
	return &Ramp{StartTps: startTps, TargetTps: targetTps, RampMillis: rampMillis}, nil
}

func (r *Ramp) TpsAt(elapsedMs, _ int64) float64 {
	if elapsedMs >= r.RampMillis {
		return r.TargetTps
	}
	if elapsedMs <= 0 {
		return r.StartTps
	}
	frac := float64(elapsedMs) / float64(r.RampMillis)
	return r.StartTps + (r.TargetTps-r.StartTps)*frac
}

func (r *Ramp) MaxTps() float64 {
	if r.StartTps > r.TargetTps {
		return r.StartTps
	}
	return r.TargetTps
}

// Spike holds BaseTps outside [SpikeStartMillis, SpikeStartMillis+SpikeDurationMillis)
// and SpikeTps inside that window.
type Spike struct {
	BaseTps           float64
	SpikeTps          float64
	SpikeStartMillis  int64
	SpikeDurationMillis int64
}

func NewSpike(baseTps, spikeTps float64, spikeStartMillis, spikeDurationMillis int64) (*Spike, error) {
	if baseTps < 0 || spikeTps < 0 {
		return nil, fmt.Errorf("%w: spike tps values must be >= 0", ErrInvalidProfile)
	}
	if spikeStartMillis < 0 || spikeDurationMillis < 0 {
		return nil, fmt.Errorf("%w: spike timing values must be >= 0", ErrInvalidProfile)
	}
	return &Spike{
		BaseTps:             baseTps,
		SpikeTps:            spikeTps,
		SpikeStartMillis:    spikeStartMillis,
		SpikeDurationMillis: spikeDurationMillis,
	}, nil
}

func (s *Spike) TpsAt(elapsedMs, _ int64) float64 {
	end := s.SpikeStartMillis + s.SpikeDurationMillis
	if elapsedMs >= s.SpikeStartMillis && elapsedMs < end {
		return s.SpikeTps
	}
	return s.BaseTps
}

func (s *Spike) MaxTps() float64 {
	if s.SpikeTps > s.BaseTps {
		return s.SpikeTps
	}
	return s.BaseTps
}

// Point is one (tMillis, tps) sample of a Custom profile.
type Point struct {
	TMillis int64
	Tps     float64
}

// Custom interpolates between a sorted table of (time, tps) points, clamping
// to the first/last point's tps outside the table's range.
type Custom struct {
	points []Point
}

// NewCustom builds a Custom profile from an unsorted point set. Fails if no
// valid points are supplied; this is the spec's mandated fatal
// construction-time error for a pattern file with zero usable rows.
func NewCustom(points []Point) (*Custom, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: custom profile requires at least one point", ErrInvalidProfile)
	}
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TMillis < sorted[j].TMillis })
	return &Custom{points: sorted}, nil
}

func (c *Custom) TpsAt(elapsedMs, _ int64) float64 {
	pts := c.points
	if elapsedMs <= pts[0].TMillis {
		return pts[0].Tps
	}
	last := pts[len(pts)-1]
	if elapsedMs >= last.TMillis {
		return last.Tps
	}

	// Binary search for the first point with TMillis > elapsedMs; the point
	// just before it and that point are the flanking pair.
	i := sort.Search(len(pts), func(i int) bool { return pts[i].TMillis > elapsedMs })
	hi := pts[i]
	lo := pts[i-1]
	if hi.TMillis == lo.TMillis {
		return lo.Tps
	}
	frac := float64(elapsedMs-lo.TMillis) / float64(hi.TMillis-lo.TMillis)
	return lo.Tps + (hi.Tps-lo.Tps)*frac
}

func (c *Custom) MaxTps() float64 {
	max := c.points[0].Tps
	for _, p := range c.points[1:] {
		if p.Tps > max {
			max = p.Tps
		}
	}
	return max
}
