// Package ratelimit wraps golang.org/x/time/rate into the token-bucket
// pacing primitive the spec calls for, per spec §9's directive to wrap an
// off-the-shelf limiter rather than hand-roll one.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// minRate is the floor applied to any requested rate so acquire() never
// blocks forever on a misconfigured or momentarily-zero traffic profile.
const minRate = 1e-6

// Regulator paces callers at a configurable, live-updatable rate. Capacity
// is fixed at one: permits do not burst beyond the most recently available
// token.
type Regulator struct {
	limiter *rate.Limiter
}

// New builds a Regulator initialized at initialTps (clamped to minRate).
func New(initialTps float64) *Regulator {
	return &Regulator{limiter: rate.NewLimiter(rate.Limit(clamp(initialTps)), 1)}
}

func clamp(tps float64) float64 {
	if tps < minRate {
		return minRate
	}
	return tps
}

// Acquire blocks until a permit is available and returns how long the
// caller waited. Safe for concurrent use; arrival order is not FIFO but is
// livelock-free by virtue of x/time/rate's internal queuing.
func (r *Regulator) Acquire(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}

// SetRate updates the pacing rate effective immediately for future Acquire
// calls; callers already blocked in Wait may observe either the old or new
// rate.
func (r *Regulator) SetRate(tps float64) {
	r.limiter.SetLimit(rate.Limit(clamp(tps)))
}
