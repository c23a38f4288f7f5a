// Package breaker implements the sliding-window error-rate circuit breaker:
// a fixed-capacity ring of recent outcomes with an atomic trip flag, per
// spec §9's guidance to use a dedicated structure rather than a generic
// concurrent list.
package breaker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInvalidBreaker marks a ConfigInvalid-class construction failure.
var ErrInvalidBreaker = fmt.Errorf("invalid circuit breaker configuration")

// Breaker trips open once the last W recorded outcomes contain a failure
// fraction strictly greater than threshold. It never auto-closes; only an
// explicit Reset clears the trip.
type Breaker struct {
	mu        sync.Mutex
	ring      []bool
	size      int
	count     int // number of valid entries currently in the ring, up to size
	next      int // next write position
	failures  int
	threshold float64

	open          atomic.Bool
	openTimestamp atomic.Int64 // unix nanos; 0 when never opened
}

// New validates threshold in [0,1] and window size >= 1.
func New(threshold float64, window int) (*Breaker, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: errorThreshold must be in [0,1], got %v", ErrInvalidBreaker, threshold)
	}
	if window < 1 {
		return nil, fmt.Errorf("%w: windowSize must be >= 1, got %d", ErrInvalidBreaker, window)
	}
	return &Breaker{ring: make([]bool, window), size: window, threshold: threshold}, nil
}

// RecordResult appends one outcome (true = success), overwriting the oldest
// entry once the ring is full. Once the ring has reached its configured
// size, the error rate is recomputed and the breaker trips (closed->open)
// the first time it strictly exceeds threshold.
func (b *Breaker) RecordResult(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == b.size {
		if !b.ring[b.next] {
			b.failures--
		}
	} else {
		b.count++
	}
	b.ring[b.next] = success
	if !success {
		b.failures++
	}
	b.next = (b.next + 1) % b.size

	if b.count == b.size {
		rate := float64(b.failures) / float64(b.size)
		if rate > b.threshold && b.open.CompareAndSwap(false, true) {
			b.openTimestamp.Store(time.Now().UnixNano())
		}
	}
}

// AllowRequest reports whether the breaker is currently closed, without
// taking the write lock.
func (b *Breaker) AllowRequest() bool {
	return !b.open.Load()
}

// Reset clears the ring and flips the breaker closed again.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.ring {
		b.ring[i] = false
	}
	b.count = 0
	b.next = 0
	b.failures = 0
	b.open.Store(false)
	b.openTimestamp.Store(0)
}

// CurrentErrorRate is failures over the current ring occupancy; 0 when empty.
func (b *Breaker) CurrentErrorRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return 0
	}
	return float64(b.failures) / float64(b.count)
}

// OpenTimestamp returns the unix-nano time of the most recent open
// transition, or zero if the breaker has never tripped since construction
// or the last Reset.
func (b *Breaker) OpenTimestamp() int64 {
	return b.openTimestamp.Load()
}

// IsOpen reports the current trip state.
func (b *Breaker) IsOpen() bool {
	return b.open.Load()
}
