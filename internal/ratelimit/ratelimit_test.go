package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReturnsWaitDuration(t *testing.T) {
	r := New(1000) // fast enough not to block the test meaningfully
	ctx := context.Background()
	_, err := r.Acquire(ctx)
	require.NoError(t, err)
	wait, err := r.Acquire(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, wait, time.Duration(0))
}

func TestSetRateTakesEffectForFutureAcquires(t *testing.T) {
	r := New(1)
	r.SetRate(10000)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := r.Acquire(ctx)
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRateIsFlooredAboveZero(t *testing.T) {
	r := New(0)
	assert.InDelta(t, minRate, float64(r.limiter.Limit()), 1e-9)
	r.SetRate(-5)
	assert.InDelta(t, minRate, float64(r.limiter.Limit()), 1e-9)
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	r := New(0.0001)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r.Acquire(ctx) // first call is free (full bucket)
	require.NoError(t, err)
	_, err = r.Acquire(ctx)
	assert.Error(t, err)
}
