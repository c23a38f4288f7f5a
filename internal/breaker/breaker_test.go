package breaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadThreshold(t *testing.T) {
	_, err := New(-0.1, 10)
	assert.ErrorIs(t, err, ErrInvalidBreaker)
	_, err = New(1.1, 10)
	assert.ErrorIs(t, err, ErrInvalidBreaker)
}

func TestNewRejectsBadWindow(t *testing.T) {
	_, err := New(0.5, 0)
	assert.ErrorIs(t, err, ErrInvalidBreaker)
}

func TestBreakerTripsExactlyAtWindowFill(t *testing.T) {
	b, err := New(0.5, 10)
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		b.RecordResult(false)
		assert.True(t, b.AllowRequest(), "should not trip before window fills")
	}
	assert.Equal(t, int64(0), b.OpenTimestamp())

	b.RecordResult(false) // 10th result: failure rate 1.0 > 0.5
	assert.False(t, b.AllowRequest())
	assert.NotEqual(t, int64(0), b.OpenTimestamp())
}

func TestBreakerStaysClosedUnderThreshold(t *testing.T) {
	b, err := New(0.5, 10)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b.RecordResult(i%2 == 0) // 50% success, 50% failure: rate == threshold, not >
	}
	assert.True(t, b.AllowRequest())
}

func TestOpenTransitionObservedOncePerOpenPeriod(t *testing.T) {
	b, err := New(0.0, 1)
	require.NoError(t, err)
	b.RecordResult(false)
	ts1 := b.OpenTimestamp()
	assert.NotEqual(t, int64(0), ts1)

	b.RecordResult(false)
	ts2 := b.OpenTimestamp()
	assert.Equal(t, ts1, ts2, "open timestamp must not move while already open")
}

func TestResetClosesBreaker(t *testing.T) {
	b, err := New(0.0, 1)
	require.NoError(t, err)
	b.RecordResult(false)
	require.False(t, b.AllowRequest())

	b.Reset()
	assert.True(t, b.AllowRequest())
	assert.Equal(t, int64(0), b.OpenTimestamp())
	assert.Equal(t, 0.0, b.CurrentErrorRate())
}

func TestCurrentErrorRateTracksRing(t *testing.T) {
	b, err := New(1.0, 4) // threshold 1.0 so it never trips during this test
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.CurrentErrorRate())

	b.RecordResult(true)
	b.RecordResult(false)
	assert.InDelta(t, 0.5, b.CurrentErrorRate(), 0.001)
}

func TestBreakerTripsWhenFullWindowExceedsThreshold(t *testing.T) {
	b, err := New(0.9, 3)
	require.NoError(t, err)
	b.RecordResult(false)
	b.RecordResult(false)
	b.RecordResult(false) // rate=1.0, but threshold 0.9 < 1.0 so it trips here
	assert.False(t, b.AllowRequest())
}

func TestNeverOpensBelowWindowSize(t *testing.T) {
	b, err := New(0.0, 100)
	require.NoError(t, err)
	for i := 0; i < 99; i++ {
		b.RecordResult(false)
	}
	assert.True(t, b.AllowRequest())
}
