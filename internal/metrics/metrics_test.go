package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrementAndReset(t *testing.T) {
	var c Counters
	c.IncrTotal()
	c.IncrSuccess()
	c.IncrFailure()
	c.IncrTimeout()
	c.IncrSkipped()
	assert.Equal(t, int64(1), c.Total())
	assert.Equal(t, int64(1), c.Success())
	assert.Equal(t, int64(1), c.Failure())
	assert.Equal(t, int64(1), c.Timeout())
	assert.Equal(t, int64(1), c.Skipped())

	c.Reset()
	assert.Equal(t, int64(0), c.Total())
	assert.Equal(t, int64(0), c.Skipped())
}

func TestStatusCodeCountsDerivedTotals(t *testing.T) {
	s := NewStatusCodeCounts()
	s.Increment(200)
	s.Increment(200)
	s.Increment(404)
	s.Increment(500)

	assert.Equal(t, int64(2), s.SuccessTotal())
	assert.Equal(t, int64(1), s.ClientErrorTotal())
	assert.Equal(t, int64(1), s.ServerErrorTotal())
	assert.True(t, s.HasErrors())

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap[200])

	s.Reset()
	assert.False(t, s.HasErrors())
}

func TestTpsSamplerSumThenReset(t *testing.T) {
	s := NewTpsSampler()
	s.RecordRequest()
	s.RecordRequest()
	s.RecordRequest()

	tps := s.UpdateTps(1000)
	assert.Equal(t, 3.0, tps)
	assert.Equal(t, 3.0, s.CurrentTps())

	tps2 := s.UpdateTps(2000)
	assert.Equal(t, 0.0, tps2, "counter must reset after each UpdateTps")

	samples := s.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, int64(1000), samples[0].TimestampMs)
}

func TestTpsSamplerRingIsBounded(t *testing.T) {
	s := NewTpsSampler()
	for i := 0; i < maxTpsSamples+10; i++ {
		s.UpdateTps(int64(i))
	}
	assert.Len(t, s.Samples(), maxTpsSamples)
}

func TestLatencyHistogramVisibleAfterSnapshot(t *testing.T) {
	h := NewLatencyHistogram()
	h.RecordValue(100)
	h.RecordValue(200)

	// Not visible before a snapshot.
	snap := h.Snapshot()
	assert.Equal(t, 0.0, snap.Max)

	h.UpdateSnapshot()
	snap = h.Snapshot()
	assert.InDelta(t, 200, snap.Max, 5)
	assert.InDelta(t, 100, snap.Min, 5)
}

func TestLatencyHistogramResetClearsBoth(t *testing.T) {
	h := NewLatencyHistogram()
	h.RecordValue(500)
	h.UpdateSnapshot()
	h.Reset()
	snap := h.Snapshot()
	assert.Equal(t, 0.0, snap.Max)
}

func TestErrorAnalyzerOnlySamplesErrorCodes(t *testing.T) {
	a := NewErrorAnalyzer()
	a.RecordResponseError(1, 200, "ok body")
	a.RecordResponseError(2, 500, "boom")
	a.RecordResponseError(3, 500, "boom again")

	statuses, _ := a.Report(10)
	require.Len(t, statuses, 1)
	assert.Equal(t, 500, statuses[0].StatusCode)
	assert.Equal(t, int64(2), statuses[0].Count)
}

func TestErrorAnalyzerTopNAndRecency(t *testing.T) {
	a := NewErrorAnalyzer()
	for i := 0; i < 5; i++ {
		a.RecordResponseError(int64(i), 404, "not found")
	}
	for i := 0; i < 3; i++ {
		a.RecordResponseError(int64(i), 503, "unavailable")
	}
	statuses, _ := a.Report(1)
	require.Len(t, statuses, 1)
	assert.Equal(t, 404, statuses[0].StatusCode)
	assert.Len(t, statuses[0].Recent, 3)
	assert.Equal(t, int64(4), statuses[0].Recent[0].TimestampMs, "most recent first")
}

func TestErrorAnalyzerExceptionBuckets(t *testing.T) {
	a := NewErrorAnalyzer()
	a.RecordException(1, "timeout", "deadline exceeded", "")
	a.RecordException(2, "timeout", "deadline exceeded", "")
	_, kinds := a.Report(10)
	require.Len(t, kinds, 1)
	assert.Equal(t, "timeout", kinds[0].Kind)
	assert.Equal(t, int64(2), kinds[0].Count)
}

func TestErrorAnalyzerBoundedSamples(t *testing.T) {
	a := NewErrorAnalyzer()
	for i := 0; i < maxErrorSamples+20; i++ {
		a.RecordResponseError(int64(i), 500, "x")
	}
	statuses, _ := a.Report(10)
	assert.Equal(t, int64(maxErrorSamples+20), statuses[0].Count)
}

func TestResourceMonitorSamplesAndTracksMax(t *testing.T) {
	m, err := NewResourceMonitor(10*time.Millisecond, nil)
	require.NoError(t, err)
	m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	snaps := m.Snapshots()
	assert.NotEmpty(t, snaps)
	assert.GreaterOrEqual(t, m.MaxCpuPct(), 0.0)
}
