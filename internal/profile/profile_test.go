package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableIsConstant(t *testing.T) {
	s, err := NewStable(100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.TpsAt(0, 2000))
	assert.Equal(t, 100.0, s.TpsAt(1999, 2000))
	assert.Equal(t, 100.0, s.MaxTps())
}

func TestStableRejectsNonPositive(t *testing.T) {
	_, err := NewStable(0)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestRampInterpolatesMonotonically(t *testing.T) {
	r, err := NewRamp(10, 100, 1000)
	require.NoError(t, err)

	assert.InDelta(t, 10, r.TpsAt(0, 2000), 0.01)
	mid := r.TpsAt(500, 2000)
	assert.InDelta(t, 55, mid, 10)
	assert.Equal(t, 100.0, r.TpsAt(1000, 2000))
	assert.Equal(t, 100.0, r.TpsAt(1500, 2000))

	prev := r.TpsAt(0, 2000)
	for ms := int64(1); ms <= 1000; ms += 50 {
		cur := r.TpsAt(ms, 2000)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestSpikeIsPiecewiseConstant(t *testing.T) {
	s, err := NewSpike(10, 200, 500, 300)
	require.NoError(t, err)

	assert.Equal(t, 10.0, s.TpsAt(0, 2000))
	assert.Equal(t, 10.0, s.TpsAt(499, 2000))
	assert.Equal(t, 200.0, s.TpsAt(500, 2000))
	assert.Equal(t, 200.0, s.TpsAt(799, 2000))
	assert.Equal(t, 10.0, s.TpsAt(800, 2000))
}

func TestCustomClampsAndInterpolates(t *testing.T) {
	c, err := NewCustom([]Point{
		{TMillis: 1000, Tps: 50},
		{TMillis: 0, Tps: 10},
		{TMillis: 2000, Tps: 30},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, c.TpsAt(-100, 2000))
	assert.Equal(t, 10.0, c.TpsAt(0, 2000))
	assert.InDelta(t, 30, c.TpsAt(500, 2000), 0.01)
	assert.Equal(t, 50.0, c.TpsAt(1000, 2000))
	assert.Equal(t, 30.0, c.TpsAt(2000, 2000))
	assert.Equal(t, 30.0, c.TpsAt(5000, 2000))
}

func TestCustomRejectsEmptyPoints(t *testing.T) {
	_, err := NewCustom(nil)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestAllProfilesNeverNegative(t *testing.T) {
	profiles := []Profile{}
	s, _ := NewStable(5)
	r, _ := NewRamp(0, 5, 100)
	sp, _ := NewSpike(0, 5, 10, 20)
	c, _ := NewCustom([]Point{{TMillis: 0, Tps: 0}, {TMillis: 100, Tps: 5}})
	profiles = append(profiles, s, r, sp, c)

	for _, p := range profiles {
		for ms := int64(-50); ms <= 500; ms += 10 {
			assert.GreaterOrEqual(t, p.TpsAt(ms, 1000), 0.0)
		}
	}
}
