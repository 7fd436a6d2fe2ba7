package plotdata

import (
	"math"
	"testing"

	"github.com/signaloid/uxdata/delta"
	"github.com/signaloid/uxdata/distvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDistValue(deltas ...delta.Delta) *distvalue.DistributionalValue {
	return distvalue.New(nil, 0, true, deltas)
}

func TestNewRejectsEmptyValue(t *testing.T) {
	v := newDistValue()
	_, err := New(v)
	require.Error(t, err)
}

func TestNewSingleDeltaProducesSingleArrow(t *testing.T) {
	v := newDistValue(delta.New(3.0, 1.0))
	pd, err := New(v)
	require.NoError(t, err)

	require.Len(t, pd.Positions, 1)
	assert.Equal(t, 3.0, pd.Positions[0])
	assert.InDelta(t, 2.5, pd.MinRange, 1e-9)
	assert.InDelta(t, 3.5, pd.MaxRange, 1e-9)
	assert.InDelta(t, 1.0, pd.TotalRange, 1e-9)
}

func TestNewHistogramProducesRects(t *testing.T) {
	deltas := []delta.Delta{
		delta.New(0, 0.25), delta.New(1, 0.25), delta.New(2, 0.25), delta.New(3, 0.25),
	}
	v := newDistValue(deltas...)
	pd, err := New(v)
	require.NoError(t, err)

	require.NotEmpty(t, pd.Rects)
	for _, r := range pd.Rects {
		assert.Greater(t, r.X1, r.X0)
	}
}

func TestNewCapturesSpecialBars(t *testing.T) {
	deltas := []delta.Delta{
		delta.New(0, 0.25), delta.New(1, 0.25),
		delta.New(math.NaN(), 0.25), delta.New(math.Inf(1), 0.25),
	}
	v := newDistValue(deltas...)
	pd, err := New(v)
	require.NoError(t, err)

	assert.True(t, pd.NaN.Present)
	assert.InDelta(t, 0.25, pd.NaN.Mass, 1e-9)
	assert.True(t, pd.PosInf.Present)
	assert.False(t, pd.NegInf.Present)
}

func TestWithResolutionOption(t *testing.T) {
	var o plotOptions
	WithResolution(8)(&o)
	require.NotNil(t, o.resolution)
	assert.Equal(t, 8, *o.resolution)
}

func TestIsNaNPosPosition(t *testing.T) {
	assert.True(t, isNaNPosition(math.NaN()))
	assert.False(t, isNaNPosition(1.0))
}

func TestIsNegInfPosition(t *testing.T) {
	assert.True(t, isNegInfPosition(math.Inf(-1)))
	assert.False(t, isNegInfPosition(math.Inf(1)))
}

func TestIsPosInfPosition(t *testing.T) {
	assert.True(t, isPosInfPosition(math.Inf(1)))
	assert.False(t, isPosInfPosition(math.Inf(-1)))
}
