package binning

import (
	"math"
	"testing"

	"github.com/signaloid/uxdata/delta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramNumBinsAndTotalMass(t *testing.T) {
	h := Histogram{
		Boundaries: []float64{0, 1, 2},
		Widths:     []float64{1, 1},
		Heights:    []float64{0.5, 0.5},
	}
	assert.Equal(t, 2, h.NumBins())
	assert.InDelta(t, 1.0, h.TotalMass(), 1e-9)
}

func TestGetBinningRequiresAtLeastTwoDeltas(t *testing.T) {
	_, err := GetBinning([]delta.Delta{delta.New(0, 1.0)}, false)
	require.Error(t, err)
}

func TestGetBinningTwoDeltas(t *testing.T) {
	deltas := []delta.Delta{delta.New(0, 0.5), delta.New(10, 0.5)}
	h, err := GetBinning(deltas, false)
	require.NoError(t, err)

	require.Equal(t, 4, h.NumBins())
	assert.InDelta(t, -5, h.Boundaries[0], 1e-9)
	assert.InDelta(t, 0, h.Boundaries[1], 1e-9)
	assert.InDelta(t, 5, h.Boundaries[2], 1e-9)
	assert.InDelta(t, 10, h.Boundaries[3], 1e-9)
	assert.InDelta(t, 15, h.Boundaries[4], 1e-9)
	assert.InDelta(t, 1.0, h.TotalMass(), 1e-9)

	for i := 1; i < len(h.Boundaries); i++ {
		assert.Greater(t, h.Boundaries[i], h.Boundaries[i-1])
	}
}

func TestCreateBinningTTRRequiresPowerOfTwo(t *testing.T) {
	deltas := []delta.Delta{delta.New(0, 1.0 / 3), delta.New(1, 1.0 / 3), delta.New(2, 1.0 / 3)}
	_, err := CreateBinning(deltas, 1, true)
	require.Error(t, err)
}

func TestCreateBinningTTRAcceptsPowerOfTwo(t *testing.T) {
	deltas := []delta.Delta{delta.New(0, 0.25), delta.New(1, 0.25), delta.New(2, 0.25), delta.New(3, 0.25)}
	h, err := CreateBinning(deltas, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 8, h.NumBins())
}

func TestBinPdfToTTROrderZeroIsExpectedDelta(t *testing.T) {
	deltas := []delta.Delta{delta.New(0, 0.5), delta.New(10, 0.5)}
	h, err := GetBinning(deltas, false)
	require.NoError(t, err)

	ttr := BinPdfToTTR(h, 0)
	require.Len(t, ttr, 1)
	assert.InDelta(t, 5.0, ttr[0].Position(), 1e-9)
	assert.InDelta(t, 1.0, ttr[0].Mass(), 1e-9)
}

func TestBinPdfToTTRHigherOrderSplitsIntoTwo(t *testing.T) {
	deltas := []delta.Delta{delta.New(0, 0.5), delta.New(10, 0.5)}
	h, err := GetBinning(deltas, false)
	require.NoError(t, err)

	ttr := BinPdfToTTR(h, 1)
	require.Len(t, ttr, 2)

	totalMass := ttr[0].Mass() + ttr[1].Mass()
	assert.InDelta(t, 1.0, totalMass, 1e-9)
}

func TestLocateBoundaryExactMatch(t *testing.T) {
	idx, exact := locateBoundary([]float64{0, 5, 10}, 5)
	assert.True(t, exact)
	assert.Equal(t, 1, idx)
}

func TestLocateBoundaryBetween(t *testing.T) {
	idx, exact := locateBoundary([]float64{0, 5, 10}, 3)
	assert.False(t, exact)
	assert.Equal(t, 1, idx)
}

func TestLocateBoundaryPastEnd(t *testing.T) {
	idx, exact := locateBoundary([]float64{0, 5, 10}, 99)
	assert.False(t, exact)
	assert.Equal(t, 3, idx)
}

func TestSliceHistogramEmptyWhenFromNotLessThanTo(t *testing.T) {
	h := sliceHistogram(Histogram{Boundaries: []float64{0, 1, 2}, Widths: []float64{1, 1}, Heights: []float64{1, 1}}, 1, 1)
	assert.Equal(t, 0, h.NumBins())
}

func TestTTRBinningRoundTripReproducesDeltas(t *testing.T) {
	deltas := []delta.Delta{
		delta.NewRaw(-1, 1<<61),
		delta.NewRaw(0, 1<<61),
		delta.NewRaw(1, 1<<61),
		delta.NewRaw(2, 1<<61),
	}

	h, err := CreateBinning(deltas, 2, true)
	require.NoError(t, err)
	require.Equal(t, 8, h.NumBins())

	for i := 1; i < len(h.Boundaries); i++ {
		require.Greater(t, h.Boundaries[i], h.Boundaries[i-1])
	}

	ttr := BinPdfToTTR(h, 2)
	require.Len(t, ttr, 4)
	for i, d := range deltas {
		assert.InDelta(t, d.Position(), ttr[i].Position(), 1e-12)
		assert.InDelta(t, d.Mass(), ttr[i].Mass(), 1e-12)
	}
}

func TestNonTTRBinningInnerBoundariesAreWeightedMeans(t *testing.T) {
	deltas := []delta.Delta{
		delta.New(0, 0.5),
		delta.New(1, 0.25),
		delta.New(3, 0.25),
	}

	h, err := CreateBinning(deltas, 0, false)
	require.NoError(t, err)
	require.Equal(t, 6, h.NumBins())

	for i := 1; i < len(h.Boundaries); i++ {
		require.Greater(t, h.Boundaries[i], h.Boundaries[i-1])
	}

	// Inner boundaries sit at the mass-weighted means of the flanking
	// delta positions.
	assert.InDelta(t, (0*0.5+1*0.25)/0.75, h.Boundaries[2], 1e-12)
	assert.InDelta(t, (1*0.25+3*0.25)/0.5, h.Boundaries[4], 1e-12)

	assert.InDelta(t, 1.0, h.TotalMass(), 1e-12)
}

func TestBinningConservesTotalMass(t *testing.T) {
	deltas := []delta.Delta{
		delta.New(-2, 0.1), delta.New(-1, 0.15), delta.New(0, 0.2),
		delta.New(1, 0.2), delta.New(2, 0.15), delta.New(3, 0.1),
		delta.New(5, 0.05), delta.New(8, 0.05),
	}

	var want float64
	for _, d := range deltas {
		want += d.Mass()
	}

	for _, useTTR := range []bool{false, true} {
		h, err := CreateBinning(deltas, 3, useTTR)
		require.NoError(t, err)
		assert.InDelta(t, want, h.TotalMass(), 1e-12)
		for i := 1; i < len(h.Boundaries); i++ {
			assert.Greater(t, h.Boundaries[i], h.Boundaries[i-1])
		}
	}
}

func TestQuadraticExtremalWidthPositiveRoot(t *testing.T) {
	w0 := quadraticExtremalWidth(0.1, 1, 1, 0.05)
	assert.InDelta(t, 1.0, w0, 1e-9)
}

func TestQuadraticExtremalWidthNegativeDiscriminantFallsBack(t *testing.T) {
	w0 := quadraticExtremalWidth(1, 2, 3, 1)
	assert.True(t, math.IsNaN(w0))
}

func TestQuadraticExtremalWidthDegenerateAIsZero(t *testing.T) {
	w0 := quadraticExtremalWidth(1, 1, 1, 1)
	assert.True(t, math.IsNaN(w0))
}
