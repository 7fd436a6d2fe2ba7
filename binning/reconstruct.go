package binning

import (
	"fmt"
	"math"

	"github.com/signaloid/uxdata/distvalue"
	"github.com/signaloid/uxdata/errs"
	"github.com/signaloid/uxdata/log"
)

// ReconstructKind distinguishes the three shapes a Reconstruct result can
// take: a degenerate empty result, a single Dirac arrow, or a full
// histogram.
type ReconstructKind int

const (
	// KindEmpty means normalization left zero finite deltas.
	KindEmpty ReconstructKind = iota
	// KindSingle means normalization left exactly one finite delta,
	// plotted as a single Dirac arrow rather than a histogram bin.
	KindSingle
	// KindHistogram means the full TTR-binning pipeline ran.
	KindHistogram
)

// ReconstructResult is the outcome of Reconstruct.
type ReconstructResult struct {
	Kind ReconstructKind

	// Histogram is populated when Kind == KindHistogram.
	Histogram Histogram

	// SinglePosition and SingleMass are populated when Kind == KindSingle.
	SinglePosition float64
	SingleMass     float64
}

// Reconstruct builds the plotting representation for a distributional
// value: normalize (drop-zero, then CombineDiracDeltas at the default
// 1e-14/1e-12 relative thresholds), special-case 0
// and 1 finite deltas, otherwise derive the effective plotting resolution,
// seed a non-TTR histogram, coarsen it to a TTR of the resulting order,
// and rebuild the final histogram in TTR mode at that same order.
//
// resolution is the caller's requested plotting resolution; a nil value
// means "no preference", deferring entirely to the 2*machine-representation
// default.
func Reconstruct(value *distvalue.DistributionalValue, resolution *int) (ReconstructResult, error) {
	normalized := distvalue.New(value.ParticleValue, value.URType, value.DoublePrecision, value.Deltas())
	normalized.DropZeroMass()
	normalized.CombineDiracDeltas(1e-14, 1e-12)

	finite := normalized.FiniteDeltas()

	switch len(finite) {
	case 0:
		log.Logger().Warn("binning: normalization left zero finite deltas, returning empty result")
		return ReconstructResult{Kind: KindEmpty}, nil
	case 1:
		return ReconstructResult{
			Kind:           KindSingle,
			SinglePosition: finite[0].Position(),
			SingleMass:     finite[0].Mass(),
		}, nil
	}

	urOrder := len(finite)
	machineRepresentation := 1 << floorLog2(urOrder)
	target := 2 * machineRepresentation
	if resolution != nil && *resolution < target {
		target = *resolution
	}

	if !isPowerOfTwo(target) {
		return ReconstructResult{}, fmt.Errorf("binning: plotting resolution %d is not a power of two: %w", target, errs.ErrValidationFailure)
	}

	plottingTTROrder := floorLog2(target) - 1
	if plottingTTROrder < 0 {
		return ReconstructResult{}, fmt.Errorf("binning: plotting resolution %d is too small: %w", target, errs.ErrValidationFailure)
	}

	seed, err := CreateBinning(finite, 0, false)
	if err != nil {
		return ReconstructResult{}, err
	}

	ttrDeltas := BinPdfToTTR(seed, plottingTTROrder)

	final, err := CreateBinning(ttrDeltas, plottingTTROrder, true)
	if err != nil {
		return ReconstructResult{}, err
	}

	return ReconstructResult{Kind: KindHistogram, Histogram: final}, nil
}

func floorLog2(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n))))
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
