// Package plotdata adapts a binning.Histogram into the minimal shape a
// chart library needs: bin rectangles for the finite support plus scalar
// markers for the NaN/-Inf/+Inf special values. It applies no rendering
// policy of its own.
package plotdata

import (
	"fmt"
	"math"

	"github.com/signaloid/uxdata/binning"
	"github.com/signaloid/uxdata/distvalue"
	"github.com/signaloid/uxdata/errs"
)

// PlotOption configures PlotData construction.
type PlotOption func(*plotOptions)

type plotOptions struct {
	resolution *int
}

// WithResolution requests a plotting resolution; the effective resolution
// is clamped to at most 2*machine_representation (see binning.Reconstruct).
func WithResolution(n int) PlotOption {
	return func(o *plotOptions) {
		r := n
		o.resolution = &r
	}
}

// Rect is one finite-support bin rectangle.
type Rect struct {
	X0, X1 float64
	Height float64
	Area   float64
}

// SpecialBar is a scalar marker for one of the three special positions.
type SpecialBar struct {
	Mass    float64
	Present bool
}

// PlotData is the render-ready shape produced from a distributional
// value's reconstructed histogram.
type PlotData struct {
	Positions []float64
	Masses    []float64
	Widths    []float64

	Rects []Rect

	NaN    SpecialBar
	NegInf SpecialBar
	PosInf SpecialBar

	MaxValue   float64
	TotalRange float64
	MinRange   float64
	MaxRange   float64
}

// New reconstructs value's histogram (see binning.Reconstruct) and adapts
// it into PlotData. Returns the distinguished validation error from
// Reconstruct unchanged (e.g. a non-power-of-two resolution).
func New(value *distvalue.DistributionalValue, opts ...PlotOption) (PlotData, error) {
	if value.Order() == 0 || value.Mean() == nil {
		return PlotData{}, fmt.Errorf("plotdata: cannot construct PlotData for a value with UR_order 0 or undefined mean: %w", errs.ErrValidationFailure)
	}

	var o plotOptions
	for _, opt := range opts {
		opt(&o)
	}

	result, err := binning.Reconstruct(value, o.resolution)
	if err != nil {
		return PlotData{}, err
	}

	summary := distvalue.New(value.ParticleValue, value.URType, value.DoublePrecision, value.Deltas())
	summary.Sort()

	var pd PlotData

	switch result.Kind {
	case binning.KindEmpty:
		// Positions/Masses/Widths/Rects stay empty; ranges stay zero.
	case binning.KindSingle:
		p := result.SinglePosition
		pd.Positions = []float64{p}
		pd.Masses = []float64{result.SingleMass}
		pd.MaxValue = result.SingleMass
		pd.MinRange = p - 0.5
		pd.MaxRange = p + 0.5
		pd.TotalRange = 1.0
	case binning.KindHistogram:
		hist := result.Histogram
		pd.Positions = append([]float64{}, hist.Boundaries...)
		pd.Masses = append([]float64{}, hist.Heights...)
		pd.Widths = append([]float64{}, hist.Widths...)

		pd.Rects = make([]Rect, hist.NumBins())
		for i := range hist.Heights {
			pd.Rects[i] = Rect{
				X0:     hist.Boundaries[i],
				X1:     hist.Boundaries[i+1],
				Height: hist.Heights[i],
				Area:   hist.Widths[i] * hist.Heights[i],
			}
			if hist.Heights[i] > pd.MaxValue {
				pd.MaxValue = hist.Heights[i]
			}
		}

		if len(hist.Boundaries) > 0 {
			pd.MinRange = hist.Boundaries[0]
			pd.MaxRange = hist.Boundaries[len(hist.Boundaries)-1]
			pd.TotalRange = pd.MaxRange - pd.MinRange
		}
	}

	for _, d := range summary.Deltas() {
		switch {
		case isNaNPosition(d.Position()):
			pd.NaN = SpecialBar{Mass: d.Mass(), Present: d.Mass() > 0}
		case isNegInfPosition(d.Position()):
			pd.NegInf = SpecialBar{Mass: d.Mass(), Present: d.Mass() > 0}
		case isPosInfPosition(d.Position()):
			pd.PosInf = SpecialBar{Mass: d.Mass(), Present: d.Mass() > 0}
		}
	}

	return pd, nil
}

func isNaNPosition(p float64) bool    { return math.IsNaN(p) }
func isNegInfPosition(p float64) bool { return math.IsInf(p, -1) }
func isPosInfPosition(p float64) bool { return math.IsInf(p, 1) }
