// Package binning implements the TTR<->histogram reconstruction engine:
// given a sorted finite-delta set, produce the unique piecewise-constant
// bin PDF whose TTR reproduces those deltas, and the inverse operation of
// coarsening a bin PDF back down to a TTR of a given order.
package binning

import (
	"fmt"
	"math"

	"github.com/signaloid/uxdata/delta"
	"github.com/signaloid/uxdata/errs"
	"github.com/signaloid/uxdata/log"
)

// Histogram is a piecewise-constant PDF over a finite support: strictly
// increasing Boundaries (length 2m+1), Widths (length 2m, the difference
// of adjacent boundaries), and Heights (length 2m, all non-negative).
type Histogram struct {
	Boundaries []float64
	Widths     []float64
	Heights    []float64
}

// NumBins returns the number of bins (2m for m input deltas).
func (h Histogram) NumBins() int { return len(h.Heights) }

// TotalMass returns sum(width*height) over every bin.
func (h Histogram) TotalMass() float64 {
	total := 0.0
	for i := range h.Heights {
		total += h.Widths[i] * h.Heights[i]
	}
	return total
}

// DetermineBoundaryPositions computes the interior boundary positions
// (slots 2..2m-2 of the 2m+1-slot boundary array) for a sorted finite
// delta slice of length m. Delta i occupies slot 2i+1. Extremal slots 0
// and 2m are left as NaN, to be filled by HandleExtremalBins.
//
// In TTR mode the interior slots are filled by the same upward coalescence
// sweep the TTR-validity check runs (boundary slot offsets here are one
// more than that check's, because deltas sit at odd slots here and even
// slots there); any slot left NaN, or that violates strict monotonicity
// against its immediate delta neighbors, is repaired by falling back to
// the non-TTR mass-weighted-mean formula. In non-TTR mode every interior
// slot is computed directly by that same formula.
func DetermineBoundaryPositions(deltas []delta.Delta, useTTR bool) []float64 {
	m := len(deltas)
	numSlots := 2*m + 1

	bp := make([]float64, numSlots)
	bm := make([]float64, numSlots)
	for i := range bp {
		bp[i] = math.NaN()
	}

	for j, d := range deltas {
		bp[2*j+1] = d.Position()
		bm[2*j+1] = d.Mass()
	}

	if m < 2 {
		return bp
	}

	if useTTR {
		k := 0
		for (1 << k) < m {
			k++
		}

		for shift := 0; shift < k; shift++ {
			step := 1 << shift
			for i := 1 << (shift + 1); i <= 2*m-2; i += 1 << (shift + 2) {
				left, right := i-step, i+step
				totalMass := bm[left] + bm[right]
				if totalMass > 0 {
					bp[i] = (bp[left]*bm[left] + bp[right]*bm[right]) / totalMass
					bm[i] = totalMass
				}
			}
		}

		for i := 2; i <= 2*m-2; i += 2 {
			if !boundaryIsValid(bp, i) {
				bp[i] = nonTTRBoundary(bp, bm, i)
			}
		}

		return bp
	}

	for i := 2; i <= 2*m-2; i += 2 {
		bp[i] = nonTTRBoundary(bp, bm, i)
	}

	return bp
}

func boundaryIsValid(bp []float64, i int) bool {
	if math.IsNaN(bp[i]) {
		return false
	}
	return bp[i] > bp[i-1] && bp[i] < bp[i+1]
}

// nonTTRBoundary computes the mass-weighted mean of the two delta slots
// immediately flanking interior boundary slot i (i-1 and i+1, always odd
// delta slots by construction).
func nonTTRBoundary(bp, bm []float64, i int) float64 {
	totalMass := bm[i-1] + bm[i+1]
	if totalMass == 0 {
		return (bp[i-1] + bp[i+1]) / 2
	}
	return (bp[i-1]*bm[i-1] + bp[i+1]*bm[i+1]) / totalMass
}

// computeInternalBinWidthsHeights fills the widths of every interior bin
// (indices 1..2m-2, all spanning two already-known boundaries) and the
// heights of the internal bins straddling an internal delta (delta
// indices 1..m-2, bins 2i and 2i+1), per the avg_h rule.
func computeInternalBinWidthsHeights(deltas []delta.Delta, bp []float64) (widths, heights []float64) {
	m := len(deltas)
	widths = make([]float64, 2*m)
	heights = make([]float64, 2*m)

	for i := 1; i <= 2*m-2; i++ {
		widths[i] = bp[i+1] - bp[i]
	}

	for i := 1; i <= m-2; i++ {
		mu := deltas[i].Mass()
		w0, w1 := widths[2*i], widths[2*i+1]
		if w0 <= 0 || w1 <= 0 {
			continue
		}
		avgH := mu / (w0 + w1)
		heights[2*i] = avgH * w1 / w0
		heights[2*i+1] = avgH * w0 / w1
	}

	return widths, heights
}

// HandleExtremalBins fills in the two extremal boundaries (slots 0 and
// 2m), the two extremal bin widths (indices 0 and 2m-1), and the heights
// of the four extremal-pair bins (0, 1, 2m-2, 2m-1), given that every
// interior boundary, width, and internal-delta height has already been
// computed.
func HandleExtremalBins(deltas []delta.Delta, bp, widths, heights []float64) {
	m := len(deltas)

	handleOneEnd(deltas, bp, widths, heights, m, true)
	handleOneEnd(deltas, bp, widths, heights, m, false)
}

func handleOneEnd(deltas []delta.Delta, bp, widths, heights []float64, m int, left bool) {
	var innerSlot, w1Idx, w2Idx, d2Idx, extremeBinIdx, neighborBinIdx int
	var p0 float64

	if left {
		innerSlot = 1
		w1Idx, w2Idx, d2Idx = 1, 2, 2
		extremeBinIdx, neighborBinIdx = 0, 1
		p0 = deltas[0].Mass()
	} else {
		innerSlot = 2*m - 1
		w1Idx, w2Idx, d2Idx = 2*m-2, 2*m-3, 2*m-3
		extremeBinIdx, neighborBinIdx = 2*m-1, 2*m-2
		p0 = deltas[m-1].Mass()
	}

	w1 := widths[w1Idx]
	var w2 float64
	var d2 float64
	if m >= 3 {
		w2 = widths[w2Idx]
		d2 = heights[d2Idx]
	}

	w0 := math.NaN()
	if m >= 6 {
		w0 = quadraticExtremalWidth(p0, w1, w2, d2)
	}

	if math.IsNaN(w0) || w0 <= 0 {
		w0 = w1
	}

	if left {
		bp[0] = bp[innerSlot] - w0
	} else {
		bp[2*m] = bp[innerSlot] + w0
	}

	widths[extremeBinIdx] = w0
	wNeighbor := widths[neighborBinIdx]
	if wNeighbor <= 0 {
		wNeighbor = w0
	}

	if w0 > 0 && wNeighbor > 0 {
		avgH := p0 / (w0 + wNeighbor)
		heights[extremeBinIdx] = avgH * wNeighbor / w0
		heights[neighborBinIdx] = avgH * w0 / wNeighbor
	}
}

// quadraticExtremalWidth solves the zero-second-derivative boundary
// condition's quadratic a*w0^2+b*w0+c=0 for the extremal bin width,
// returning NaN if it has no usable positive root.
//
// The reference producer's fallback trigger ("det is finite or NaN") is
// effectively "always fall back"; this implementation returns NaN (so the
// caller falls back) only when a is zero, det is NaN, infinite or
// negative, or neither root is positive.
func quadraticExtremalWidth(p0, w1, w2, d2 float64) float64 {
	a := d2*w1 - p0
	b := a*w1 - p0*w2
	c := p0 * w1 * (w1 + w2)

	if a == 0 {
		return math.NaN()
	}

	det := b*b - 4*a*c
	if math.IsNaN(det) || math.IsInf(det, 0) || det < 0 {
		return math.NaN()
	}

	sqrtDet := math.Sqrt(det)
	r1 := (-b - sqrtDet) / (2 * a)
	r2 := (-b + sqrtDet) / (2 * a)

	var positives []float64
	if r1 > 0 {
		positives = append(positives, r1)
	}
	if r2 > 0 {
		positives = append(positives, r2)
	}

	switch len(positives) {
	case 0:
		return math.NaN()
	case 1:
		return positives[0]
	default:
		return math.Min(positives[0], positives[1])
	}
}

// GetBinning produces the full Histogram (boundaries, widths, heights) for
// a sorted finite delta slice, by running DetermineBoundaryPositions, the
// internal-bin width/height computation, and HandleExtremalBins in that
// order. Requires len(deltas) >= 2.
func GetBinning(deltas []delta.Delta, useTTR bool) (Histogram, error) {
	m := len(deltas)
	if m < 2 {
		return Histogram{}, fmt.Errorf("binning: GetBinning requires at least 2 deltas, got %d: %w", m, errs.ErrTooFewDeltas)
	}

	bp := DetermineBoundaryPositions(deltas, useTTR)
	widths, heights := computeInternalBinWidthsHeights(deltas, bp)
	HandleExtremalBins(deltas, bp, widths, heights)

	for i := 1; i < len(bp); i++ {
		if !(bp[i] > bp[i-1]) {
			log.Logger().Warn("binning: boundary positions are not strictly ascending", "index", i)
			break
		}
	}

	return Histogram{Boundaries: bp, Widths: widths, Heights: heights}, nil
}

// CreateBinning is the validated top-level entry point: when useTTR is
// true, it requires len(deltas) == 2^exponent before delegating to
// GetBinning.
func CreateBinning(deltas []delta.Delta, exponent int, useTTR bool) (Histogram, error) {
	if useTTR {
		if exponent < 0 || (1<<exponent) != len(deltas) {
			return Histogram{}, fmt.Errorf("binning: TTR mode requires len(deltas) == 2^exponent (exponent=%d, len=%d): %w", exponent, len(deltas), errs.ErrNotPowerOfTwo)
		}
	}

	return GetBinning(deltas, useTTR)
}

// BinPdfToTTR computes the TTR of a bin PDF at the given order.
//
// Order 0 returns the single expected delta (the PDF's mean position and
// total mass). Higher orders locate that expected delta within the
// boundary list, split the histogram there (inserting a new boundary if
// the expected position does not already coincide with one), and recurse
// on the two halves at order-1, concatenating left then right.
func BinPdfToTTR(h Histogram, order int) []delta.Delta {
	expected := expectedDelta(h)
	if order == 0 {
		return []delta.Delta{expected}
	}

	idx, exact := locateBoundary(h.Boundaries, expected.Position())

	if exact {
		left := sliceHistogram(h, 0, idx)
		right := sliceHistogram(h, idx, h.NumBins())
		return concatTTR(left, right, order)
	}

	left, right := splitHistogramAt(h, idx, expected.Position())
	return concatTTR(left, right, order)
}

func concatTTR(left, right Histogram, order int) []delta.Delta {
	leftDeltas := recurseOrEmpty(left, order-1)
	rightDeltas := recurseOrEmpty(right, order-1)

	out := make([]delta.Delta, 0, len(leftDeltas)+len(rightDeltas))
	out = append(out, leftDeltas...)
	out = append(out, rightDeltas...)
	return out
}

func recurseOrEmpty(h Histogram, order int) []delta.Delta {
	if h.NumBins() == 0 {
		return nil
	}
	return BinPdfToTTR(h, order)
}

// expectedDelta returns (mean position, total mass) of the histogram's
// implied distribution: mean = sum(w*h*mid)/sum(w*h), mass = sum(w*h).
func expectedDelta(h Histogram) delta.Delta {
	var weightedPos, totalMass float64
	for i := range h.Heights {
		wh := h.Widths[i] * h.Heights[i]
		mid := (h.Boundaries[i] + h.Boundaries[i+1]) / 2
		weightedPos += wh * mid
		totalMass += wh
	}

	if totalMass == 0 {
		return delta.New(0, 0)
	}

	return delta.New(weightedPos/totalMass, totalMass)
}

// locateBoundary finds where position sits in a strictly ascending
// boundary list: exact=true and idx is the matching index if it coincides
// with a boundary, otherwise idx is the smallest index with
// boundaries[idx] > position.
func locateBoundary(boundaries []float64, position float64) (idx int, exact bool) {
	for i, b := range boundaries {
		if b == position {
			return i, true
		}
		if b > position {
			return i, false
		}
	}
	return len(boundaries), false
}

// sliceHistogram returns the sub-histogram spanning bins [from, to).
func sliceHistogram(h Histogram, from, to int) Histogram {
	if from >= to {
		return Histogram{}
	}
	return Histogram{
		Boundaries: h.Boundaries[from : to+1],
		Widths:     h.Widths[from:to],
		Heights:    h.Heights[from:to],
	}
}

// splitHistogramAt inserts a new boundary at position within bin index-1
// (the bin whose upper boundary is boundaries[idx]), splitting it into two
// parts that both keep the original bin's height, and returns the two
// resulting sub-histograms on either side of the new boundary.
func splitHistogramAt(h Histogram, idx int, position float64) (left, right Histogram) {
	binIdx := idx - 1

	leftBoundaries := append([]float64{}, h.Boundaries[:idx]...)
	leftBoundaries = append(leftBoundaries, position)
	leftWidths := append([]float64{}, h.Widths[:binIdx]...)
	leftWidths = append(leftWidths, position-h.Boundaries[binIdx])
	leftHeights := append([]float64{}, h.Heights[:binIdx]...)
	leftHeights = append(leftHeights, h.Heights[binIdx])

	rightBoundaries := append([]float64{position}, h.Boundaries[idx:]...)
	rightWidths := append([]float64{h.Boundaries[idx] - position}, h.Widths[idx:]...)
	rightHeights := append([]float64{h.Heights[binIdx]}, h.Heights[idx:]...)

	left = Histogram{Boundaries: leftBoundaries, Widths: leftWidths, Heights: leftHeights}
	right = Histogram{Boundaries: rightBoundaries, Widths: rightWidths, Heights: rightHeights}

	return left, right
}
