// Package distvalue implements the distributional value model: a
// normalized collection of Dirac deltas plus metadata, together with the
// normalization pipeline (drop-zero-mass, sort, cure/combine) and the
// summary statistics and TTR-validity check defined for it.
package distvalue

import (
	"math"
	"sort"

	"github.com/signaloid/uxdata/delta"
)

// DistributionalValue is a discrete probability measure: an ordered
// sequence of Dirac deltas plus a particle (point-estimate) value and
// producer metadata.
//
// Mutation is always explicit: DropZeroMass, Sort, and
// CombineDiracDeltas replace the receiver's delta slice in place and
// invalidate the cached scalars and flags that could be affected. Two
// contexts mutating the same value concurrently is undefined; callers must
// exclude that externally.
type DistributionalValue struct {
	// ParticleValue is the optional scalar summary supplied by the
	// producer. nil means "not supplied".
	ParticleValue *float64
	// URType is the opaque, producer-defined representation tag carried
	// end-to-end on the wire.
	URType uint8
	// DoublePrecision selects the wire width for support positions:
	// float64 when true, float32 when false. It has no effect on the
	// in-memory representation, which is always float64.
	DoublePrecision bool

	deltas []delta.Delta

	meanCache     cachedFloat
	varianceCache cachedFloat

	hasNoZeroMass  cachedBool
	isFiniteFlag   cachedBool
	isSortedFlag   cachedBool
	isCuredFlag    cachedBool
	isFullValidTTR cachedBool
}

// cachedBool is a tri-state cache: unknown until computed, then true or
// false. Any mutation that could invalidate the flag resets it to unknown
// rather than leaving a stale boolean lying around.
type cachedBool struct {
	known bool
	value bool
}

func (c *cachedBool) invalidate() { c.known = false }
func (c *cachedBool) set(v bool)  { c.known, c.value = true, v }

// cachedFloat is a tri-state cache holding either "not yet computed",
// "computed, no value" (ptr == nil, e.g. UR_order == 0), or "computed,
// value" (ptr != nil; the value itself may be NaN or infinite).
type cachedFloat struct {
	known bool
	ptr   *float64
}

func (c *cachedFloat) invalidate() { c.known, c.ptr = false, nil }

// New constructs a DistributionalValue from an unordered, unnormalized
// slice of deltas. Callers normalize explicitly via DropZeroMass, Sort and
// CombineDiracDeltas (or Cure, which is CombineDiracDeltas with exact
// thresholds) before relying on normalized-value invariants.
func New(particleValue *float64, urType uint8, doublePrecision bool, deltas []delta.Delta) *DistributionalValue {
	out := make([]delta.Delta, len(deltas))
	copy(out, deltas)

	return &DistributionalValue{
		ParticleValue:   particleValue,
		URType:          urType,
		DoublePrecision: doublePrecision,
		deltas:          out,
	}
}

// Deltas returns the value's current delta slice. The slice reflects
// whatever normalization has (or has not) been applied so far; callers
// must not mutate the returned slice.
func (v *DistributionalValue) Deltas() []delta.Delta { return v.deltas }

// Order returns the current number of deltas (UR_order once fully
// normalized).
func (v *DistributionalValue) Order() int { return len(v.deltas) }

func (v *DistributionalValue) invalidateAll() {
	v.meanCache.invalidate()
	v.varianceCache.invalidate()
	v.hasNoZeroMass.invalidate()
	v.isFiniteFlag.invalidate()
	v.isSortedFlag.invalidate()
	v.isCuredFlag.invalidate()
	v.isFullValidTTR.invalidate()
}

// DropZeroMass removes every delta with zero mass. Idempotent.
func (v *DistributionalValue) DropZeroMass() {
	out := v.deltas[:0:0]
	for _, d := range v.deltas {
		if !d.IsZeroMass() {
			out = append(out, d)
		}
	}
	v.deltas = out

	v.invalidateAll()
	v.hasNoZeroMass.set(true)
}

// classify is the position-kind of a delta for partitioning purposes.
type classify int

const (
	classFinite classify = iota
	classNaN
	classNegInf
	classPosInf
)

func classifyPosition(p float64) classify {
	switch {
	case math.IsNaN(p):
		return classNaN
	case math.IsInf(p, -1):
		return classNegInf
	case math.IsInf(p, 1):
		return classPosInf
	default:
		return classFinite
	}
}

// Sort partitions deltas by position into {finite, NaN, -Inf, +Inf},
// sorts the finite deltas ascending by position, sums the mass of each
// special class into a single reservoir delta, and appends any reservoir
// with positive mass to the tail in order [NaN, -Inf, +Inf]. Idempotent.
func (v *DistributionalValue) Sort() {
	finite := make([]delta.Delta, 0, len(v.deltas))
	var nanMass, negInfMass, posInfMass float64

	for _, d := range v.deltas {
		switch classifyPosition(d.Position()) {
		case classFinite:
			finite = append(finite, d)
		case classNaN:
			nanMass += d.Mass()
		case classNegInf:
			negInfMass += d.Mass()
		case classPosInf:
			posInfMass += d.Mass()
		}
	}

	sort.Slice(finite, func(i, j int) bool {
		return delta.Less(finite[i], finite[j])
	})

	out := finite
	if nanMass > 0 {
		out = append(out, delta.New(math.NaN(), nanMass))
	}
	if negInfMass > 0 {
		out = append(out, delta.New(math.Inf(-1), negInfMass))
	}
	if posInfMass > 0 {
		out = append(out, delta.New(math.Inf(1), posInfMass))
	}

	v.deltas = out

	v.invalidateAll()
	v.isSortedFlag.set(true)
}

// CombineDiracDeltas merges adjacent finite deltas whose position
// difference is at most threshold = max(|finiteMean|*relativeMeanThreshold,
// (maxFinitePos-minPosition)*relativeRangeThreshold), using delta.Add.
// Deltas are walked in sorted order; Sort is run first if the receiver is
// not already known to be sorted. Passing (0, 0) performs exact-position
// de-duplication (see Cure).
func (v *DistributionalValue) CombineDiracDeltas(relativeMeanThreshold, relativeRangeThreshold float64) {
	if !v.isSortedFlag.known || !v.isSortedFlag.value {
		v.Sort()
	}

	finite := make([]delta.Delta, 0, len(v.deltas))
	var specials []delta.Delta
	for _, d := range v.deltas {
		if classifyPosition(d.Position()) == classFinite {
			finite = append(finite, d)
		} else {
			specials = append(specials, d)
		}
	}

	if len(finite) == 0 {
		v.invalidateAll()
		v.isCuredFlag.set(true)
		v.isSortedFlag.set(true)
		return
	}

	finiteMean, minPos, maxPos := 0.0, finite[0].Position(), finite[0].Position()
	totalMass := 0.0
	for _, d := range finite {
		finiteMean += d.Position() * d.Mass()
		totalMass += d.Mass()
		if d.Position() < minPos {
			minPos = d.Position()
		}
		if d.Position() > maxPos {
			maxPos = d.Position()
		}
	}
	if totalMass > 0 {
		finiteMean /= totalMass
	}

	threshold := math.Max(
		math.Abs(finiteMean)*relativeMeanThreshold,
		(maxPos-minPos)*relativeRangeThreshold,
	)

	merged := make([]delta.Delta, 0, len(finite))
	merged = append(merged, finite[0])
	for _, d := range finite[1:] {
		last := merged[len(merged)-1]
		if math.Abs(d.Position()-last.Position()) <= threshold {
			merged[len(merged)-1] = delta.Add(last, d)
		} else {
			merged = append(merged, d)
		}
	}

	merged = append(merged, specials...)
	v.deltas = merged

	v.invalidateAll()
	v.isCuredFlag.set(true)
	v.isSortedFlag.set(true)
}

// Cure is CombineDiracDeltas with exact-position de-duplication
// (thresholds of zero).
func (v *DistributionalValue) Cure() {
	v.CombineDiracDeltas(0, 0)
}

// HasNoZeroMass reports whether the value is known to have no zero-mass
// deltas.
func (v *DistributionalValue) HasNoZeroMass() bool {
	if v.hasNoZeroMass.known {
		return v.hasNoZeroMass.value
	}

	for _, d := range v.deltas {
		if d.IsZeroMass() {
			v.hasNoZeroMass.set(false)
			return false
		}
	}
	v.hasNoZeroMass.set(true)

	return true
}

// IsFinite reports whether every delta's position is finite.
//
// The original producer's equivalent check tested finiteness of the delta
// object itself rather than its position, which always evaluates false;
// this is almost certainly a bug in that source. This implementation
// instead tests delta.Position(), the behavior a faithful re-implementation
// should have.
func (v *DistributionalValue) IsFinite() bool {
	if v.isFiniteFlag.known {
		return v.isFiniteFlag.value
	}

	for _, d := range v.deltas {
		if !isFinitePosition(d.Position()) {
			v.isFiniteFlag.set(false)
			return false
		}
	}
	v.isFiniteFlag.set(true)

	return true
}

func isFinitePosition(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0)
}

type massSummary struct {
	nanMass, negInfMass, posInfMass float64
	finite                          []delta.Delta
}

func (v *DistributionalValue) summarize() massSummary {
	var s massSummary
	s.finite = make([]delta.Delta, 0, len(v.deltas))

	for _, d := range v.deltas {
		switch classifyPosition(d.Position()) {
		case classFinite:
			s.finite = append(s.finite, d)
		case classNaN:
			s.nanMass += d.Mass()
		case classNegInf:
			s.negInfMass += d.Mass()
		case classPosInf:
			s.posInfMass += d.Mass()
		}
	}

	return s
}

// Mean returns the value's mass-weighted mean, or nil if UR_order == 0.
//
//   - A positive-mass NaN delta forces the mean to NaN.
//   - Positive mass at both +/-Inf forces the mean to NaN.
//   - Positive mass at exactly one of +/-Inf forces the mean to that
//     infinity.
//   - Otherwise the mean is the mass-weighted mean of the finite deltas.
func (v *DistributionalValue) Mean() *float64 {
	if v.meanCache.known {
		return v.meanCache.ptr
	}

	result := v.computeMean()
	v.meanCache = cachedFloat{known: true, ptr: result}

	return result
}

func (v *DistributionalValue) computeMean() *float64 {
	if len(v.deltas) == 0 {
		return nil
	}

	s := v.summarize()

	nan := math.NaN()
	switch {
	case s.nanMass > 0:
		return &nan
	case s.negInfMass > 0 && s.posInfMass > 0:
		return &nan
	case s.negInfMass > 0:
		negInf := math.Inf(-1)
		return &negInf
	case s.posInfMass > 0:
		posInf := math.Inf(1)
		return &posInf
	}

	var weightedSum, totalMass float64
	for _, d := range s.finite {
		weightedSum += d.Position() * d.Mass()
		totalMass += d.Mass()
	}
	if totalMass == 0 {
		return &nan
	}

	mean := weightedSum / totalMass
	return &mean
}

// Variance returns the value's mass-weighted second central moment over
// the finite deltas, or nil when the mean is not finite or there are no
// deltas.
func (v *DistributionalValue) Variance() *float64 {
	if v.varianceCache.known {
		return v.varianceCache.ptr
	}

	result := v.computeVariance()
	v.varianceCache = cachedFloat{known: true, ptr: result}

	return result
}

func (v *DistributionalValue) computeVariance() *float64 {
	mean := v.Mean()
	if mean == nil || !isFinitePosition(*mean) {
		return nil
	}

	s := v.summarize()

	var weightedSq, totalMass float64
	for _, d := range s.finite {
		diff := d.Position() - *mean
		weightedSq += d.Mass() * diff * diff
		totalMass += d.Mass()
	}
	if totalMass == 0 {
		return nil
	}

	variance := weightedSq / totalMass
	return &variance
}

// HasSpecialValues reports whether any of the NaN/-Inf/+Inf reservoirs
// carry positive mass.
func (v *DistributionalValue) HasSpecialValues() bool {
	s := v.summarize()
	return s.nanMass > 0 || s.negInfMass > 0 || s.posInfMass > 0
}

// FiniteDeltas returns the finite-position deltas in their current order.
func (v *DistributionalValue) FiniteDeltas() []delta.Delta {
	return v.summarize().finite
}

// Positions returns the position of every delta currently held, in order.
func (v *DistributionalValue) Positions() []float64 {
	out := make([]float64, len(v.deltas))
	for i, d := range v.deltas {
		out[i] = d.Position()
	}
	return out
}

// Masses returns the mass of every delta currently held, in order.
func (v *DistributionalValue) Masses() []float64 {
	out := make([]float64, len(v.deltas))
	for i, d := range v.deltas {
		out[i] = d.Mass()
	}
	return out
}

// CheckIsFullValidTTR reports whether the value, after drop-zero-mass and
// exact cure, is a full valid k-th-order TTR: every delta finite,
// UR_order a power of two, and the boundary-coalescence recurrence
// producing a strictly ascending boundary-position sequence.
func (v *DistributionalValue) CheckIsFullValidTTR() bool {
	if v.isFullValidTTR.known {
		return v.isFullValidTTR.value
	}

	ok := v.computeIsFullValidTTR()
	v.isFullValidTTR.set(ok)

	return ok
}

func (v *DistributionalValue) computeIsFullValidTTR() bool {
	normalized := New(v.ParticleValue, v.URType, v.DoublePrecision, v.deltas)
	normalized.DropZeroMass()
	normalized.Cure()

	deltas := normalized.deltas
	n := len(deltas)
	if n == 0 {
		return false
	}

	for _, d := range deltas {
		if !isFinitePosition(d.Position()) {
			return false
		}
	}

	k := 0
	for (1 << k) < n {
		k++
	}
	if (1 << k) != n {
		return false
	}

	return ttrCoalescenceStrictlyAscending(deltas, k)
}

// ttrCoalescenceStrictlyAscending runs the boundary-coalescence recurrence
// over sorted finite deltas placed at even indices of a
// (2*len(deltas)-1)-slot boundary array and reports whether the fully
// populated boundary-position array ends up strictly ascending.
func ttrCoalescenceStrictlyAscending(deltas []delta.Delta, k int) bool {
	n := len(deltas)
	numBoundaries := 2*n - 1

	bp := make([]float64, numBoundaries)
	bm := make([]float64, numBoundaries)

	for j, d := range deltas {
		bp[2*j] = d.Position()
		bm[2*j] = d.Mass()
	}

	for shift := 0; shift < k; shift++ {
		step := 1 << shift
		for i := (1 << (shift + 1)) - 1; i < numBoundaries; i += 1 << (shift + 2) {
			left, right := i-step, i+step
			totalMass := bm[left] + bm[right]
			if totalMass == 0 {
				return false
			}
			bp[i] = (bp[left]*bm[left] + bp[right]*bm[right]) / totalMass
			bm[i] = totalMass
		}
	}

	for i := 1; i < numBoundaries; i++ {
		if !(bp[i] > bp[i-1]) {
			return false
		}
	}

	return true
}
