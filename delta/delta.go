// Package delta implements the Dirac delta: a weighted point on the real
// line, used as the atom of a distributional value.
//
// A Delta is a value object. Every mutating-looking operation (WithMass,
// WithPosition, WithRawMass, Add) returns a new Delta rather than mutating
// the receiver.
package delta

import "github.com/signaloid/uxdata/fixedpoint"

// Delta is a weighted point (position, mass). Mass is carried in two
// synchronized forms: RawMass, the authoritative Q0.63 fixed-point integer
// (see fixedpoint.One for the unit-probability constant), and Mass, its
// float64 convenience form. Setting one updates the other.
type Delta struct {
	position float64
	rawMass  uint64
	mass     float64
}

// New constructs a Delta from a position and a float64 mass. Passing NaN
// for mass forces RawMass to zero, per the mass contract.
func New(position float64, mass float64) Delta {
	raw := fixedpoint.ToRaw(mass)
	return Delta{
		position: position,
		rawMass:  raw,
		mass:     fixedpoint.ToFloat64(raw),
	}
}

// NewRaw constructs a Delta from a position and a raw Q0.63 mass.
func NewRaw(position float64, raw uint64) Delta {
	return Delta{
		position: position,
		rawMass:  raw,
		mass:     fixedpoint.ToFloat64(raw),
	}
}

// Position returns the delta's position.
func (d Delta) Position() float64 { return d.position }

// Mass returns the delta's mass as a float64.
func (d Delta) Mass() float64 { return d.mass }

// RawMass returns the delta's authoritative Q0.63 fixed-point mass.
func (d Delta) RawMass() uint64 { return d.rawMass }

// WithPosition returns a copy of d at a new position, mass unchanged.
func (d Delta) WithPosition(position float64) Delta {
	d.position = position
	return d
}

// WithMass returns a copy of d with a new float64 mass. NaN forces RawMass
// to zero.
func (d Delta) WithMass(mass float64) Delta {
	d.rawMass = fixedpoint.ToRaw(mass)
	d.mass = fixedpoint.ToFloat64(d.rawMass)
	return d
}

// WithRawMass returns a copy of d with a new raw Q0.63 mass.
func (d Delta) WithRawMass(raw uint64) Delta {
	d.rawMass = raw
	d.mass = fixedpoint.ToFloat64(raw)
	return d
}

// IsZeroMass reports whether d carries zero mass.
func (d Delta) IsZeroMass() bool {
	return d.rawMass == 0
}

// Add combines a and b into a single delta with mass a.Mass()+b.Mass() and
// position equal to their mass-weighted mean. Used by cure/combine to merge
// adjacent near-duplicate deltas.
func Add(a, b Delta) Delta {
	totalMass := a.mass + b.mass
	if totalMass == 0 {
		return New((a.position+b.position)/2, 0)
	}

	position := (a.position*a.mass + b.position*b.mass) / totalMass
	return New(position, totalMass)
}

// Compare orders two deltas by position alone, using ordinary IEEE-754
// comparison semantics (so NaN compares unordered with everything,
// including itself). Callers MUST partition NaN-position deltas out of a
// slice before sorting it with Compare; see distvalue.Sort.
func Compare(a, b Delta) int {
	switch {
	case a.position < b.position:
		return -1
	case a.position > b.position:
		return 1
	default:
		return 0
	}
}

// Less reports whether a sorts before b by position.
func Less(a, b Delta) bool {
	return a.position < b.position
}

// Equal reports whether a and b have the same position. NaN is never equal
// to anything, including another NaN, matching Compare's IEEE semantics.
func Equal(a, b Delta) bool {
	return a.position == b.position
}
