package fixedpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name string
		raw  uint64
		want float64
	}{
		{"zero", 0, 0},
		{"unit mass", One, 1.0},
		{"half mass", One / 2, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToFloat64(tt.raw), 1e-15)
		})
	}
}

func TestToRaw(t *testing.T) {
	tests := []struct {
		name string
		mass float64
		want uint64
	}{
		{"zero", 0, 0},
		{"negative", -0.5, 0},
		{"nan", math.NaN(), 0},
		{"unit mass", 1.0, One},
		{"half mass", 0.5, One / 2},
		{"overflow clamps to max", 2.0, math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToRaw(tt.mass))
		})
	}
}

func TestRoundTripNotExact(t *testing.T) {
	raw := ToRaw(0.3)
	back := ToFloat64(raw)
	assert.InDelta(t, 0.3, back, 1e-15)
}
