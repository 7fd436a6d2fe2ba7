package uxcodec

import (
	"math"
	"strings"
	"testing"

	"github.com/signaloid/uxdata/delta"
	"github.com/signaloid/uxdata/distvalue"
	"github.com/signaloid/uxdata/endian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleValue(particle *float64) *distvalue.DistributionalValue {
	deltas := []delta.Delta{delta.New(0, 0.5), delta.New(10, 0.5)}
	return distvalue.New(particle, 3, true, deltas)
}

func TestEncodeDecodeBytesRoundTrip(t *testing.T) {
	p := 1.5
	v := sampleValue(&p)

	encoded := EncodeBytes(v)
	decoded, err := DecodeBytes(encoded, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	require.NotNil(t, decoded.ParticleValue)
	assert.InDelta(t, 1.5, *decoded.ParticleValue, 1e-9)
	assert.Equal(t, v.URType, decoded.URType)
	require.Equal(t, v.Order(), decoded.Order())

	reencoded := EncodeBytes(decoded)
	assert.Equal(t, encoded, reencoded)
}

func TestEncodeBytesNilParticleWritesNaNSentinel(t *testing.T) {
	v := sampleValue(nil)
	encoded := EncodeBytes(v)

	decoded, err := DecodeBytes(encoded, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	require.NotNil(t, decoded.ParticleValue, "Ux-bytes has no presence flag; the slot always decodes as present")
	assert.True(t, math.IsNaN(*decoded.ParticleValue))
}

func TestDecodeBytesShortBufferReturnsNilNil(t *testing.T) {
	decoded, err := DecodeBytes([]byte{1, 2, 3}, true)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestEncodeDecodeStringRoundTrip(t *testing.T) {
	p := 1.5
	v := sampleValue(&p)

	encoded := EncodeString(v)
	decoded, err := DecodeString(encoded, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	require.NotNil(t, decoded.ParticleValue)
	assert.InDelta(t, 1.5, *decoded.ParticleValue, 1e-9)
	require.Equal(t, v.Order(), decoded.Order())

	assert.Equal(t, encoded, EncodeString(decoded))
}

func TestDecodeStringAcceptsLowercaseHex(t *testing.T) {
	p := 1.5
	v := sampleValue(&p)

	encoded := EncodeString(v)
	idx := strings.Index(encoded, "Ux")
	lowered := encoded[:idx+2] + strings.ToLower(encoded[idx+2:])

	decoded, err := DecodeString(lowered, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, encoded, EncodeString(decoded), "the encoder re-emits uppercase regardless of input case")
}

func TestEncodeStringWithoutParticleDecodesToNil(t *testing.T) {
	v := sampleValue(nil)
	encoded := EncodeString(v)

	decoded, err := DecodeString(encoded, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Nil(t, decoded.ParticleValue, "an absent Ux-string prefix must decode to an absent particle")
}

func TestDecodeStringExplicitNaNParticleIsPresent(t *testing.T) {
	v := sampleValue(nil)
	encoded := EncodeString(v)
	// Force an explicit "nan" prefix rather than an absent one.
	nanEncoded := "nan" + encoded

	decoded, err := DecodeString(nanEncoded, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	require.NotNil(t, decoded.ParticleValue, "an explicit nan prefix must decode to a present NaN particle")
	assert.True(t, math.IsNaN(*decoded.ParticleValue))
}

func TestDecodeStringRejectsMalformedInput(t *testing.T) {
	decoded, err := DecodeString("not-a-ux-string", true)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeStringRejectsOddHexLength(t *testing.T) {
	decoded, err := DecodeString("Ux0", true)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeStringAcceptsCaseInsensitiveInfNan(t *testing.T) {
	v := sampleValue(nil)
	encoded := EncodeString(v)

	decoded, err := DecodeString("NaN"+encoded, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, math.IsNaN(*decoded.ParticleValue))
}

func TestFormatParticle(t *testing.T) {
	assert.Equal(t, "nan", formatParticle(math.NaN()))
	assert.Equal(t, "inf", formatParticle(math.Inf(1)))
	assert.Equal(t, "-inf", formatParticle(math.Inf(-1)))
	assert.Equal(t, "1.5", formatParticle(1.5))
}

func TestVerifyRoundTripDetectsMatch(t *testing.T) {
	p := 1.5
	v := sampleValue(&p)
	encoded := EncodeBytes(v)

	ok, err := VerifyRoundTrip(encoded, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRoundTripRejectsMalformedInput(t *testing.T) {
	ok, err := VerifyRoundTrip([]byte{1, 2, 3}, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEncodeStringPrefixAndExactRawMassRoundTrip(t *testing.T) {
	p := 1.5
	deltas := []delta.Delta{
		delta.NewRaw(1.0, 1<<62),
		delta.NewRaw(2.0, 1<<62),
	}
	v := distvalue.New(&p, 0, true, deltas)

	encoded := EncodeString(v)
	assert.True(t, strings.HasPrefix(encoded, "1.5Ux00"), "got %q", encoded)

	decoded, err := DecodeString(encoded, true)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	require.Equal(t, 2, decoded.Order())

	got := decoded.Deltas()
	assert.Equal(t, 1.0, got[0].Position())
	assert.Equal(t, 2.0, got[1].Position())
	assert.Equal(t, uint64(1)<<62, got[0].RawMass(), "wire round-trips must preserve the raw mass exactly")
	assert.Equal(t, uint64(1)<<62, got[1].RawMass())
}

func TestEncodeBytesLengthWithSpecialValues(t *testing.T) {
	deltas := []delta.Delta{
		delta.NewRaw(0.0, 1<<62),
		delta.NewRaw(math.NaN(), 1<<62),
	}
	v := distvalue.New(nil, 0, true, deltas)
	v.Sort()

	require.Equal(t, 2, v.Order())
	positions := v.Positions()
	assert.Equal(t, 0.0, positions[0])
	assert.True(t, math.IsNaN(positions[1]), "the NaN reservoir sorts to the tail")

	mean := v.Mean()
	require.NotNil(t, mean)
	assert.True(t, math.IsNaN(*mean))

	// particle(8) + UR_type(1) + sample_count(8) + mean(8) + UR_order(4)
	// + 2 pairs of position(8) + raw mass(8).
	encoded := EncodeBytes(v)
	assert.Len(t, encoded, 61)
}

func TestDecodeBytesRejectsURorderOverMax(t *testing.T) {
	v := sampleValue(nil)
	encoded := EncodeBytes(v)

	// Overwrite the UR_order field (little-endian, after particle, UR_type,
	// sample_count and mean) with 10001.
	engine := endian.GetLittleEndianEngine()
	engine.PutUint32(encoded[8+17:8+21], MaxURorder+1)

	decoded, err := DecodeBytes(encoded, true)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeBytesRejectsTruncatedDeltaPayload(t *testing.T) {
	v := sampleValue(nil)
	encoded := EncodeBytes(v)

	decoded, err := DecodeBytes(encoded[:len(encoded)-1], true)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestSinglePrecisionRoundTrip(t *testing.T) {
	deltas := []delta.Delta{
		delta.NewRaw(0.5, 1<<62),
		delta.NewRaw(1.5, 1<<62),
	}
	v := distvalue.New(nil, 0, false, deltas)

	encoded := EncodeBytes(v)
	// particle(8) + header(21) + 2 pairs of position(4) + raw mass(8).
	require.Len(t, encoded, 8+21+2*12)

	decoded, err := DecodeBytes(encoded, false)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	got := decoded.Deltas()
	assert.Equal(t, 0.5, got[0].Position())
	assert.Equal(t, 1.5, got[1].Position())
	assert.Equal(t, uint64(1)<<62, got[0].RawMass())
}

func TestBuildHeaderWritesLiveMean(t *testing.T) {
	v := sampleValue(nil)
	h := buildHeader(v)
	assert.InDelta(t, 5.0, h.Mean, 1e-9)
	assert.Equal(t, uint32(v.Order()), h.URorder)
}
