// Package uxcodec implements the bijective wire codec between
// distvalue.DistributionalValue and the two interoperable Ux wire
// encodings: the binary Ux-bytes format and its ASCII-hex sibling,
// Ux-string.
//
// Ux-bytes encodes every numeric field little-endian; Ux-string encodes
// every numeric field big-endian (including inside the hex payload). This
// asymmetry is a wire-format requirement, not an oversight; do not unify
// the two endiannesses.
package uxcodec

import (
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/signaloid/uxdata/delta"
	"github.com/signaloid/uxdata/distvalue"
	"github.com/signaloid/uxdata/endian"
	"github.com/signaloid/uxdata/errs"
	"github.com/signaloid/uxdata/internal/hashcheck"
	"github.com/signaloid/uxdata/log"
)

// stringPattern is the Ux-string header regular expression: an optional
// particle (decimal, "nan", or signed "inf"), the literal "Ux", and a hex
// payload.
var stringPattern = regexp.MustCompile(`^([-+]?\d*\.?\d+|(?i:nan|[-+]?inf))?Ux([0-9A-Fa-f]+)$`)

const particleBytesSize = 8

// DecodeBytes decodes a Ux-bytes buffer into a DistributionalValue.
// Returns (nil, nil) on any wire-format violation, after logging one
// warning line describing the cause, per the low-level decode error
// policy: malformed wire input is never a fatal error for the caller.
func DecodeBytes(data []byte, doublePrecision bool) (*distvalue.DistributionalValue, error) {
	if len(data) < particleBytesSize {
		log.Logger().Warn("uxcodec: Ux-bytes buffer shorter than the particle field", "len", len(data))
		return nil, nil
	}

	engine := endian.GetLittleEndianEngine()
	particle := math.Float64frombits(engine.Uint64(data[:particleBytesSize]))
	// Ux-bytes has no presence flag for the particle field; the value read
	// here is always treated as present, even when it is NaN.

	rest := data[particleBytesSize:]
	h, err := parseHeader(rest, engine)
	if err != nil {
		log.Logger().Warn("uxcodec: malformed Ux-bytes header", "error", err)
		return nil, nil
	}

	payload := rest[headerSize:]
	deltas, err := decodeDeltas(payload, engine, doublePrecision, h.URorder)
	if err != nil {
		log.Logger().Warn("uxcodec: malformed Ux-bytes delta payload", "error", err)
		return nil, nil
	}

	return buildValue(&particle, h, doublePrecision, deltas), nil
}

// DecodeString decodes a Ux-string into a DistributionalValue, per the
// header regular expression stringPattern. Returns (nil, nil) on any
// wire-format violation, after logging one warning line.
func DecodeString(s string, doublePrecision bool) (*distvalue.DistributionalValue, error) {
	m := stringPattern.FindStringSubmatch(s)
	if m == nil {
		log.Logger().Warn("uxcodec: Ux-string does not match the header pattern", "input", s)
		return nil, nil
	}

	var particle *float64
	if m[1] != "" {
		p, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			log.Logger().Warn("uxcodec: Ux-string particle is not a valid number", "particle", m[1])
			return nil, nil
		}
		particle = &p
	}

	hexPayload := m[2]
	if len(hexPayload)%2 != 0 {
		log.Logger().Warn("uxcodec: Ux-string hex payload has odd length", "len", len(hexPayload))
		return nil, nil
	}

	raw, err := hex.DecodeString(hexPayload)
	if err != nil {
		log.Logger().Warn("uxcodec: Ux-string hex payload failed to decode", "error", err)
		return nil, nil
	}

	engine := endian.GetBigEndianEngine()
	h, err := parseHeader(raw, engine)
	if err != nil {
		log.Logger().Warn("uxcodec: malformed Ux-string header", "error", err)
		return nil, nil
	}

	payload := raw[headerSize:]
	deltas, err := decodeDeltas(payload, engine, doublePrecision, h.URorder)
	if err != nil {
		log.Logger().Warn("uxcodec: malformed Ux-string delta payload", "error", err)
		return nil, nil
	}

	return buildValue(particle, h, doublePrecision, deltas), nil
}

func bytesPerPosition(doublePrecision bool) int {
	if doublePrecision {
		return 8
	}
	return 4
}

func decodeDeltas(payload []byte, engine endian.EndianEngine, doublePrecision bool, urOrder uint32) ([]delta.Delta, error) {
	posSize := bytesPerPosition(doublePrecision)
	pairSize := posSize + 8
	need := int(urOrder) * pairSize

	if len(payload) < need {
		return nil, fmt.Errorf("uxcodec: need %d bytes for %d deltas, have %d: %w", need, urOrder, len(payload), errs.ErrBufferUnderflow)
	}

	deltas := make([]delta.Delta, urOrder)
	offset := 0
	for i := range deltas {
		var position float64
		if doublePrecision {
			position = math.Float64frombits(engine.Uint64(payload[offset : offset+8]))
		} else {
			position = float64(math.Float32frombits(engine.Uint32(payload[offset : offset+4])))
		}
		offset += posSize

		raw := engine.Uint64(payload[offset : offset+8])
		offset += 8

		deltas[i] = delta.NewRaw(position, raw)
	}

	return deltas, nil
}

func buildValue(particle *float64, h header, doublePrecision bool, deltas []delta.Delta) *distvalue.DistributionalValue {
	return distvalue.New(particle, h.URType, doublePrecision, deltas)
}

// EncodeBytes encodes v as a Ux-bytes buffer. Lossless given normalized
// input; EncodeBytes(DecodeBytes(w)) reproduces w byte-for-byte for any
// well-formed w.
func EncodeBytes(v *distvalue.DistributionalValue) []byte {
	engine := endian.GetLittleEndianEngine()

	particle := math.NaN()
	if v.ParticleValue != nil {
		particle = *v.ParticleValue
	}

	out := make([]byte, particleBytesSize)
	engine.PutUint64(out, math.Float64bits(particle))

	h := buildHeader(v)
	out = append(out, h.bytes(engine)...)
	out = append(out, encodeDeltas(v.Deltas(), engine, v.DoublePrecision)...)

	return out
}

// EncodeString encodes v as a Ux-string. Hex letters are emitted
// uppercase. Lossless given normalized input; EncodeString(DecodeString(w))
// reproduces w modulo hex letter case (the decoder accepts either case).
func EncodeString(v *distvalue.DistributionalValue) string {
	engine := endian.GetBigEndianEngine()

	h := buildHeader(v)
	payload := h.bytes(engine)
	payload = append(payload, encodeDeltas(v.Deltas(), engine, v.DoublePrecision)...)

	var sb strings.Builder
	if v.ParticleValue != nil {
		sb.WriteString(formatParticle(*v.ParticleValue))
	}
	sb.WriteString("Ux")
	sb.WriteString(strings.ToUpper(hex.EncodeToString(payload)))

	return sb.String()
}

func buildHeader(v *distvalue.DistributionalValue) header {
	mean := math.NaN()
	if m := v.Mean(); m != nil {
		mean = *m
	}

	return header{
		URType:      v.URType,
		SampleCount: uint64(v.Order()),
		Mean:        mean,
		URorder:     uint32(v.Order()),
	}
}

func encodeDeltas(deltas []delta.Delta, engine endian.EndianEngine, doublePrecision bool) []byte {
	posSize := bytesPerPosition(doublePrecision)
	out := make([]byte, 0, len(deltas)*(posSize+8))

	for _, d := range deltas {
		posBuf := make([]byte, posSize)
		if doublePrecision {
			engine.PutUint64(posBuf, math.Float64bits(d.Position()))
		} else {
			engine.PutUint32(posBuf, math.Float32bits(float32(d.Position())))
		}
		out = append(out, posBuf...)

		massBuf := make([]byte, 8)
		engine.PutUint64(massBuf, d.RawMass())
		out = append(out, massBuf...)
	}

	return out
}

// VerifyRoundTrip decodes w, re-encodes the result, and reports whether the
// re-encoded bytes hash to the same digest as w. It is a debug helper for
// asserting encode/decode bijectivity without diffing two ~160KB buffers
// byte by byte; a false result always warrants a real diff, since a digest
// match is strong but not absolute evidence of byte-for-byte equality.
func VerifyRoundTrip(w []byte, doublePrecision bool) (bool, error) {
	v, err := DecodeBytes(w, doublePrecision)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}

	return hashcheck.Equal(w, EncodeBytes(v)), nil
}

func formatParticle(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
