package uxcodec

import (
	"fmt"
	"math"

	"github.com/signaloid/uxdata/endian"
	"github.com/signaloid/uxdata/errs"
)

// headerSize is the fixed header length beyond the particle field:
// UR_type (1B) + sample_count (8B, unused/reserved) + mean (8B) +
// UR_order (4B).
const headerSize = 1 + 8 + 8 + 4

// MaxURorder is the largest UR_order a well-formed wire buffer may declare.
const MaxURorder = 10000

// header is the fixed-layout portion of a Ux-bytes/Ux-string payload that
// follows the particle field.
type header struct {
	URType      uint8
	SampleCount uint64 // unused but reserved; always emitted as URorder
	Mean        float64
	URorder     uint32
}

func parseHeader(data []byte, engine endian.EndianEngine) (header, error) {
	if len(data) < headerSize {
		return header{}, fmt.Errorf("uxcodec: header needs %d bytes, got %d: %w", headerSize, len(data), errs.ErrBufferUnderflow)
	}

	h := header{
		URType:      data[0],
		SampleCount: engine.Uint64(data[1:9]),
		Mean:        math.Float64frombits(engine.Uint64(data[9:17])),
		URorder:     engine.Uint32(data[17:21]),
	}

	if h.URorder > MaxURorder {
		return header{}, fmt.Errorf("uxcodec: UR_order %d exceeds maximum %d: %w", h.URorder, MaxURorder, errs.ErrOutOfRange)
	}

	return h, nil
}

func (h header) bytes(engine endian.EndianEngine) []byte {
	out := make([]byte, headerSize)
	out[0] = h.URType
	engine.PutUint64(out[1:9], h.SampleCount)
	engine.PutUint64(out[9:17], math.Float64bits(h.Mean))
	engine.PutUint32(out[17:21], h.URorder)
	return out
}
