// Package packer implements a compact struct-style binary packer, modeled
// on the classic pack/unpack format-string grammar: zero or more groups of
// [endian]?[count]?type, matched globally across the format string.
//
// Two legacy quirks are preserved bit-for-bit because wire producers depend
// on them (see endian.MarkerEngine and the size table below): the endian
// markers '@', '=', '!' all resolve to big-endian rather than "native", and
// 'h'/'H' are one byte wide rather than the conventional two.
package packer

import (
	"math"
	"math/big"
	"regexp"
	"strconv"

	"github.com/signaloid/uxdata/endian"
	"github.com/signaloid/uxdata/log"
)

// Kind classifies how a type code's bytes are interpreted.
type Kind int

const (
	KindUnsigned Kind = iota
	KindSigned
	KindFloat
)

// typeInfo describes one format-string type code.
type typeInfo struct {
	size int
	kind Kind
}

// sizeTable is the legacy fixed-size table for each supported type code.
// h/H are intentionally 1 byte, not the conventional 2; do not "fix" this.
var sizeTable = map[byte]typeInfo{
	'c': {1, KindUnsigned},
	'b': {1, KindSigned},
	'B': {1, KindUnsigned},
	'h': {1, KindSigned},
	'H': {1, KindUnsigned},
	'i': {4, KindSigned},
	'I': {4, KindUnsigned},
	'l': {4, KindSigned},
	'L': {4, KindUnsigned},
	'q': {8, KindSigned},
	'Q': {8, KindUnsigned},
	'f': {4, KindFloat},
	'd': {8, KindFloat},
}

var groupPattern = regexp.MustCompile(`([@=<>!])?(\d*)([cbBhHiIlLqQfd])`)

// group is one parsed occurrence of [endian]?[count]?type.
type group struct {
	engine endian.EndianEngine
	count  int
	typ    byte
	info   typeInfo
}

// parseFormat parses a format string into its groups. Matching is global:
// it scans the whole string for occurrences of the grammar and ignores any
// characters that do not participate in a match.
func parseFormat(format string) []group {
	matches := groupPattern.FindAllStringSubmatch(format, -1)
	groups := make([]group, 0, len(matches))

	for _, m := range matches {
		engine := endian.DefaultEngine()
		if m[1] != "" {
			e, ok := endian.MarkerEngine(m[1][0])
			if ok {
				engine = e
			}
		}

		count := 1
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err == nil && n >= 0 {
				count = n
			}
		}

		typ := m[3][0]
		groups = append(groups, group{
			engine: engine,
			count:  count,
			typ:    typ,
			info:   sizeTable[typ],
		})
	}

	return groups
}

// Pack encodes values in order according to format, one value per group
// occurrence (a count > 1 consumes that many consecutive values). Returns
// nil and logs a warning if format parses to zero groups. A nil value at
// any slot encodes as numeric zero of the declared type.
func Pack(format string, values []any) []byte {
	groups := parseFormat(format)
	if len(groups) == 0 {
		log.Logger().Warn("packer: format string matches zero groups", "format", format)
		return nil
	}

	total := 0
	for _, g := range groups {
		total += g.size() * g.count
	}

	out := make([]byte, total)
	offset := 0
	vi := 0

	for _, g := range groups {
		for i := 0; i < g.count; i++ {
			var v any
			if vi < len(values) {
				v = values[vi]
			}
			vi++

			putOne(g.engine, out[offset:offset+g.info.size], g.info, v)
			offset += g.info.size
		}
	}

	return out
}

// size returns the byte width of a single element of the group.
func (g group) size() int {
	return g.info.size
}

func putOne(e endian.EndianEngine, dst []byte, info typeInfo, v any) {
	switch info.size {
	case 1:
		putByte(dst, info, v)
	case 4:
		put4(e, dst, info, v)
	case 8:
		put8(e, dst, info, v)
	}
}

func putByte(dst []byte, info typeInfo, v any) {
	if info.kind == KindFloat {
		// No 1-byte float type exists in the table; unreachable.
		dst[0] = 0
		return
	}

	n := toInt64(v)
	dst[0] = byte(n)
}

func put4(e endian.EndianEngine, dst []byte, info typeInfo, v any) {
	if info.kind == KindFloat {
		f := toFloat64(v)
		e.PutUint32(dst, math.Float32bits(float32(f)))
		return
	}
	n := toInt64(v)
	e.PutUint32(dst, uint32(n))
}

func put8(e endian.EndianEngine, dst []byte, info typeInfo, v any) {
	if info.kind == KindFloat {
		f := toFloat64(v)
		e.PutUint64(dst, math.Float64bits(f))
		return
	}
	n := toUint64(v)
	e.PutUint64(dst, n)
}

// Unpack decodes bytes according to format, returning one value per group
// occurrence. Returns nil if the total required bytes exceeds the buffer,
// or if any trailing bytes remain beyond the last group.
func Unpack(format string, data []byte) []any {
	groups := parseFormat(format)
	if len(groups) == 0 {
		log.Logger().Warn("packer: format string matches zero groups", "format", format)
		return nil
	}

	total := 0
	for _, g := range groups {
		total += g.size() * g.count
	}

	if total > len(data) {
		log.Logger().Warn("packer: buffer underflow", "need", total, "have", len(data))
		return nil
	}
	if total < len(data) {
		log.Logger().Warn("packer: trailing bytes after last group", "consumed", total, "have", len(data))
		return nil
	}

	numValues := 0
	for _, g := range groups {
		numValues += g.count
	}

	out := make([]any, 0, numValues)
	offset := 0

	for _, g := range groups {
		for i := 0; i < g.count; i++ {
			out = append(out, getOne(g.engine, data[offset:offset+g.info.size], g.info))
			offset += g.info.size
		}
	}

	return out
}

func getOne(e endian.EndianEngine, src []byte, info typeInfo) any {
	switch info.size {
	case 1:
		n := int64(src[0])
		if info.kind == KindSigned {
			return int64(int8(src[0]))
		}
		return n
	case 4:
		if info.kind == KindFloat {
			return float64(math.Float32frombits(e.Uint32(src)))
		}
		u := e.Uint32(src)
		if info.kind == KindSigned {
			return int64(int32(u))
		}
		return int64(u)
	case 8:
		if info.kind == KindFloat {
			return math.Float64frombits(e.Uint64(src))
		}
		u := e.Uint64(src)
		if info.kind == KindSigned {
			return int64(u)
		}
		return u
	}

	return nil
}

// toInt64 converts a pack() value slot to int64, treating nil as zero and
// accepting any Go integer or float type, or *big.Int, that is losslessly
// representable.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	case *big.Int:
		return n.Int64()
	default:
		return 0
	}
}

// toUint64 converts a pack() value slot to uint64 for the 64-bit integer
// type codes, accepting a big integer or a float that is losslessly
// convertible, per the format grammar's 64-bit handling rule.
func toUint64(v any) uint64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	case uint:
		return uint64(n)
	case uint64:
		return n
	case uint32:
		return uint64(n)
	case float32:
		return uint64(n)
	case float64:
		return uint64(n)
	case *big.Int:
		return n.Uint64()
	default:
		return uint64(toInt64(v))
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float32:
		return float64(n)
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case *big.Int:
		f := new(big.Float).SetInt(n)
		out, _ := f.Float64()
		return out
	default:
		return float64(toInt64(v))
	}
}
