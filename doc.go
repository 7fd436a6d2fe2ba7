// Package uxdata provides a binary and textual wire format for exchanging
// distributional values: quantities represented not as a single scalar but
// as a weighted set of Dirac deltas (a discrete approximation of a
// probability distribution), optionally paired with a deterministic
// particle (point) value.
//
// # Core Features
//
//   - Bijective Ux-bytes (little-endian binary) and Ux-string (ASCII hex)
//     codecs, both reproducing a well-formed input byte-for-byte on
//     decode-then-encode (Ux-string modulo hex letter case)
//   - Normalization: zero-mass pruning, position sorting, Dirac delta curing
//   - TTR (Telescoping Torques Representation) validity checking
//   - A binning engine that reconstructs a variable-width histogram from a
//     TTR-valid delta set, and its inverse (BinPdfToTTR)
//   - A plot-data adaptor producing chart-ready bin rectangles and special
//     value markers (NaN, -Inf, +Inf)
//   - An optional compressed archive for batch-storing decoded values
//
// # Basic Usage
//
// Decoding a Ux-string and reconstructing plot-ready data:
//
//	// uxString holds a Ux-string with at least one delta; plotdata.New
//	// rejects a value whose UR_order is 0.
//	value, err := uxdata.DecodeString(uxString, false)
//	if err != nil {
//	    return err
//	}
//	if value == nil {
//	    // malformed wire input; see the package log output for the cause
//	    return nil
//	}
//
//	data, err := plotdata.New(value)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d bins\n", len(data.Rects))
//
// # Package Structure
//
// This package provides convenient top-level wrappers around uxcodec and
// distvalue, covering the most common decode/encode path. For normalization
// internals, TTR validity, and histogram reconstruction, use the distvalue
// and binning packages directly.
package uxdata

import (
	"github.com/signaloid/uxdata/distvalue"
	"github.com/signaloid/uxdata/uxcodec"
)

// DecodeBytes decodes a Ux-bytes buffer into a DistributionalValue. See
// uxcodec.DecodeBytes.
func DecodeBytes(data []byte, doublePrecision bool) (*distvalue.DistributionalValue, error) {
	return uxcodec.DecodeBytes(data, doublePrecision)
}

// DecodeString decodes a Ux-string into a DistributionalValue. See
// uxcodec.DecodeString.
func DecodeString(s string, doublePrecision bool) (*distvalue.DistributionalValue, error) {
	return uxcodec.DecodeString(s, doublePrecision)
}

// EncodeBytes encodes v as a Ux-bytes buffer. See uxcodec.EncodeBytes.
func EncodeBytes(v *distvalue.DistributionalValue) []byte {
	return uxcodec.EncodeBytes(v)
}

// EncodeString encodes v as a Ux-string. See uxcodec.EncodeString.
func EncodeString(v *distvalue.DistributionalValue) string {
	return uxcodec.EncodeString(v)
}
