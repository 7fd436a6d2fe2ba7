// Package errs collects the sentinel errors shared across uxdata's packages.
//
// Call sites that need to add context wrap a sentinel with fmt.Errorf and
// the %w verb rather than constructing a fresh error, so callers can still
// match on the sentinel with errors.Is.
package errs

import "errors"

var (
	// ErrMalformedFormat names the failure of a packer format string that
	// parses to zero groups. packer.Pack and packer.Unpack report that case
	// by logging a warning and returning nil; they do not return this error.
	ErrMalformedFormat = errors.New("packer: format string matches zero groups")

	// ErrBufferUnderflow is returned when a decode operation needs more
	// bytes than the supplied buffer contains.
	ErrBufferUnderflow = errors.New("buffer underflow: not enough bytes")

	// ErrBufferOverflow names the failure of a decode operation that would
	// leave trailing bytes unconsumed in the buffer. packer.Unpack reports
	// that case by logging a warning and returning nil; no function in this
	// module returns this error.
	ErrBufferOverflow = errors.New("buffer overflow: trailing bytes remain")

	// ErrMalformedHeader names the failure of a Ux-string that does not
	// match the header regular expression. uxcodec.DecodeString reports that
	// case by logging a warning and returning (nil, nil); it does not return
	// this error.
	ErrMalformedHeader = errors.New("uxcodec: malformed Ux-string header")

	// ErrOutOfRange is returned when UR_order is negative or exceeds the
	// maximum of 10000.
	ErrOutOfRange = errors.New("uxcodec: UR_order out of range")

	// ErrValidationFailure is returned when PlotData construction is given
	// a resolution that is not a power of two (or too small), or a value
	// with UR_order 0 / an undefined mean.
	ErrValidationFailure = errors.New("validation failure")

	// ErrEmptyInput names the non-fatal case in which normalization left
	// zero finite deltas. binning.Reconstruct reports that case by logging a
	// warning and returning a KindEmpty result with a nil error; it does not
	// return this error.
	ErrEmptyInput = errors.New("distvalue: no finite deltas after normalization")

	// ErrNotPowerOfTwo is returned by binning operations that require an
	// exact power-of-two delta count (full valid TTR reconstruction).
	ErrNotPowerOfTwo = errors.New("binning: delta count is not a power of two")

	// ErrTooFewDeltas is returned when an operation requires more deltas
	// than are present (e.g. binning.GetBinning needs at least 2).
	ErrTooFewDeltas = errors.New("binning: too few deltas for this operation")

	// ErrUnsupportedCompression is returned by the optional archive codec
	// selector for an unrecognized compression type.
	ErrUnsupportedCompression = errors.New("uxcodec: unsupported archive compression")
)
