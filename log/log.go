// Package log holds uxdata's single package-level logging knob.
//
// uxdata has no opinion about how diagnostics are shipped; it logs one
// warning line for malformed wire input, empty normalization results,
// zero-group packer formats, packer buffers of the wrong length, and
// binning boundaries that come out not strictly ascending. Callers that want those
// lines routed somewhere other than slog's default handler call SetLogger
// once at startup.
package log

import (
	"log/slog"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// Logger returns the active logger, defaulting to slog.Default().
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger overrides the logger used for uxdata's diagnostic output.
func SetLogger(l *slog.Logger) {
	current.Store(l)
}
