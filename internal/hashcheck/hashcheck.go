// Package hashcheck computes a content fingerprint for a wire buffer so
// callers can cheaply confirm that an encode-decode-encode round trip
// reproduced the original bytes without keeping both buffers in memory.
package hashcheck

import "github.com/cespare/xxhash/v2"

// Sum returns the xxHash64 digest of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Sum64String returns the xxHash64 digest of a Ux-string payload.
func Sum64String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Equal reports whether a and b hash to the same digest. It is a
// fast-reject check, not a substitute for a full byte comparison: a match
// is strong but not absolute evidence that a and b are equal.
func Equal(a, b []byte) bool {
	return Sum(a) == Sum(b)
}
