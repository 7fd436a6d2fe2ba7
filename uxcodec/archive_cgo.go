//go:build nobuild

package uxcodec

import "github.com/valyala/gozstd"

// gozstdArchiveCodec is an alternative cgo-backed zstd binding for Archive:
// an opt-in faster codec for large archives, never in the default build.
type gozstdArchiveCodec struct{}

func (gozstdArchiveCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (gozstdArchiveCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return gozstd.Decompress(nil, data)
}
