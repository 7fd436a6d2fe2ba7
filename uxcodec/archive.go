package uxcodec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/signaloid/uxdata/distvalue"
	"github.com/signaloid/uxdata/errs"
)

// CompressionType selects the codec an Archive uses to store snapshotted
// Ux-bytes payloads. It never applies to the canonical wire encoding
// produced by EncodeBytes/EncodeString, which must stay byte-for-byte
// fixed-layout.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionZstd
	CompressionLZ4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// archiveCodec compresses and decompresses opaque byte payloads.
type archiveCodec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

func newArchiveCodec(t CompressionType) (archiveCodec, error) {
	switch t {
	case CompressionNone:
		return noopCodec{}, nil
	case CompressionZstd:
		return &zstdArchiveCodec{}, nil
	case CompressionLZ4:
		return lz4ArchiveCodec{}, nil
	default:
		return nil, fmt.Errorf("uxcodec: unsupported archive compression %v: %w", t, errs.ErrUnsupportedCompression)
	}
}

type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noopCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("uxcodec: failed to create zstd encoder: %v", err))
		}
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("uxcodec: failed to create zstd decoder: %v", err))
		}
		return dec
	},
}

type zstdArchiveCodec struct{}

func (zstdArchiveCodec) Compress(data []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

func (zstdArchiveCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("uxcodec: zstd archive decompression failed: %w", err)
	}
	return out, nil
}

type lz4ArchiveCodec struct{}

func (lz4ArchiveCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func (lz4ArchiveCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	const maxSize = 128 * 1024 * 1024
	bufSize := len(data) * 4
	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if err != lz4.ErrInvalidSourceShortBuffer {
			return nil, err
		}
		bufSize *= 2
	}
	return nil, lz4.ErrInvalidSourceShortBuffer
}

// Archive snapshot-stores a batch of decoded distributional values as
// compressed Ux-bytes records. It never touches the canonical wire codec;
// it is a caller convenience for spooling many decoded histograms to disk
// or to a cache without repeating delta slices verbatim.
type Archive struct {
	codec           archiveCodec
	doublePrecision bool
}

// NewArchive builds an Archive using the given compression algorithm.
func NewArchive(compression CompressionType, doublePrecision bool) (*Archive, error) {
	codec, err := newArchiveCodec(compression)
	if err != nil {
		return nil, err
	}
	return &Archive{codec: codec, doublePrecision: doublePrecision}, nil
}

// Put encodes v as Ux-bytes and compresses the result.
func (a *Archive) Put(v *distvalue.DistributionalValue) ([]byte, error) {
	return a.codec.Compress(EncodeBytes(v))
}

// Get decompresses a record produced by Put and decodes it back into a
// DistributionalValue.
func (a *Archive) Get(record []byte) (*distvalue.DistributionalValue, error) {
	raw, err := a.codec.Decompress(record)
	if err != nil {
		return nil, fmt.Errorf("uxcodec: archive record decompression failed: %w", err)
	}
	return DecodeBytes(raw, a.doublePrecision)
}
