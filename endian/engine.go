// Package endian provides byte order utilities for binary encoding and decoding.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine
// interface. It also carries the legacy endian-marker table used by the
// packer package (see MarkerEngine), which intentionally does not match
// the conventional native/network split for three of its markers.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian
// from the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// MarkerEngine maps a packer format-string endian marker to the
// EndianEngine it denotes.
//
// The legacy producer's marker table is preserved bit-for-bit even though
// '@', '=' and '!' conventionally mean "native" or "network" order
// elsewhere: here they all resolve to big-endian, matching the original
// wire producer. Do not "fix" this table; it will break interoperability
// with existing Ux-bytes producers.
func MarkerEngine(marker byte) (EndianEngine, bool) {
	switch marker {
	case '@', '=', '>', '!':
		return GetBigEndianEngine(), true
	case '<':
		return GetLittleEndianEngine(), true
	default:
		return nil, false
	}
}

// DefaultEngine is the engine used when a format string carries no
// explicit endian marker: big-endian, per the legacy table.
func DefaultEngine() EndianEngine {
	return GetBigEndianEngine()
}
