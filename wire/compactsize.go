// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned when a CompactSize or other fixed-width field
// cannot be read because the buffer ends early.
var ErrTruncated = errors.New("wire: truncated")

// ErrNonCanonical is returned when a CompactSize uses more bytes than the
// minimal encoding for its value.
var ErrNonCanonical = errors.New("wire: non-canonical CompactSize")

// CompactSizeLen returns the number of bytes the canonical CompactSize
// encoding of n occupies.
func CompactSizeLen(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// AppendCompactSize encodes n as a Bitcoin-style CompactSize and appends the
// result to dst.
func AppendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(n))
		return append(dst, buf[:]...)
	case n <= 0xffffffff:
		dst = append(dst, 0xfe)
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(n))
		return append(dst, buf[:]...)
	default:
		dst = append(dst, 0xff)
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], n)
		return append(dst, buf[:]...)
	}
}

// WriteCompactSize encodes n as a CompactSize value.
func WriteCompactSize(n uint64) []byte {
	return AppendCompactSize(nil, n)
}

// ReadCompactSize decodes one CompactSize value starting at offset *off in
// buf, advances *off past the bytes consumed, and returns the decoded value.
// It fails with ErrTruncated on a short buffer and ErrNonCanonical when the
// decoded value falls below its prefix byte's bucket.
func ReadCompactSize(buf []byte, off *int) (uint64, error) {
	if *off >= len(buf) {
		return 0, ErrTruncated
	}
	tag := buf[*off]
	*off++

	switch {
	case tag < 0xfd:
		return uint64(tag), nil
	case tag == 0xfd:
		if *off+2 > len(buf) {
			return 0, ErrTruncated
		}
		v := binary.LittleEndian.Uint16(buf[*off : *off+2])
		*off += 2
		if v < 0xfd {
			return 0, ErrNonCanonical
		}
		return uint64(v), nil
	case tag == 0xfe:
		if *off+4 > len(buf) {
			return 0, ErrTruncated
		}
		v := binary.LittleEndian.Uint32(buf[*off : *off+4])
		*off += 4
		if v <= 0xffff {
			return 0, ErrNonCanonical
		}
		return uint64(v), nil
	default: // tag == 0xff
		if *off+8 > len(buf) {
			return 0, ErrTruncated
		}
		v := binary.LittleEndian.Uint64(buf[*off : *off+8])
		*off += 8
		if v <= 0xffffffff {
			return 0, ErrNonCanonical
		}
		return v, nil
	}
}

// DecodeCompactSize decodes a single CompactSize value from the front of buf
// and returns the value and the number of bytes consumed.
func DecodeCompactSize(buf []byte) (uint64, int, error) {
	off := 0
	v, err := ReadCompactSize(buf, &off)
	if err != nil {
		return 0, 0, err
	}
	return v, off, nil
}
