// Package bitmask implements packed bit-vector primitives: get/set on a
// single bit and a windowed zero-count used to evaluate null-masks and
// per-row keep-masks without allocating an unpacked []bool.
//
// Bit i of a buffer lives in byte i/8 at position i%8, LSB-first within the
// byte, matching the layout Arrow and most columnar formats use for their
// validity bitmaps.
package bitmask

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

var bitMask = [8]byte{1, 2, 4, 8, 16, 32, 64, 128}
var unsetBitMask = [8]byte{
	255 - 1, 255 - 2, 255 - 4, 255 - 8,
	255 - 16, 255 - 32, 255 - 64, 255 - 128,
}

// IsSet reports whether bit i of byte is set.
func IsSet(b byte, i int) bool {
	return b&bitMask[i] != 0
}

// SetByte returns byte with bit i set to v.
func SetByte(b byte, i int, v bool) byte {
	if v {
		return b | bitMask[i]
	}
	return b & unsetBitMask[i]
}

// GetBit returns bit i of buf.
//
// Panics if i is out of bounds for buf.
func GetBit(buf []byte, i int) bool {
	if i < 0 || i/8 >= len(buf) {
		panic(fmt.Sprintf("bitmask: GetBit: index %d out of bounds for %d-byte buffer", i, len(buf)))
	}
	return IsSet(buf[i/8], i%8)
}

// SetBit sets bit i of buf to v.
//
// Panics if i is out of bounds for buf.
func SetBit(buf []byte, i int, v bool) {
	if i < 0 || i/8 >= len(buf) {
		panic(fmt.Sprintf("bitmask: SetBit: index %d out of bounds for %d-byte buffer", i, len(buf)))
	}
	buf[i/8] = SetByte(buf[i/8], i%8, v)
}

// SetBitUnchecked sets bit i of buf to v without a bounds check. Callers
// must ensure i/8 < len(buf).
func SetBitUnchecked(buf []byte, i int, v bool) {
	buf[i/8] = SetByte(buf[i/8], i%8, v)
}

// CountZeros returns the number of zero bits in the window
// [offset, offset+length) of buf.
//
// Panics if the window runs past the end of buf.
func CountZeros(buf []byte, offset, length int) int {
	if length == 0 {
		return 0
	}
	if offset < 0 || length < 0 {
		panic("bitmask: CountZeros: negative offset or length")
	}
	end := offset + length
	lastByte := (end + 7) / 8
	if lastByte > len(buf) {
		panic(fmt.Sprintf("bitmask: CountZeros: window [%d,%d) out of bounds for %d-byte buffer", offset, end, len(buf)))
	}

	window := buf[offset/8 : lastByte]
	bitOffset := offset % 8

	if bitOffset+length < 8 {
		// entirely within a single byte
		b := (window[0] >> bitOffset) << (8 - length)
		return length - bits.OnesCount8(b)
	}

	setCount := 0
	if bitOffset != 0 {
		setCount += bits.OnesCount8(window[0] >> bitOffset)
		window = window[1:]
	}

	endOffset := (bitOffset + length) % 8
	if endOffset != 0 {
		last := len(window) - 1
		setCount += bits.OnesCount8(window[last] << (8 - endOffset))
		window = window[:last]
	}

	for len(window) >= 8 {
		setCount += bits.OnesCount64(binary.NativeEndian.Uint64(window[:8]))
		window = window[8:]
	}
	for _, b := range window {
		setCount += bits.OnesCount8(b)
	}

	return length - setCount
}
