package bitmask_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestore/blockprune/pkg/bitmask"
)

func TestSetGetBitRoundtrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		buf := []byte{0xAA, 0x55, 0x00, 0xFF}
		before := append([]byte(nil), buf...)
		const i = 13
		bitmask.SetBit(buf, i, v)
		assert.Equal(t, v, bitmask.GetBit(buf, i))
		for j := 0; j < len(buf)*8; j++ {
			if j == i {
				continue
			}
			assert.Equal(t, bitmask.GetBit(before, j), bitmask.GetBit(buf, j), "bit %d changed unexpectedly", j)
		}
	}
}

func TestSetByte(t *testing.T) {
	assert.Equal(t, byte(0b0000_0001), bitmask.SetByte(0, 0, true))
	assert.Equal(t, byte(0b1000_0000), bitmask.SetByte(0, 7, true))
	assert.Equal(t, byte(0b1111_1110), bitmask.SetByte(0xFF, 0, false))
}

func TestCountZerosEmpty(t *testing.T) {
	buf := []byte{0xFF, 0x00}
	require.Equal(t, 0, bitmask.CountZeros(buf, 3, 0))
}

func TestCountZerosSingleByteWindow(t *testing.T) {
	// buf = 0b1011_0100, window [2,6) = bits 2,3,4,5 = 1,0,1,1 -> one zero.
	buf := []byte{0b1011_0100}
	require.Equal(t, 1, bitmask.CountZeros(buf, 2, 4))
}

func TestCountZerosCrossByteWindow(t *testing.T) {
	// buf = [0xCC, 0x33], window [4,12) spans both bytes and contains
	// exactly four zero bits.
	buf := []byte{0xCC, 0x33}
	require.Equal(t, 4, bitmask.CountZeros(buf, 4, 8))
}

func TestCountZerosFullByteAligned(t *testing.T) {
	buf := []byte{0x0F, 0xF0, 0xFF}
	require.Equal(t, 4, bitmask.CountZeros(buf, 0, 8))
	require.Equal(t, 4, bitmask.CountZeros(buf, 8, 8))
	require.Equal(t, 0, bitmask.CountZeros(buf, 16, 8))
}

func TestCountZerosMultiByteMiddle(t *testing.T) {
	buf := []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	// skip 4 bits of the leading zero byte, take everything up to 4 bits
	// into the trailing zero byte: all the bits in between are ones.
	zeros := bitmask.CountZeros(buf, 4, 8*8+8)
	require.Equal(t, 8, zeros) // the 4 leftover zero bits at each end
}

func popcountWindow(buf []byte, offset, length int) int {
	count := 0
	for i := offset; i < offset+length; i++ {
		if bitmask.GetBit(buf, i) {
			count++
		}
	}
	return count
}

func naiveCountZeros(buf []byte, offset, length int) int {
	return length - popcountWindow(buf, offset, length)
}

func TestCountZerosAgreesWithNaiveReference(t *testing.T) {
	buf := []byte{0x5A, 0xC3, 0x0F, 0xF0, 0x99, 0x66, 0xA5, 0x3C, 0x81, 0x7E}
	totalBits := len(buf) * 8
	for offsetMod := 0; offsetMod < 8; offsetMod++ {
		for lengthMod := 0; lengthMod < 8; lengthMod++ {
			for base := 0; base+8 <= totalBits; base += 8 {
				offset := base + offsetMod
				length := lengthMod
				if offset+length > totalBits {
					continue
				}
				got := bitmask.CountZeros(buf, offset, length)
				want := naiveCountZeros(buf, offset, length)
				require.Equalf(t, want, got, "offset=%d length=%d", offset, length)
			}
		}
	}
}

func TestCountZerosPlusPopcountEqualsLength(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte(i*37 + 11)
	}
	totalBits := len(buf) * 8
	for offset := 0; offset < totalBits; offset++ {
		for length := 0; offset+length <= totalBits; length++ {
			zeros := bitmask.CountZeros(buf, offset, length)
			ones := popcountWindow(buf, offset, length)
			require.Equal(t, length, zeros+ones)
		}
	}
}

func TestOnesCount8SanityCheck(t *testing.T) {
	// guards the bits.OnesCount8 assumption the implementation relies on.
	require.Equal(t, 4, bits.OnesCount8(0b1111_0000))
}
