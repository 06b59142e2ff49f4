// Package bloom implements the consumer side of a persisted bloom-filter
// index: decoding the serialized form written at block-build time and
// testing scalar values against it. Construction is kept only so tests can
// build fixtures in-process without a second binary format; the block
// pruner never constructs a filter itself, only decodes and queries one.
package bloom

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/tablestore/blockprune/pkg/bitmask"
)

// Filter is a fixed-size Bloom filter whose k bit positions are derived by
// double hashing from two FNV hashes (FNV-1a and FNV-1) of the key,
// modeled on the one-hash-family, double-hashing construction
// storj's pkg/bloomfilter uses for its piece-id filters.
type Filter struct {
	bits      []byte
	numBits   uint64
	numHashes uint32
}

// NewFilter returns an empty filter sized for expectedItems items at the
// given false-positive probability.
func NewFilter(expectedItems int, falsePositiveProbability float64) *Filter {
	if expectedItems < 1 {
		expectedItems = 1
	}
	if falsePositiveProbability <= 0 || falsePositiveProbability >= 1 {
		falsePositiveProbability = 0.1
	}
	n := float64(expectedItems)
	p := falsePositiveProbability
	numBits := uint64(math.Ceil(-n * math.Log(p) / (math.Ln2 * math.Ln2)))
	if numBits < 8 {
		numBits = 8
	}
	numHashes := uint32(math.Round((float64(numBits) / n) * math.Ln2))
	if numHashes < 1 {
		numHashes = 1
	}
	return &Filter{
		bits:      make([]byte, (numBits+7)/8),
		numBits:   numBits,
		numHashes: numHashes,
	}
}

// Add inserts key into the filter.
func (f *Filter) Add(key []byte) {
	h1, h2 := hashPair(key)
	for i := uint32(0); i < f.numHashes; i++ {
		idx := f.bitIndex(h1, h2, i)
		bitmask.SetBit(f.bits, int(idx), true)
	}
}

// MayContain reports whether key could be a member: false means
// definitely absent, true means possibly present.
func (f *Filter) MayContain(key []byte) bool {
	h1, h2 := hashPair(key)
	for i := uint32(0); i < f.numHashes; i++ {
		idx := f.bitIndex(h1, h2, i)
		if !bitmask.GetBit(f.bits, int(idx)) {
			return false
		}
	}
	return true
}

func (f *Filter) bitIndex(h1, h2 uint64, i uint32) uint64 {
	return (h1 + uint64(i)*h2) % f.numBits
}

func hashPair(key []byte) (uint64, uint64) {
	h1 := fnv.New64a()
	_, _ = h1.Write(key)
	sum1 := h1.Sum64()

	h2 := fnv.New64()
	_, _ = h2.Write(key)
	sum2 := h2.Sum64()
	if sum2 == 0 {
		sum2 = 1
	}
	return sum1, sum2
}

// Encode serializes the filter to its persisted form: an 8-byte
// little-endian bit count, a 4-byte little-endian hash count, then the
// packed bitmap.
func (f *Filter) Encode() []byte {
	out := make([]byte, 12+len(f.bits))
	binary.LittleEndian.PutUint64(out[0:8], f.numBits)
	binary.LittleEndian.PutUint32(out[8:12], f.numHashes)
	copy(out[12:], f.bits)
	return out
}

// Decode parses a filter from its persisted form, as written by Encode.
func Decode(data []byte) (*Filter, error) {
	if len(data) < 12 {
		return nil, ErrTruncated
	}
	numBits := binary.LittleEndian.Uint64(data[0:8])
	numHashes := binary.LittleEndian.Uint32(data[8:12])
	bits := data[12:]
	if uint64(len(bits))*8 < numBits {
		return nil, ErrTruncated
	}
	return &Filter{bits: bits, numBits: numBits, numHashes: numHashes}, nil
}
