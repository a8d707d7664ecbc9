package sst

import "math"

// BloomFilterHandle locates a written bloom filter's raw bits and
// records the expected-entries count needed to recompute k on read.
type BloomFilterHandle struct {
	Offset          int64
	Size            int32
	ExpectedEntries int64
}

// BloomFilter is a classical Bloom filter over a fixed-size BitSet,
// probed with the double-hashing expansion of a single 32-bit hash.
type BloomFilter struct {
	expectedEntries int64
	k               int32
	bits            *BitSet
}

// OptimalBits returns the bit-set size that achieves false positive
// rate fpp for n expected entries.
func OptimalBits(n int64, fpp float64) int32 {
	if n <= 0 || fpp <= 0 || fpp >= 1 {
		return 0
	}
	b := math.Ceil(-float64(n) * math.Log(fpp) / (math.Ln2 * math.Ln2))
	if b > math.MaxInt32 {
		return math.MaxInt32
	}
	if b < 0 {
		return 0
	}
	return int32(b)
}

func optimalK(n int64, bitLength int64) int32 {
	if n <= 0 || bitLength <= 0 {
		return 1
	}
	k := int32(math.Round(float64(bitLength) / float64(n) * math.Ln2))
	if k < 1 {
		k = 1
	}
	return k
}

// NewBloomFilter allocates a fresh, zeroed filter sized to hold
// expectedEntries within byteLength bytes.
func NewBloomFilter(expectedEntries int64, byteLength int32) *BloomFilter {
	bs := NewBitSet(int(byteLength))
	return &BloomFilter{
		expectedEntries: expectedEntries,
		k:               optimalK(expectedEntries, int64(bs.BitLength())),
		bits:            bs,
	}
}

// WrapBloomFilter views an on-disk bloom filter's raw bytes without
// copying, recomputing k from expectedEntries and the wrapped length.
func WrapBloomFilter(buf []byte, expectedEntries int64) *BloomFilter {
	bs := WrapBitSet(buf, 0, len(buf))
	return &BloomFilter{
		expectedEntries: expectedEntries,
		k:               optimalK(expectedEntries, int64(bs.BitLength())),
		bits:            bs,
	}
}

// NumHashFunctions returns k, the number of probes per key.
func (f *BloomFilter) NumHashFunctions() int32 { return f.k }

// ExpectedEntries returns the entry count the filter was sized for.
func (f *BloomFilter) ExpectedEntries() int64 { return f.expectedEntries }

// BitSet exposes the underlying bit vector, e.g. to serialize it.
func (f *BloomFilter) BitSet() *BitSet { return f.bits }

// AddHash inserts a key's 32-bit hash into the filter.
func (f *BloomFilter) AddHash(h1 int32) {
	bitLen := int32(f.bits.BitLength())
	if bitLen == 0 {
		return
	}
	h2 := h1 >> 16
	for i := int32(1); i <= f.k; i++ {
		combined := h1 + i*h2
		if combined < 0 {
			combined = ^combined
		}
		f.bits.Set(int(combined % bitLen))
	}
}

// TestHash reports whether a key's 32-bit hash may be present. False
// negatives never occur; false positives are bounded by the filter's
// sizing.
func (f *BloomFilter) TestHash(h1 int32) bool {
	bitLen := int32(f.bits.BitLength())
	if bitLen == 0 {
		return true
	}
	h2 := h1 >> 16
	for i := int32(1); i <= f.k; i++ {
		combined := h1 + i*h2
		if combined < 0 {
			combined = ^combined
		}
		if !f.bits.Test(int(combined % bitLen)) {
			return false
		}
	}
	return true
}

// Reset clears every bit, leaving sizing (k, expected entries) intact.
func (f *BloomFilter) Reset() { f.bits.Clear() }
