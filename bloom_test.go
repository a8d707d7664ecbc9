package sst_test

import (
	"fmt"

	sst "github.com/apache/paimon-go"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("BloomFilter", func() {
	It("sizes a 30-entry, 1% filter to 288 bits with k=7", func() {
		bits := sst.OptimalBits(30, 0.01)
		Expect(bits).To(Equal(int32(288)))

		byteLen := (bits + 7) / 8
		Expect(byteLen).To(Equal(int32(36)))

		f := sst.NewBloomFilter(30, byteLen)
		Expect(f.NumHashFunctions()).To(Equal(int32(7)))
	})

	It("never false-negatives on inserted keys", func() {
		f := sst.NewBloomFilter(30, 36)
		keys := make([][]byte, 30)
		for i := range keys {
			keys[i] = []byte(fmt.Sprintf("bloom-key-%03d", i))
			f.AddHash(int32(sst.Murmur32(keys[i])))
		}
		for _, k := range keys {
			Expect(f.TestHash(int32(sst.Murmur32(k)))).To(BeTrue())
		}
	})

	It("resets to all-zero without changing sizing", func() {
		f := sst.NewBloomFilter(10, 16)
		f.AddHash(int32(sst.Murmur32([]byte("x"))))
		f.Reset()
		Expect(f.BitSet().Test(0)).To(BeFalse())
		// 16 bytes = 128 bits for 10 entries: round(12.8 * ln 2) = 9.
		Expect(f.NumHashFunctions()).To(Equal(int32(9)))
	})

	It("wraps on-disk bytes and recomputes k from expected entries", func() {
		f := sst.NewBloomFilter(30, 36)
		f.AddHash(int32(sst.Murmur32([]byte("wrapped"))))
		w := sst.WrapBloomFilter(f.BitSet().Bytes(), 30)
		Expect(w.NumHashFunctions()).To(Equal(int32(7)))
		Expect(w.TestHash(int32(sst.Murmur32([]byte("wrapped"))))).To(BeTrue())
	})
})
