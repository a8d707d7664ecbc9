package sst_test

import (
	sst "github.com/apache/paimon-go"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Slice/varint codec", func() {
	It("encodes varint32 boundary values per LEB128", func() {
		cases := []struct {
			v    uint32
			want []byte
		}{
			{0, []byte{0x00}},
			{127, []byte{0x7F}},
			{128, []byte{0x80, 0x01}},
			{0x0FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
		}
		for _, c := range cases {
			out := sst.NewSliceOutput(0)
			out.WriteVarint32(c.v)
			Expect(out.Bytes()).To(Equal(c.want), "for %d", c.v)
		}
	})

	It("round-trips varint32/varint64 through SliceInput", func() {
		out := sst.NewSliceOutput(0)
		out.WriteVarint32(268435455)
		out.WriteVarint64(1 << 40)
		out.WriteU8(0xAB)
		out.WriteU32(0xDEADBEEF)

		in := sst.NewSliceInput(out.Slice())
		v32, err := in.ReadVarint32()
		Expect(err).NotTo(HaveOccurred())
		Expect(v32).To(Equal(uint32(268435455)))

		v64, err := in.ReadVarint64()
		Expect(err).NotTo(HaveOccurred())
		Expect(v64).To(Equal(uint64(1 << 40)))

		u8, err := in.ReadU8()
		Expect(err).NotTo(HaveOccurred())
		Expect(u8).To(Equal(byte(0xAB)))

		u32, err := in.ReadU32()
		Expect(err).NotTo(HaveOccurred())
		Expect(u32).To(Equal(uint32(0xDEADBEEF)))

		Expect(in.Remaining()).To(Equal(int32(0)))
	})

	It("fails reads past the end with a corrupt error", func() {
		in := sst.NewSliceInput(sst.NewSlice([]byte{0x01}))
		_, err := in.ReadU32()
		Expect(err).To(MatchError(sst.ErrCorrupt))
	})

	It("rejects malformed slice bounds as invalid argument", func() {
		s := sst.NewSlice([]byte("hello"))
		_, err := s.Slice(3, 10)
		Expect(err).To(MatchError(sst.ErrInvalidArgument))
	})

	It("orders slices bytewise", func() {
		Expect(sst.Compare(sst.NewSlice([]byte("a")), sst.NewSlice([]byte("b")))).To(BeNumerically("<", 0))
		Expect(sst.Compare(sst.NewSlice([]byte("b")), sst.NewSlice([]byte("a")))).To(BeNumerically(">", 0))
		Expect(sst.Compare(sst.NewSlice([]byte("a")), sst.NewSlice([]byte("a")))).To(Equal(0))
		Expect(sst.BytewiseComparator(sst.NewSlice([]byte("a")), sst.NewSlice([]byte("b")))).To(BeNumerically("<", 0))
	})
})
