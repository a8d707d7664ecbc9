package sst

import "encoding/binary"

// BlockReader parses a block's finished bytes (footer included,
// trailer excluded) and provides random access to its records by
// index, choosing the ALIGNED or UNALIGNED decode path based on the
// block's last byte.
type BlockReader struct {
	data   []byte
	count  int32
	starts func(i int32) int32
	cmp    Comparator
}

// NewBlockReader parses raw block bytes written by BlockWriter.Finish.
func NewBlockReader(raw []byte, cmp Comparator) (*BlockReader, error) {
	if len(raw) < 5 {
		return nil, corruptErrorf("block too small: %d bytes", len(raw))
	}
	tag := raw[len(raw)-1]
	switch blockTag(tag) {
	case blockAligned:
		return newAlignedBlockReader(raw, cmp)
	case blockUnaligned:
		return newUnalignedBlockReader(raw, cmp)
	default:
		return nil, corruptErrorf("unknown block tag %d", tag)
	}
}

func newAlignedBlockReader(raw []byte, cmp Comparator) (*BlockReader, error) {
	footerStart := len(raw) - 5
	width := binary.LittleEndian.Uint32(raw[footerStart : footerStart+4])
	data := raw[:footerStart]
	if width == 0 {
		return nil, corruptErrorf("aligned block has zero record stride")
	}
	if len(data)%int(width) != 0 {
		return nil, corruptErrorf("aligned block data length %d not a multiple of stride %d", len(data), width)
	}
	count := int32(len(data)) / int32(width)
	w := int32(width)
	return &BlockReader{
		data:   data,
		count:  count,
		starts: func(i int32) int32 { return i * w },
		cmp:    cmp,
	}, nil
}

func newUnalignedBlockReader(raw []byte, cmp Comparator) (*BlockReader, error) {
	footerStart := len(raw) - 5
	n := int32(binary.LittleEndian.Uint32(raw[footerStart : footerStart+4]))
	if n < 0 {
		return nil, corruptErrorf("unaligned block has negative record count %d", n)
	}
	idxLen := int(n) * 4
	idxStart := footerStart - idxLen
	if idxStart < 0 {
		return nil, corruptErrorf("unaligned block position table overruns block data")
	}
	data := raw[:idxStart]
	idx := raw[idxStart:footerStart]
	positions := make([]int32, n)
	for i := int32(0); i < n; i++ {
		positions[i] = int32(binary.LittleEndian.Uint32(idx[i*4 : i*4+4]))
	}
	return &BlockReader{
		data:   data,
		count:  n,
		starts: func(i int32) int32 { return positions[i] },
		cmp:    cmp,
	}, nil
}

// RecordCount returns the number of key/value records in the block.
func (r *BlockReader) RecordCount() int32 { return r.count }

func (r *BlockReader) recordAt(i int32) (key, value Slice, err error) {
	if i < 0 || i >= r.count {
		return Slice{}, Slice{}, corruptErrorf("record index %d out of range [0,%d)", i, r.count)
	}
	start := r.starts(i)
	if start < 0 || int(start) > len(r.data) {
		return Slice{}, Slice{}, corruptErrorf("record %d start %d out of range", i, start)
	}
	in := NewSliceInput(NewSlice(r.data[start:]))
	klen, err := in.ReadVarint32()
	if err != nil {
		return Slice{}, Slice{}, err
	}
	key, err = in.ReadSlice(int32(klen))
	if err != nil {
		return Slice{}, Slice{}, err
	}
	vlen, err := in.ReadVarint32()
	if err != nil {
		return Slice{}, Slice{}, err
	}
	value, err = in.ReadSlice(int32(vlen))
	if err != nil {
		return Slice{}, Slice{}, err
	}
	return key, value, nil
}

// NewIterator returns a fresh iterator over this block's records.
func (r *BlockReader) NewIterator() *BlockIterator {
	return &BlockIterator{r: r}
}
