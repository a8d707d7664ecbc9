package sst

type blockTag byte

const (
	blockAligned   blockTag = 0
	blockUnaligned blockTag = 1
)

// BlockWriter accumulates key/value records into a block, choosing
// between the ALIGNED and UNALIGNED footer layouts at Finish time:
// ALIGNED stores a single record stride, UNALIGNED stores an explicit
// per-record position table for blocks whose records vary in size.
type BlockWriter struct {
	out        *SliceOutput
	positions  []int32
	aligned    bool
	haveStride bool
	stride     int32
}

// NewBlockWriter creates an empty writer with sizeHint bytes of
// initial buffer capacity.
func NewBlockWriter(sizeHint int) *BlockWriter {
	return &BlockWriter{out: NewSliceOutput(sizeHint), aligned: true}
}

// Append writes one key/value record. Keys must be appended in
// strictly increasing order by the caller's comparator; BlockWriter
// itself doesn't enforce that (Writer does, for the whole table).
func (w *BlockWriter) Append(key, value Slice) {
	start := w.out.Len()
	w.positions = append(w.positions, start)
	w.out.WriteVarint32(uint32(key.Len()))
	w.out.Write(key.Bytes())
	w.out.WriteVarint32(uint32(value.Len()))
	w.out.Write(value.Bytes())

	width := w.out.Len() - start
	if !w.haveStride {
		w.stride = width
		w.haveStride = true
	} else if width != w.stride {
		w.aligned = false
	}
}

// Count returns the number of records appended since the last Reset.
func (w *BlockWriter) Count() int32 { return int32(len(w.positions)) }

// Memory estimates the block's final on-disk footprint: the record
// bytes written so far, plus the fixed trailer, plus (for an
// UNALIGNED block) the per-record position table. Writer uses this to
// decide when to flush the current block.
func (w *BlockWriter) Memory() int32 {
	mem := w.out.Len() + blockTrailerLen
	if !w.aligned {
		mem += int32(len(w.positions)) * 4
	}
	return mem
}

// Reset empties the writer for reuse, retaining its buffer capacity.
func (w *BlockWriter) Reset() {
	w.out.Reset()
	w.positions = w.positions[:0]
	w.aligned = true
	w.haveStride = false
	w.stride = 0
}

// Finish appends the block's footer and returns the complete block
// bytes (record data plus footer, trailer excluded). An empty block
// is always written UNALIGNED with a zero record count.
func (w *BlockWriter) Finish() Slice {
	n := len(w.positions)
	aligned := w.aligned && n > 0
	if aligned {
		w.out.WriteU32(uint32(w.stride))
		w.out.WriteU8(byte(blockAligned))
	} else {
		for _, p := range w.positions {
			w.out.WriteU32(uint32(p))
		}
		w.out.WriteU32(uint32(n))
		w.out.WriteU8(byte(blockUnaligned))
	}
	return w.out.Slice()
}
