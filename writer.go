package sst

import "log/slog"

// WriterOptions configures a Writer. Zero-value fields fall back to
// the defaults norm applies.
type WriterOptions struct {
	// BlockSize is the target uncompressed size, in bytes, at which a
	// data block is flushed to the output stream.
	BlockSize int

	// Comparator orders keys. Must match the Comparator a Reader is
	// later opened with.
	Comparator Comparator

	// Pool is defaulted like ReaderOptions.Pool; Writer does not
	// allocate from it, since records are staged in BlockWriter's own
	// growable buffers.
	Pool MemoryPool

	// Bloom enables writing a bloom filter alongside the index block.
	Bloom bool

	// BloomExpectedEntries sizes the bloom filter. Required when Bloom is set.
	BloomExpectedEntries int64

	// BloomFalsePositiveRate targets this false positive rate; defaults to 0.01.
	BloomFalsePositiveRate float64

	Logger *slog.Logger
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}
	if oo.BlockSize <= 0 {
		oo.BlockSize = 4096
	}
	if oo.Comparator == nil {
		oo.Comparator = BytewiseComparator
	}
	if oo.Pool == nil {
		oo.Pool = NewDefaultPool()
	}
	if oo.BloomFalsePositiveRate <= 0 {
		oo.BloomFalsePositiveRate = 0.01
	}
	if oo.Logger == nil {
		oo.Logger = discardLogger()
	}
	return &oo
}

// Writer builds a single SST file: a sequence of data blocks, an
// optional bloom filter, and an index block mapping each data block's
// last key to its BlockHandle.
type Writer struct {
	out    OutputStream
	o      *WriterOptions
	data   *BlockWriter
	index  *BlockWriter
	bloom  *BloomFilter
	lastKey []byte
	closed bool
}

// NewWriter creates a Writer appending to out.
func NewWriter(out OutputStream, o *WriterOptions) *Writer {
	oo := o.norm()
	w := &Writer{
		out:   out,
		o:     oo,
		data:  NewBlockWriter(oo.BlockSize),
		index: NewBlockWriter(oo.BlockSize),
	}
	if oo.Bloom {
		bits := OptimalBits(oo.BloomExpectedEntries, oo.BloomFalsePositiveRate)
		byteLen := (bits + 7) / 8
		if byteLen < 1 {
			byteLen = 1
		}
		w.bloom = NewBloomFilter(oo.BloomExpectedEntries, byteLen)
	}
	return w
}

// Write appends a key/value pair. Keys must be strictly increasing
// according to o.Comparator; an out-of-order append is a caller bug
// and returns ErrInvalidArgument rather than silently reordering.
func (w *Writer) Write(key, value []byte) error {
	if w.closed {
		return invalidArgErrorf("writer is closed")
	}
	keySlice, valueSlice := NewSlice(key), NewSlice(value)
	if w.lastKey != nil && w.o.Comparator(NewSlice(w.lastKey), keySlice) >= 0 {
		return invalidArgErrorf("attempted an out-of-order append, %q must be > %q", key, w.lastKey)
	}

	w.data.Append(keySlice, valueSlice)
	w.lastKey = append(w.lastKey[:0], key...)

	if w.bloom != nil {
		w.bloom.AddHash(int32(Murmur32(key)))
	}

	if w.data.Memory() > int32(w.o.BlockSize) {
		return w.flushDataBlock()
	}
	return nil
}

// flushDataBlock writes the current in-flight data block to the
// output stream and records an index entry pointing at it. It is a
// no-op if no records have been appended since the last flush.
func (w *Writer) flushDataBlock() error {
	if w.data.Count() == 0 {
		return nil
	}
	handle, err := w.writeBlock(w.data)
	if err != nil {
		return err
	}
	w.index.Append(NewSlice(append([]byte(nil), w.lastKey...)), NewSlice(handle.Encode()))
	w.data.Reset()
	return nil
}

func (w *Writer) writeBlock(b *BlockWriter) (BlockHandle, error) {
	slice := b.Finish()
	crc := CRC32C(slice.Bytes())
	handle := BlockHandle{Offset: w.out.Pos(), Size: slice.Len()}
	if _, err := w.out.Write(slice.Bytes()); err != nil {
		return BlockHandle{}, err
	}
	trailer := EncodeBlockTrailer(BlockTrailer{Compression: blockCompressionNone, CRC32C: crc})
	if _, err := w.out.Write(trailer[:]); err != nil {
		return BlockHandle{}, err
	}
	return handle, nil
}

// WriteBloomFilter writes the accumulated bloom filter's raw bits, if
// bloom filtering was enabled, returning its handle.
func (w *Writer) WriteBloomFilter() (*BloomFilterHandle, error) {
	if w.bloom == nil {
		return nil, nil
	}
	offset := w.out.Pos()
	data := w.bloom.BitSet().Bytes()
	if _, err := w.out.Write(data); err != nil {
		return nil, err
	}
	return &BloomFilterHandle{Offset: offset, Size: int32(len(data)), ExpectedEntries: w.bloom.ExpectedEntries()}, nil
}

// WriteIndexBlock flushes any in-flight data block, then writes the
// index block, returning its handle.
func (w *Writer) WriteIndexBlock() (BlockHandle, error) {
	if err := w.flushDataBlock(); err != nil {
		return BlockHandle{}, err
	}
	return w.writeBlock(w.index)
}

// Close finalizes the table: flushes any in-flight data block, writes
// the bloom filter (if enabled) and the index block, and returns
// their handles. It does not flush or close the underlying output
// stream; the caller does that afterwards.
func (w *Writer) Close() (indexHandle BlockHandle, bloomHandle *BloomFilterHandle, err error) {
	if w.closed {
		return BlockHandle{}, nil, invalidArgErrorf("writer already closed")
	}
	w.closed = true
	if err = w.flushDataBlock(); err != nil {
		return BlockHandle{}, nil, err
	}
	if bloomHandle, err = w.WriteBloomFilter(); err != nil {
		return BlockHandle{}, nil, err
	}
	if indexHandle, err = w.WriteIndexBlock(); err != nil {
		return BlockHandle{}, nil, err
	}
	return indexHandle, bloomHandle, nil
}
