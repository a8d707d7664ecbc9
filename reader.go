package sst

import "log/slog"

// ReaderOptions configures a Reader. Zero-value fields fall back to
// the defaults norm applies.
type ReaderOptions struct {
	Pool         MemoryPool
	Comparator   Comparator
	CacheManager *CacheManager

	// DisableChecksums skips CRC32C verification on every block read.
	// Verification is on by default.
	DisableChecksums bool

	Logger *slog.Logger
}

func (o *ReaderOptions) norm() *ReaderOptions {
	var oo ReaderOptions
	if o != nil {
		oo = *o
	}
	if oo.Pool == nil {
		oo.Pool = NewDefaultPool()
	}
	if oo.Comparator == nil {
		oo.Comparator = BytewiseComparator
	}
	if oo.CacheManager == nil {
		oo.CacheManager = NewCacheManager(NewNoCache(), NewNoCache())
	}
	if oo.Logger == nil {
		oo.Logger = discardLogger()
	}
	return &oo
}

// Reader opens a table written by Writer for point lookups and
// ordered iteration.
type Reader struct {
	o     *ReaderOptions
	cache *BlockCache
	bloom *BloomFilter
	index *BlockReader
}

// Open loads a table's index block (and bloom filter, if present)
// from stream, identified by path for cache-key purposes.
func Open(path string, stream InputStream, indexHandle BlockHandle, bloomHandle *BloomFilterHandle, o *ReaderOptions) (*Reader, error) {
	oo := o.norm()
	bc := NewBlockCache(path, stream, oo.Pool, oo.CacheManager)
	r := &Reader{o: oo, cache: bc}

	idx, err := r.loadBlock(indexHandle, true)
	if err != nil {
		return nil, err
	}
	r.index = idx

	if bloomHandle != nil {
		data, err := bc.GetBlock(bloomHandle.Offset, bloomHandle.Size, false)
		if err != nil {
			return nil, err
		}
		r.bloom = WrapBloomFilter(data.Data(), bloomHandle.ExpectedEntries)
	}
	return r, nil
}

// loadBlock reads a block's trailer and data through the cache,
// verifies its checksum (unless disabled), and parses it.
func (r *Reader) loadBlock(handle BlockHandle, isIndex bool) (*BlockReader, error) {
	trailerBytes, err := r.cache.GetBlock(handle.Offset+int64(handle.Size), blockTrailerLen, isIndex)
	if err != nil {
		return nil, err
	}
	trailer, err := DecodeBlockTrailer(trailerBytes.Data())
	if err != nil {
		return nil, err
	}
	if trailer.Compression != blockCompressionNone {
		return nil, corruptErrorf("unsupported block compression tag %d", trailer.Compression)
	}

	dataBytes, err := r.cache.GetBlock(handle.Offset, handle.Size, isIndex)
	if err != nil {
		return nil, err
	}
	if !r.o.DisableChecksums {
		if got := CRC32C(dataBytes.Data()); got != trailer.CRC32C {
			r.o.Logger.Warn("block checksum mismatch", "offset", handle.Offset, "expected", trailer.CRC32C, "got", got)
			return nil, corruptErrorf("checksum mismatch at offset %d: expected %d, got %d", handle.Offset, trailer.CRC32C, got)
		}
	}
	return NewBlockReader(dataBytes.Data(), r.o.Comparator)
}

// NumDataBlocks returns the number of data blocks in the table.
func (r *Reader) NumDataBlocks() int32 { return r.index.RecordCount() }

// Lookup returns a pooled copy of the value stored under key, or
// ErrNotFound if key isn't present.
func (r *Reader) Lookup(key []byte) (*Bytes, error) {
	target := NewSlice(key)

	if r.bloom != nil && !r.bloom.TestHash(int32(Murmur32(key))) {
		return nil, ErrNotFound
	}

	idxIter := r.index.NewIterator()
	if _, err := idxIter.SeekTo(target); err != nil {
		return nil, err
	}
	if !idxIter.HasNext() {
		return nil, ErrNotFound
	}
	_, handleSlice, err := idxIter.Next()
	if err != nil {
		return nil, err
	}
	handle, _, err := DecodeBlockHandle(handleSlice.Bytes())
	if err != nil {
		return nil, err
	}

	dataReader, err := r.loadBlock(handle, false)
	if err != nil {
		return nil, err
	}
	dataIter := dataReader.NewIterator()
	exact, err := dataIter.SeekTo(target)
	if err != nil {
		return nil, err
	}
	if !exact {
		return nil, ErrNotFound
	}
	_, value, err := dataIter.Next()
	if err != nil {
		return nil, err
	}
	return value.CopyBytes(r.o.Pool), nil
}

// SstIterator walks a table's records in key order, transparently
// crossing data block boundaries by pulling the next entry from the
// index as each block is exhausted.
type SstIterator struct {
	r       *Reader
	idxIter *BlockIterator
	dataIter *BlockIterator
	err     error
}

// NewIterator returns an iterator positioned before the table's first record.
func (r *Reader) NewIterator() *SstIterator {
	return &SstIterator{r: r, idxIter: r.index.NewIterator()}
}

// SeekTo positions the iterator at the first record whose key is >=
// key, returning true iff that key equals key exactly.
func (it *SstIterator) SeekTo(key []byte) (bool, error) {
	target := NewSlice(key)
	if _, err := it.idxIter.SeekTo(target); err != nil {
		it.err = err
		return false, err
	}
	if !it.idxIter.HasNext() {
		it.dataIter = nil
		return false, nil
	}
	_, handleSlice, err := it.idxIter.Next()
	if err != nil {
		it.err = err
		return false, err
	}
	handle, _, err := DecodeBlockHandle(handleSlice.Bytes())
	if err != nil {
		it.err = err
		return false, err
	}
	br, err := it.r.loadBlock(handle, false)
	if err != nil {
		it.err = err
		return false, err
	}
	it.dataIter = br.NewIterator()
	return it.dataIter.SeekTo(target)
}

// HasNext reports whether Next would return a record.
func (it *SstIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	if it.dataIter != nil && it.dataIter.HasNext() {
		return true
	}
	return it.idxIter.HasNext()
}

// Next returns the next record in key order, loading the next data
// block via the index as needed.
func (it *SstIterator) Next() (Slice, Slice, error) {
	if it.err != nil {
		return Slice{}, Slice{}, it.err
	}
	for {
		if it.dataIter != nil && it.dataIter.HasNext() {
			return it.dataIter.Next()
		}
		if !it.idxIter.HasNext() {
			return Slice{}, Slice{}, invalidArgErrorf("iterator has no next record")
		}
		_, handleSlice, err := it.idxIter.Next()
		if err != nil {
			it.err = err
			return Slice{}, Slice{}, err
		}
		handle, _, err := DecodeBlockHandle(handleSlice.Bytes())
		if err != nil {
			it.err = err
			return Slice{}, Slice{}, err
		}
		br, err := it.r.loadBlock(handle, false)
		if err != nil {
			it.err = err
			return Slice{}, Slice{}, err
		}
		it.dataIter = br.NewIterator()
	}
}

// Close closes the underlying input stream.
func (r *Reader) Close() error { return r.cache.Close() }
