package sst

import (
	"bytes"
	"encoding/binary"
)

// Slice is a zero-copy view over a byte range, optionally backed by a
// pooled Bytes buffer. Copying a Slice copies the view, not the data.
type Slice struct {
	data  []byte
	owner *Bytes
}

// NewSlice wraps an existing byte slice with no pool ownership.
func NewSlice(data []byte) Slice { return Slice{data: data} }

// Len returns the number of bytes in the view.
func (s Slice) Len() int32 { return int32(len(s.data)) }

// Bytes returns the underlying byte range. Callers must not retain it
// past the lifetime of the owning Bytes buffer, if any.
func (s Slice) Bytes() []byte { return s.data }

// Slice returns a sub-view [index, index+length) of s.
func (s Slice) Slice(index, length int32) (Slice, error) {
	if index < 0 || length < 0 || int64(index)+int64(length) > int64(len(s.data)) {
		return Slice{}, invalidArgErrorf("slice bounds out of range [%d:%d] with length %d", index, index+length, len(s.data))
	}
	return Slice{data: s.data[index : index+length], owner: s.owner}, nil
}

// Compare returns bytewise lexicographic order of a against b.
func Compare(a, b Slice) int { return bytes.Compare(a.data, b.data) }

// CopyBytes materializes s into a freshly pooled buffer, decoupling
// the returned data from whatever backs s (e.g. a shared cache page).
func (s Slice) CopyBytes(pool MemoryPool) *Bytes {
	b := pool.Allocate(len(s.data))
	copy(b.Data(), s.data)
	return b
}

// SliceInput is a forward-only cursor over a Slice, used to decode
// records and headers. Reads past the end fail with ErrCorrupt: this
// cursor is used exclusively to parse on-disk bytes, so a short read
// always means truncated or malformed data, never caller error.
type SliceInput struct {
	s   Slice
	pos int32
}

// NewSliceInput creates a cursor positioned at the start of s.
func NewSliceInput(s Slice) *SliceInput { return &SliceInput{s: s} }

// Pos returns the current read offset.
func (c *SliceInput) Pos() int32 { return c.pos }

// Remaining returns the number of unread bytes.
func (c *SliceInput) Remaining() int32 { return c.s.Len() - c.pos }

func (c *SliceInput) need(n int32) error {
	if c.Remaining() < n {
		return corruptErrorf("unexpected end of block at offset %d, need %d more bytes", c.pos, n)
	}
	return nil
}

// ReadU8 reads one byte.
func (c *SliceInput) ReadU8() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.s.data[c.pos]
	c.pos++
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (c *SliceInput) ReadU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.s.data[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64.
func (c *SliceInput) ReadU64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.s.data[c.pos : c.pos+8])
	c.pos += 8
	return v, nil
}

// ReadVarint32 reads a LEB128-encoded value that must fit in 32 bits.
func (c *SliceInput) ReadVarint32() (uint32, error) {
	u, n := binary.Uvarint(c.s.data[c.pos:])
	if n <= 0 {
		return 0, corruptErrorf("malformed varint32 at offset %d", c.pos)
	}
	if u > 0xFFFFFFFF {
		return 0, corruptErrorf("varint32 overflow at offset %d", c.pos)
	}
	c.pos += int32(n)
	return uint32(u), nil
}

// ReadVarint64 reads a LEB128-encoded 64-bit value.
func (c *SliceInput) ReadVarint64() (uint64, error) {
	u, n := binary.Uvarint(c.s.data[c.pos:])
	if n <= 0 {
		return 0, corruptErrorf("malformed varint64 at offset %d", c.pos)
	}
	c.pos += int32(n)
	return u, nil
}

// ReadSlice reads and returns the next length bytes as a sub-slice.
func (c *SliceInput) ReadSlice(length int32) (Slice, error) {
	if length < 0 {
		return Slice{}, corruptErrorf("negative slice length %d at offset %d", length, c.pos)
	}
	if err := c.need(length); err != nil {
		return Slice{}, err
	}
	v := Slice{data: c.s.data[c.pos : c.pos+length], owner: c.s.owner}
	c.pos += length
	return v, nil
}

// SliceOutput is a growable byte buffer used to build blocks and
// records before they're written to a stream.
type SliceOutput struct {
	buf []byte
}

// NewSliceOutput creates an empty buffer with the given initial capacity hint.
func NewSliceOutput(capacityHint int) *SliceOutput {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &SliceOutput{buf: make([]byte, 0, capacityHint)}
}

// Len returns the number of bytes written so far.
func (o *SliceOutput) Len() int32 { return int32(len(o.buf)) }

// WriteU8 appends one byte.
func (o *SliceOutput) WriteU8(v byte) { o.buf = append(o.buf, v) }

// WriteU32 appends a little-endian uint32.
func (o *SliceOutput) WriteU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	o.buf = append(o.buf, tmp[:]...)
}

// WriteU64 appends a little-endian uint64.
func (o *SliceOutput) WriteU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	o.buf = append(o.buf, tmp[:]...)
}

// WriteVarint32 appends v LEB128-encoded, returning the byte count written.
func (o *SliceOutput) WriteVarint32(v uint32) int {
	var tmp [binary.MaxVarintLen32]byte
	n := binary.PutUvarint(tmp[:], uint64(v))
	o.buf = append(o.buf, tmp[:n]...)
	return n
}

// WriteVarint64 appends v LEB128-encoded, returning the byte count written.
func (o *SliceOutput) WriteVarint64(v uint64) int {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	o.buf = append(o.buf, tmp[:n]...)
	return n
}

// Write appends raw bytes.
func (o *SliceOutput) Write(p []byte) { o.buf = append(o.buf, p...) }

// Bytes returns the accumulated buffer.
func (o *SliceOutput) Bytes() []byte { return o.buf }

// Slice returns a Slice view over the accumulated buffer.
func (o *SliceOutput) Slice() Slice { return Slice{data: o.buf} }

// Reset empties the buffer for reuse, retaining its capacity.
func (o *SliceOutput) Reset() { o.buf = o.buf[:0] }
