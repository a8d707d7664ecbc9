package sst

import "encoding/binary"

const (
	blockCompressionNone byte = 0

	// blockTrailerLen is the fixed on-disk size of a BlockTrailer:
	// one compression tag byte followed by a little-endian CRC32C.
	blockTrailerLen = 5

	// maxBlockHandleLen bounds a varint-encoded BlockHandle: up to 9
	// bytes for a non-negative int64 offset plus up to 5 for an int32 size.
	maxBlockHandleLen = 14
)

// BlockTrailer follows every block's raw bytes on disk: a compression
// tag (always "none" in this port, see DESIGN.md) and a checksum of
// the block's uncompressed bytes.
type BlockTrailer struct {
	Compression byte
	CRC32C      uint32
}

// EncodeBlockTrailer returns the 5-byte wire form of t.
func EncodeBlockTrailer(t BlockTrailer) [blockTrailerLen]byte {
	var buf [blockTrailerLen]byte
	buf[0] = t.Compression
	binary.LittleEndian.PutUint32(buf[1:], t.CRC32C)
	return buf
}

// DecodeBlockTrailer parses exactly blockTrailerLen bytes.
func DecodeBlockTrailer(b []byte) (BlockTrailer, error) {
	if len(b) != blockTrailerLen {
		return BlockTrailer{}, corruptErrorf("bad block trailer length %d", len(b))
	}
	return BlockTrailer{
		Compression: b[0],
		CRC32C:      binary.LittleEndian.Uint32(b[1:]),
	}, nil
}

// BlockHandle locates a block's raw (trailer-excluded) bytes on disk.
type BlockHandle struct {
	Offset int64
	Size   int32
}

// FullSize returns the block's footprint on disk, trailer included.
func (h BlockHandle) FullSize() int64 { return int64(h.Size) + blockTrailerLen }

// Encode returns the varint(offset) | varint(size) wire form of h.
func (h BlockHandle) Encode() []byte {
	buf := make([]byte, 0, maxBlockHandleLen)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(h.Offset))
	buf = append(buf, tmp[:n]...)
	n = binary.PutUvarint(tmp[:], uint64(h.Size))
	buf = append(buf, tmp[:n]...)
	return buf
}

// DecodeBlockHandle parses a BlockHandle from the start of b,
// returning the number of bytes consumed.
func DecodeBlockHandle(b []byte) (BlockHandle, int, error) {
	offset, n1 := binary.Uvarint(b)
	if n1 <= 0 {
		return BlockHandle{}, 0, corruptErrorf("malformed block handle offset")
	}
	size, n2 := binary.Uvarint(b[n1:])
	if n2 <= 0 {
		return BlockHandle{}, 0, corruptErrorf("malformed block handle size")
	}
	return BlockHandle{Offset: int64(offset), Size: int32(size)}, n1 + n2, nil
}
