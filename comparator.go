package sst

import "bytes"

// Comparator orders two Slices, returning <0, 0, >0 like bytes.Compare.
// Blocks, the index, and iterators are all generic over this; a table
// written with one comparator must always be read with the same one.
type Comparator func(a, b Slice) int

// BytewiseComparator is the default Comparator: plain lexicographic
// byte-string order, the order keys are written in and read back in.
func BytewiseComparator(a, b Slice) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}
