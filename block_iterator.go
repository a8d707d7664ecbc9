package sst

// iterState tracks whether BlockIterator has a decoded-but-unconsumed
// record parked ahead of the cursor (set by SeekTo), a plain
// not-yet-exhausted cursor, or nothing left to read.
type iterState int

const (
	stateFresh iterState = iota
	statePeeked
	stateExhausted
)

type peekedEntry struct {
	key, value Slice
	idx        int32
}

// BlockIterator walks a BlockReader's records in order, and supports
// seeking to the first record whose key is >= a target.
type BlockIterator struct {
	r      *BlockReader
	state  iterState
	peeked peekedEntry
	pos    int32
	err    error
}

// HasNext reports whether Next would return a record.
func (it *BlockIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	switch it.state {
	case statePeeked:
		return true
	case stateExhausted:
		return false
	default:
		return it.pos < it.r.RecordCount()
	}
}

// Next returns the next record in order, advancing the cursor.
func (it *BlockIterator) Next() (Slice, Slice, error) {
	if it.err != nil {
		return Slice{}, Slice{}, it.err
	}
	if it.state == statePeeked {
		e := it.peeked
		it.pos = e.idx + 1
		it.state = stateFresh
		if it.pos >= it.r.RecordCount() {
			it.state = stateExhausted
		}
		return e.key, e.value, nil
	}
	if it.state == stateExhausted || it.pos >= it.r.RecordCount() {
		it.state = stateExhausted
		return Slice{}, Slice{}, invalidArgErrorf("iterator has no next record")
	}
	key, value, err := it.r.recordAt(it.pos)
	if err != nil {
		it.err = err
		return Slice{}, Slice{}, err
	}
	it.pos++
	if it.pos >= it.r.RecordCount() {
		it.state = stateExhausted
	}
	return key, value, nil
}

// Peek returns the currently parked record without consuming it, if
// SeekTo left one parked.
func (it *BlockIterator) Peek() (key, value Slice, ok bool) {
	if it.state != statePeeked {
		return Slice{}, Slice{}, false
	}
	return it.peeked.key, it.peeked.value, true
}

// SeekTo positions the iterator at the first record whose key is >=
// target using binary search, returning true iff that key equals
// target exactly. If no such record exists, the iterator becomes
// exhausted and SeekTo returns false.
func (it *BlockIterator) SeekTo(target Slice) (bool, error) {
	if it.err != nil {
		return false, it.err
	}
	left, right := int32(0), it.r.RecordCount()-1
	parked := false
	for left <= right {
		mid := left + (right-left)/2
		key, value, err := it.r.recordAt(mid)
		if err != nil {
			it.err = err
			return false, err
		}
		c := it.r.cmp(key, target)
		switch {
		case c == 0:
			it.peeked = peekedEntry{key: key, value: value, idx: mid}
			it.state = statePeeked
			return true, nil
		case c > 0:
			it.peeked = peekedEntry{key: key, value: value, idx: mid}
			it.state = statePeeked
			parked = true
			right = mid - 1
		default:
			left = mid + 1
		}
	}
	if !parked {
		it.state = stateExhausted
		it.pos = it.r.RecordCount()
	}
	return false, nil
}
