/*
Package sst implements the on-disk sorted-string-table format used to
persist a table's data: a sequence of key/value blocks, an optional
bloom filter, and a two-level index that lets a Reader locate any key
with one index-block bsearch followed by one data-block bsearch.

File layout

	+----------------+
	|  Data Block 0  |
	+----------------+
	| Block Trailer  |
	+----------------+
	|  Data Block 1  |
	+----------------+
	| Block Trailer  |
	+----------------+
	|      ...       |
	+----------------+
	| Bloom Filter   |  (optional)
	+----------------+
	|  Index Block   |
	+----------------+
	| Block Trailer  |
	+----------------+

Block layout

	+------------------------------------------------+
	| key len | key bytes | value len | value bytes  |  -\
	+------------------------------------------------+   |
	| key len | key bytes | value len | value bytes  |   +-> records
	+------------------------------------------------+   |
	|                    ...                          |  -/
	+------------------------------------------------+
	| entry pos | entry pos | ... | entry pos        |  -> UNALIGNED only
	+------------------------------------------------+
	|  stride (or record count)  |  aligned tag       |
	+------------------------------------------------+

A block is ALIGNED when every record occupies the same number of
bytes, in which case the footer stores that stride and record offsets
are computed by multiplication. Otherwise it's UNALIGNED and the
footer carries an explicit per-record offset table.

The index block is an ordinary block whose keys are the last key of
each data block and whose values are varint-encoded BlockHandles,
searched with the same BlockIterator as any other block.
*/
package sst
