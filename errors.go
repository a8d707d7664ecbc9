package sst

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every error this package returns satisfies
// errors.Is against exactly one of these.
var (
	// ErrNotFound is returned when a lookup key does not exist in the table.
	ErrNotFound = errors.New("sst: not found")

	// ErrInvalidArgument is returned for caller misuse: out-of-order
	// appends, bad slice bounds, operating on a closed writer, and
	// similar programmer errors that are not on-disk corruption.
	ErrInvalidArgument = errors.New("sst: invalid argument")

	// ErrCorrupt is returned when on-disk bytes fail to decode: unknown
	// block or compression tags, malformed varints, checksum mismatches,
	// truncated blocks.
	ErrCorrupt = errors.New("sst: corrupt")

	// ErrIO is returned when the underlying stream fails.
	ErrIO = errors.New("sst: io error")
)

func corruptErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("sst: corrupt: "+format+": %w", append(a, ErrCorrupt)...)
}

func invalidArgErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("sst: invalid argument: "+format+": %w", append(a, ErrInvalidArgument)...)
}

func ioErrorf(err error) error {
	return fmt.Errorf("sst: io: %w: %w", ErrIO, err)
}
