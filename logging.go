package sst

import (
	"io"
	"log/slog"
)

// discardLogger backs ReaderOptions.Logger, WriterOptions.Logger and
// NewLRUCache's logger when the caller doesn't supply one, so log calls
// throughout this package never need a nil check.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
