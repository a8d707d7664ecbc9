package sst

import (
	"os"

	"golang.org/x/exp/mmap"
)

// OutputStream is the sink a Writer appends encoded blocks to. It
// does not fsync on its own; callers decide when durability matters.
type OutputStream interface {
	Write(p []byte) (int, error)
	Pos() int64
	Flush() error
	Close() error
}

// InputStream is the source a Reader loads blocks from at arbitrary
// offsets.
type InputStream interface {
	ReadAt(buf []byte, off int64) error
	Size() int64
	Close() error
}

// FileOutputStream writes to an *os.File, tracking its own write
// position the way a Writer needs it for block handles.
type FileOutputStream struct {
	f   *os.File
	pos int64
}

// NewFileOutputStream wraps f, assumed positioned at offset 0.
func NewFileOutputStream(f *os.File) *FileOutputStream {
	return &FileOutputStream{f: f}
}

func (s *FileOutputStream) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	s.pos += int64(n)
	if err != nil {
		return n, ioErrorf(err)
	}
	return n, nil
}

// Pos returns the number of bytes written so far.
func (s *FileOutputStream) Pos() int64 { return s.pos }

// Flush fsyncs the underlying file.
func (s *FileOutputStream) Flush() error {
	if err := s.f.Sync(); err != nil {
		return ioErrorf(err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileOutputStream) Close() error {
	if err := s.f.Close(); err != nil {
		return ioErrorf(err)
	}
	return nil
}

// FileInputStream reads from an *os.File via pread-style ReadAt calls.
type FileInputStream struct {
	f    *os.File
	size int64
}

// NewFileInputStream wraps f, stat'ing it once to learn its size.
func NewFileInputStream(f *os.File) (*FileInputStream, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, ioErrorf(err)
	}
	return &FileInputStream{f: f, size: fi.Size()}, nil
}

func (s *FileInputStream) ReadAt(buf []byte, off int64) error {
	if _, err := s.f.ReadAt(buf, off); err != nil {
		return ioErrorf(err)
	}
	return nil
}

// Size returns the file's length as of when it was opened.
func (s *FileInputStream) Size() int64 { return s.size }

// Close closes the underlying file.
func (s *FileInputStream) Close() error {
	if err := s.f.Close(); err != nil {
		return ioErrorf(err)
	}
	return nil
}

// MappedInputStream reads from a memory-mapped file, avoiding a
// read() syscall per block for read-heavy workloads.
type MappedInputStream struct {
	r *mmap.ReaderAt
}

// NewMappedInputStream mmaps the file at path for reading.
func NewMappedInputStream(path string) (*MappedInputStream, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, ioErrorf(err)
	}
	return &MappedInputStream{r: r}, nil
}

func (s *MappedInputStream) ReadAt(buf []byte, off int64) error {
	if _, err := s.r.ReadAt(buf, off); err != nil {
		return ioErrorf(err)
	}
	return nil
}

// Size returns the mapped file's length.
func (s *MappedInputStream) Size() int64 { return int64(s.r.Len()) }

// Close unmaps the file.
func (s *MappedInputStream) Close() error {
	if err := s.r.Close(); err != nil {
		return ioErrorf(err)
	}
	return nil
}
