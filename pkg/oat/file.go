package oat

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-only view of an OAT container. It prefers an mmap backing
// for zero-copy reads and falls back to ReadAt on the open file descriptor
// where mmap is unavailable. Either way, consumers only ever issue small
// bounded ReadAt calls; the container is never loaded wholesale.
type File struct {
	ra   io.ReaderAt
	size int64
	data []byte   // non-nil when mmapped
	f    *os.File // non-nil on the fallback path
}

// Open opens an OAT container read-only.
// The returned file must be closed to release the mapping or descriptor.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	size := stat.Size()
	if size <= 0 || size > int64(int(^uint(0)>>1)) {
		_ = f.Close()
		return nil, ErrTruncated
	}

	data, err := unix.Mmap(
		int(f.Fd()),
		0,
		int(size),
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
	if err == nil {
		// The mapping outlives the descriptor.
		_ = f.Close()
		return &File{
			ra:   bytes.NewReader(data),
			size: size,
			data: data,
		}, nil
	}

	return &File{ra: f, size: size, f: f}, nil
}

// NewFileReaderAt wraps a random-access reader as a File without mmap.
func NewFileReaderAt(r io.ReaderAt, size int64) *File {
	return &File{ra: r, size: size}
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.ra.ReadAt(p, off)
}

// Size returns the container size in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Close releases the mmap backing or the underlying descriptor.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	var err error
	if f.data != nil {
		err = unix.Munmap(f.data)
		f.data = nil
	}
	if f.f != nil {
		if cerr := f.f.Close(); err == nil {
			err = cerr
		}
		f.f = nil
	}
	f.ra = nil
	f.size = 0
	return err
}
