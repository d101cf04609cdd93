package oat

import (
	"encoding/binary"
	"fmt"
	"io"
)

func readN(r io.ReaderAt, off uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: invalid read length %d", ErrTruncated, n)
	}
	if off > uint64(1)<<62 {
		return nil, fmt.Errorf("%w: offset 0x%x out of range", ErrTruncated, off)
	}
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, int64(off)); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: read %d bytes at 0x%x", ErrTruncated, n, off)
		}
		return nil, err
	}
	return buf, nil
}

func readU32(r io.ReaderAt, off uint64) (uint32, error) {
	b, err := readN(r, off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
