package oat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// carveChunkSize bounds how much of a payload is in memory at once while
// copying it out.
const carveChunkSize = 1024

// ExtractOptions configure one extraction run.
type ExtractOptions struct {
	// OutDir is the destination directory, created if absent.
	OutDir string
	// BaseName, when set, forces sequential output naming instead of names
	// derived from the embedded location strings.
	BaseName string
}

// Artifact describes one file written by Extract.
type Artifact struct {
	Path     string
	Location string
	Size     uint32
	Checksum uint32
}

// Extract walks every record and carves each payload into opts.OutDir. The
// first failure aborts the run; files written by earlier entries stay in
// place, and a conflicting pre-existing output path is a run-level error.
func (w *Walker) Extract(ctx context.Context, opts ExtractOptions) ([]Artifact, error) {
	outDir := opts.OutDir
	if outDir == "" {
		outDir = "."
	}

	artifacts := make([]Artifact, 0, w.hdr.EntryCount)
	err := w.Walk(ctx, func(e Entry) error {
		outPath := filepath.Join(outDir, OutputName(e.Location, opts.BaseName, e.Index))
		if err := w.carve(e, outPath); err != nil {
			return err
		}
		artifacts = append(artifacts, Artifact{
			Path:     outPath,
			Location: e.Location,
			Size:     e.PayloadSize,
			Checksum: e.Checksum,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// carve streams one payload from the container into outPath in bounded
// chunks. Creation is exclusive so a pre-existing path fails atomically
// rather than racing a separate existence check.
func (w *Walker) carve(e Entry, outPath string) error {
	if e.PayloadSize == 0 {
		return fmt.Errorf("%w: zero size at 0x%x", ErrInvalidPayloadSize, e.PayloadOffset)
	}
	end := e.PayloadOffset + uint64(e.PayloadSize)
	if end < e.PayloadOffset || end > uint64(w.r.Size()) {
		return fmt.Errorf("%w: %d bytes at 0x%x exceeds container", ErrInvalidPayloadSize, e.PayloadSize, e.PayloadOffset)
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	dst, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrOutputExists, outPath)
		}
		return err
	}

	src := io.NewSectionReader(w.r, int64(e.PayloadOffset), int64(e.PayloadSize))
	err = copyChunked(dst, src, int64(e.PayloadSize))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("carve %s: %w", outPath, err)
	}
	return nil
}

// copyChunked copies exactly want bytes in reads no larger than
// carveChunkSize, failing if the source runs dry early.
func copyChunked(dst io.Writer, src io.Reader, want int64) error {
	buf := make([]byte, carveChunkSize)
	var written int64
	for written < want {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			written += int64(n)
		}
		if err != nil {
			if err == io.EOF && written == want {
				break
			}
			if err == io.EOF {
				return fmt.Errorf("%w: wrote %d of %d bytes", ErrTruncated, written, want)
			}
			return err
		}
	}
	return nil
}
