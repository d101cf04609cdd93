package oat

import (
	"context"
	"fmt"
)

// MaxLocationLen caps the per-entry location string. Anything longer means
// the record stream is not where we think it is, typically because the
// container uses an unrecognised vendor layout, so the whole run stops
// rather than guess at the remaining entries.
const MaxLocationLen = 256

// Payload header fields the walker consumes. These are offsets into the DEX
// header itself, not the OAT header.
const (
	payloadSizeOff     = 32 // file_size
	payloadClassDefOff = 96 // class_defs_size
)

// Entry describes one embedded dex file.
type Entry struct {
	Index         uint32
	Location      string
	Checksum      uint32
	PayloadOffset uint64
	PayloadSize   uint32
	ClassDefs     uint32
}

// Options configure a walk over the per-dex records.
type Options struct {
	// Samsung enables handling of the vendor record variant that carries an
	// extra uint32 (methods_offsets_) after the dex file pointer.
	Samsung bool
}

// VisitFunc is invoked once per decoded entry, before the walker advances
// past the entry's class offset table. Returning an error aborts the run.
type VisitFunc func(e Entry) error

// Walker decodes the per-dex records of one container, strictly in order:
// each record's start is only known after the previous record's payload has
// been inspected.
type Walker struct {
	r      *File
	anchor uint64
	hdr    Header
	opts   Options
}

// NewWalker builds a walker over f for the container whose oatdata region
// starts at anchor and whose fixed header has already been parsed.
func NewWalker(f *File, anchor uint64, hdr Header, opts Options) *Walker {
	return &Walker{r: f, anchor: anchor, hdr: hdr, opts: opts}
}

// walkState is the per-iteration loop state, threaded explicitly so a single
// step stays testable in isolation.
type walkState struct {
	next    uint64 // file offset of the next record
	emitted uint32 // entries visited so far
}

// Walk decodes every record and hands each entry to visit. ctx is checked
// between iterations only; there is no mid-entry cancellation.
func (w *Walker) Walk(ctx context.Context, visit VisitFunc) error {
	st := walkState{next: w.hdr.FirstEntry}
	for st.emitted < w.hdr.EntryCount {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		st, err = w.step(st, visit)
		if err != nil {
			return fmt.Errorf("dex entry %d: %w", st.emitted, err)
		}
	}
	return nil
}

// step decodes exactly one record starting at st.next and returns the state
// for the following record.
func (w *Walker) step(st walkState, visit VisitFunc) (walkState, error) {
	off := st.next

	locLen, err := readU32(w.r, off)
	if err != nil {
		return st, err
	}
	off += 4

	if locLen > MaxLocationLen {
		return st, fmt.Errorf("%w: %d bytes", ErrOversizedLocation, locLen)
	}
	loc, err := readN(w.r, off, int(locLen))
	if err != nil {
		return st, err
	}
	off += uint64(locLen)

	checksum, err := readU32(w.r, off)
	if err != nil {
		return st, err
	}
	off += 4

	pointer, err := readU32(w.r, off)
	if err != nil {
		return st, err
	}
	off += 4

	payloadOff := w.anchor + uint64(pointer)
	payloadSize, err := readU32(w.r, payloadOff+payloadSizeOff)
	if err != nil {
		return st, err
	}

	entry := Entry{
		Index:         st.emitted,
		Location:      string(loc),
		Checksum:      checksum,
		PayloadOffset: payloadOff,
		PayloadSize:   payloadSize,
	}

	classDefs, err := readU32(w.r, payloadOff+payloadClassDefOff)
	if err != nil {
		return st, err
	}
	entry.ClassDefs = classDefs

	if visit != nil {
		if err := visit(entry); err != nil {
			return st, err
		}
	}

	if w.opts.Samsung {
		off += 4
	}
	off += uint64(classDefs) * 4

	return walkState{next: off, emitted: st.emitted + 1}, nil
}

// Entries decodes every record without extracting anything.
func (w *Walker) Entries(ctx context.Context) ([]Entry, error) {
	entries := make([]Entry, 0, w.hdr.EntryCount)
	err := w.Walk(ctx, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
