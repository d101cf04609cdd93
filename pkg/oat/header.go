package oat

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fixed field offsets relative to the anchor (start of the oatdata region).
const (
	offMagic      = 0
	offVersion    = 4
	offEntryCount = 20
)

// generation tags the two OAT header layout families. The header grew by a
// net 12 bytes of earlier fields at version 64, which collapses into a fixed
// delta for both the key/value-store size field and the end of the fixed
// header.
type generation int

const (
	genPre64 generation = iota
	genPost64
)

type layout struct {
	trailingSizeOff uint64 // offset of the key/value store size field
	fixedSize       uint64 // bytes of fixed header preceding the store
}

var layouts = map[generation]layout{
	genPre64:  {trailingSizeOff: 80, fixedSize: 84},
	genPost64: {trailingSizeOff: 68, fixedSize: 72},
}

func generationOf(version uint32) generation {
	if version < 64 {
		return genPre64
	}
	return genPost64
}

// Header is the decoded fixed OAT header.
type Header struct {
	Magic        [4]byte
	Version      uint32
	EntryCount   uint32
	TrailingSize uint32 // key/value store size
	FirstEntry   uint64 // absolute file offset of the first per-dex record
}

// ParseHeader decodes the fixed OAT header at anchor. The magic bytes are
// carried through untouched; only the version string must parse.
func ParseHeader(r io.ReaderAt, anchor uint64) (Header, error) {
	var hdr Header

	magic, err := readN(r, anchor+offMagic, 4)
	if err != nil {
		return Header{}, err
	}
	copy(hdr.Magic[:], magic)

	rawVersion, err := readN(r, anchor+offVersion, 4)
	if err != nil {
		return Header{}, err
	}
	version, err := parseVersion(rawVersion)
	if err != nil {
		return Header{}, err
	}
	hdr.Version = version

	hdr.EntryCount, err = readU32(r, anchor+offEntryCount)
	if err != nil {
		return Header{}, err
	}

	lay := layouts[generationOf(version)]
	hdr.TrailingSize, err = readU32(r, anchor+lay.trailingSizeOff)
	if err != nil {
		return Header{}, err
	}
	hdr.FirstEntry = anchor + lay.fixedSize + uint64(hdr.TrailingSize)

	return hdr, nil
}

// parseVersion decodes the NUL-padded ASCII decimal version field.
func parseVersion(raw []byte) (uint32, error) {
	s := strings.TrimRight(string(raw), "\x00")
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}
	return uint32(v), nil
}

// MagicString renders the magic bytes for diagnostics.
func (h Header) MagicString() string {
	return strconv.Quote(string(h.Magic[:]))
}
