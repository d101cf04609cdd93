package oat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestParseHeaderVersionBoundary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		version     string
		trailingOff uint64
		fixedSize   uint64
	}{
		{name: "pre64", version: "063", trailingOff: 80, fixedSize: 84},
		{name: "post64", version: "064", trailingOff: 68, fixedSize: 72},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fx := containerFixture{
				version:  tc.version,
				anchor:   0x100,
				trailing: bytes.Repeat([]byte{0xAB}, 16),
				entries:  []fixtureEntry{{location: "core.jar", checksum: 1, classDefs: 2}},
			}
			img := fx.build(t)

			f := NewFileReaderAt(bytes.NewReader(img), int64(len(img)))
			hdr, err := ParseHeader(f, fx.anchor)
			if err != nil {
				t.Fatalf("parse header: %v", err)
			}
			if got, want := string(hdr.Magic[:]), "oat\n"; got != want {
				t.Fatalf("magic: got %q, want %q", got, want)
			}
			if hdr.EntryCount != 1 {
				t.Fatalf("entry count: got %d, want 1", hdr.EntryCount)
			}
			if hdr.TrailingSize != 16 {
				t.Fatalf("trailing size: got %d, want 16", hdr.TrailingSize)
			}
			if want := fx.anchor + tc.fixedSize + 16; hdr.FirstEntry != want {
				t.Fatalf("first entry offset: got 0x%x, want 0x%x", hdr.FirstEntry, want)
			}

			// The trailing size field must have been read from the
			// generation-specific position.
			if got := binary.LittleEndian.Uint32(img[fx.anchor+tc.trailingOff:]); got != 16 {
				t.Fatalf("fixture trailing field at +%d: got %d, want 16", tc.trailingOff, got)
			}
		})
	}
}

func TestParseHeaderMalformedVersion(t *testing.T) {
	t.Parallel()

	fx := containerFixture{version: "064", anchor: 0x40}
	img := fx.build(t)
	copy(img[fx.anchor+offVersion:], "abc\x00")

	f := NewFileReaderAt(bytes.NewReader(img), int64(len(img)))
	_, err := ParseHeader(f, fx.anchor)
	if !errors.Is(err, ErrMalformedVersion) {
		t.Fatalf("expected ErrMalformedVersion, got %v", err)
	}
}

func TestParseHeaderTruncated(t *testing.T) {
	t.Parallel()

	img := []byte("oat\n064\x00short")
	f := NewFileReaderAt(bytes.NewReader(img), int64(len(img)))
	_, err := ParseHeader(f, 0)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
