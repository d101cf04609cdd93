package oat

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// fixtureEntry is one embedded dex in a synthetic container.
type fixtureEntry struct {
	location  string
	checksum  uint32
	size      uint32 // payload size written at payload+32; 0 means len(payload)
	classDefs uint32
}

// containerFixture composes a synthetic oatdata region surrounded by
// padding, the way it would sit inside an ELF shell.
type containerFixture struct {
	version  string // ASCII decimal, e.g. "064"
	anchor   uint64
	trailing []byte // key/value store bytes
	samsung  bool   // emit the extra per-record uint32
	entries  []fixtureEntry
}

const fixturePayloadLen = 128 // enough to cover the class_defs field at +96

func makePayload(size, classDefs uint32, fill byte) []byte {
	p := make([]byte, fixturePayloadLen)
	for i := range p {
		p[i] = fill
	}
	binary.LittleEndian.PutUint32(p[payloadSizeOff:], size)
	binary.LittleEndian.PutUint32(p[payloadClassDefOff:], classDefs)
	return p
}

// build lays out header, record stream and payloads and returns the whole
// container image.
func (c containerFixture) build(t *testing.T) []byte {
	t.Helper()
	if len(c.version) != 3 {
		t.Fatalf("fixture version must be 3 ascii digits, got %q", c.version)
	}

	gen := genPost64
	if c.version < "064" {
		gen = genPre64
	}
	lay := layouts[gen]

	// Record stream size is knowable up front, which pins down where each
	// payload lands.
	recordsLen := 0
	for _, e := range c.entries {
		recordsLen += 4 + len(e.location) + 4 + 4
		if c.samsung {
			recordsLen += 4
		}
		recordsLen += int(e.classDefs) * 4
	}

	firstEntry := c.anchor + lay.fixedSize + uint64(len(c.trailing))
	payloadStart := firstEntry + uint64(recordsLen)

	total := payloadStart + uint64(len(c.entries))*fixturePayloadLen
	img := make([]byte, total)

	// Fixed header.
	copy(img[c.anchor:], "oat\n")
	copy(img[c.anchor+offVersion:], c.version+"\x00")
	binary.LittleEndian.PutUint32(img[c.anchor+offEntryCount:], uint32(len(c.entries)))
	binary.LittleEndian.PutUint32(img[c.anchor+lay.trailingSizeOff:], uint32(len(c.trailing)))
	copy(img[c.anchor+lay.fixedSize:], c.trailing)

	// Record stream plus payload area.
	var rec bytes.Buffer
	payloadOff := payloadStart
	for i, e := range c.entries {
		size := e.size
		if size == 0 {
			size = fixturePayloadLen
		}
		var u32 [4]byte
		binary.LittleEndian.PutUint32(u32[:], uint32(len(e.location)))
		rec.Write(u32[:])
		rec.WriteString(e.location)
		binary.LittleEndian.PutUint32(u32[:], e.checksum)
		rec.Write(u32[:])
		binary.LittleEndian.PutUint32(u32[:], uint32(payloadOff-c.anchor))
		rec.Write(u32[:])
		if c.samsung {
			rec.Write([]byte{0, 0, 0, 0})
		}
		rec.Write(make([]byte, int(e.classDefs)*4))

		copy(img[payloadOff:], makePayload(size, e.classDefs, byte('A'+i)))
		payloadOff += fixturePayloadLen
	}
	copy(img[firstEntry:], rec.Bytes())

	return img
}

// open parses the fixture and returns a ready walker.
func (c containerFixture) open(t *testing.T, img []byte) (*Walker, Header) {
	t.Helper()
	f := NewFileReaderAt(bytes.NewReader(img), int64(len(img)))
	hdr, err := ParseHeader(f, c.anchor)
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	return NewWalker(f, c.anchor, hdr, Options{Samsung: c.samsung}), hdr
}
