// Package elfmeta resolves link-time addresses inside an OAT container's
// ELF wrapper to plain file offsets. The walker only ever sees the minimal
// Provider capability, so it stays independent of any particular object
// file reader.
package elfmeta

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
)

// SegmentKind classifies the segments the resolver cares about.
type SegmentKind int

const (
	SegmentOther SegmentKind = iota
	// SegmentHeaderTable is the virtual segment describing the program
	// header table itself (PHDR). Its vaddr/offset pair yields the base
	// delta for the whole binary.
	SegmentHeaderTable
)

// Segment is one loadable or virtual segment of the container.
type Segment struct {
	Kind       SegmentKind
	FileOffset uint64
	LoadAddr   uint64
}

// Symbol is one symbol table entry.
type Symbol struct {
	Name     string
	LoadAddr uint64
}

// Provider is the capability surface the resolver needs from an object
// file reader.
type Provider interface {
	Segments() ([]Segment, error)
	Symbols() ([]Symbol, error)
}

// ELFProvider adapts debug/elf to the Provider interface.
type ELFProvider struct {
	f *elf.File
}

// NewELFProvider parses the ELF structure of a container held in r.
func NewELFProvider(r io.ReaderAt) (*ELFProvider, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("parse ELF: %w", err)
	}
	return &ELFProvider{f: f}, nil
}

func (p *ELFProvider) Segments() ([]Segment, error) {
	segs := make([]Segment, 0, len(p.f.Progs))
	for _, prog := range p.f.Progs {
		kind := SegmentOther
		if prog.Type == elf.PT_PHDR {
			kind = SegmentHeaderTable
		}
		segs = append(segs, Segment{
			Kind:       kind,
			FileOffset: prog.Off,
			LoadAddr:   prog.Vaddr,
		})
	}
	return segs, nil
}

// Symbols returns the static and dynamic symbol tables combined; OAT
// binaries usually expose oatdata through .dynsym only.
func (p *ELFProvider) Symbols() ([]Symbol, error) {
	var out []Symbol
	static, err := p.f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("read symbols: %w", err)
	}
	dynamic, err := p.f.DynamicSymbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("read dynamic symbols: %w", err)
	}
	for _, sym := range static {
		out = append(out, Symbol{Name: sym.Name, LoadAddr: sym.Value})
	}
	for _, sym := range dynamic {
		out = append(out, Symbol{Name: sym.Name, LoadAddr: sym.Value})
	}
	return out, nil
}
