package elfmeta

import (
	"errors"
	"fmt"
)

// OATDataSymbol is the symbol marking the start of the oatdata region.
const OATDataSymbol = "oatdata"

var (
	ErrNoBaseSegment  = errors.New("no program header self-descriptor segment")
	ErrSymbolNotFound = errors.New("symbol not found")
)

// BaseDelta computes the constant load-address-to-file-offset delta from
// the program header self-descriptor segment.
func BaseDelta(p Provider) (uint64, error) {
	segs, err := p.Segments()
	if err != nil {
		return 0, err
	}
	for _, seg := range segs {
		if seg.Kind == SegmentHeaderTable {
			return seg.LoadAddr - seg.FileOffset, nil
		}
	}
	return 0, ErrNoBaseSegment
}

// SymbolAddress returns the load address of the first symbol exactly
// matching name.
func SymbolAddress(p Provider, name string) (uint64, error) {
	syms, err := p.Symbols()
	if err != nil {
		return 0, err
	}
	for _, sym := range syms {
		if sym.Name == name {
			return sym.LoadAddr, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrSymbolNotFound, name)
}

// AnchorOffset resolves the file offset of the region marked by symbol,
// typically OATDataSymbol.
func AnchorOffset(p Provider, symbol string) (uint64, error) {
	addr, err := SymbolAddress(p, symbol)
	if err != nil {
		return 0, err
	}
	delta, err := BaseDelta(p)
	if err != nil {
		return 0, err
	}
	return addr - delta, nil
}
