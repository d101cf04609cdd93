package oatstore

import (
	"context"
	"fmt"

	"github.com/samcharles93/oatdex/internal/elfmeta"
	"github.com/samcharles93/oatdex/internal/logger"
	"github.com/samcharles93/oatdex/pkg/oat"
)

// File is an opened OAT container with its anchor resolved and its fixed
// header parsed. It is the shared entry point for the extract, inspect and
// serve surfaces.
type File struct {
	file   *oat.File
	Anchor uint64
	Header oat.Header
}

// Open opens path, resolves the oatdata anchor through the ELF wrapper and
// parses the fixed OAT header.
func Open(ctx context.Context, path string) (*File, error) {
	log := logger.FromContext(ctx)

	f, err := oat.Open(path)
	if err != nil {
		return nil, err
	}

	cleanup := func(err error) (*File, error) {
		_ = f.Close()
		return nil, err
	}

	provider, err := elfmeta.NewELFProvider(f)
	if err != nil {
		return cleanup(err)
	}
	anchor, err := elfmeta.AnchorOffset(provider, elfmeta.OATDataSymbol)
	if err != nil {
		return cleanup(err)
	}
	log.Debug("resolved oatdata anchor", "path", path, "offset", fmt.Sprintf("0x%x", anchor))

	hdr, err := oat.ParseHeader(f, anchor)
	if err != nil {
		return cleanup(err)
	}
	log.Debug("parsed OAT header",
		"magic", hdr.MagicString(),
		"version", hdr.Version,
		"dex_count", hdr.EntryCount,
		"key_value_size", hdr.TrailingSize,
		"first_record", fmt.Sprintf("0x%x", hdr.FirstEntry),
	)

	return &File{file: f, Anchor: anchor, Header: hdr}, nil
}

// Walker builds a record walker over the container.
func (f *File) Walker(opts oat.Options) *oat.Walker {
	return oat.NewWalker(f.file, f.Anchor, f.Header, opts)
}

// Entries lists every embedded dex without extracting.
func (f *File) Entries(ctx context.Context, opts oat.Options) ([]oat.Entry, error) {
	log := logger.FromContext(ctx)
	entries := make([]oat.Entry, 0, f.Header.EntryCount)
	err := f.Walker(opts).Walk(ctx, func(e oat.Entry) error {
		log.Debug("decoded dex record",
			"index", e.Index,
			"location", e.Location,
			"checksum", fmt.Sprintf("0x%08x", e.Checksum),
			"offset", fmt.Sprintf("0x%x", e.PayloadOffset),
			"size", e.PayloadSize,
			"class_defs", e.ClassDefs,
		)
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Extract carves every embedded dex per eopts.
func (f *File) Extract(ctx context.Context, wopts oat.Options, eopts oat.ExtractOptions) ([]oat.Artifact, error) {
	log := logger.FromContext(ctx)
	artifacts, err := f.Walker(wopts).Extract(ctx, eopts)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		log.Debug("carved dex", "path", a.Path, "location", a.Location, "bytes", a.Size)
	}
	return artifacts, nil
}

func (f *File) Close() error {
	if f == nil || f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
