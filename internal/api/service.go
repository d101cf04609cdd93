package api

import (
	"context"
	"fmt"

	"github.com/samcharles93/oatdex/internal/logger"
	"github.com/samcharles93/oatdex/internal/oatstore"
	"github.com/samcharles93/oatdex/pkg/oat"
)

// Inspector decodes container metadata for the HTTP surface.
type Inspector interface {
	Inspect(ctx context.Context, path string, samsung bool) (InspectResponse, error)
}

// StoreInspector is the oatstore-backed Inspector. A non-nil log overrides
// whatever logger the incoming context carries; the HTTP surface uses this
// because request contexts do not descend from the CLI context.
type StoreInspector struct {
	log logger.Logger
}

func NewStoreInspector(log logger.Logger) StoreInspector {
	return StoreInspector{log: log}
}

func (s StoreInspector) Inspect(ctx context.Context, path string, samsung bool) (InspectResponse, error) {
	if s.log != nil {
		ctx = logger.WithContext(ctx, s.log)
	}
	f, err := oatstore.Open(ctx, path)
	if err != nil {
		return InspectResponse{}, err
	}
	defer func() { _ = f.Close() }()

	entries, err := f.Entries(ctx, oat.Options{Samsung: samsung})
	if err != nil {
		return InspectResponse{}, err
	}

	resp := InspectResponse{
		Path:       path,
		Magic:      f.Header.MagicString(),
		Version:    f.Header.Version,
		EntryCount: f.Header.EntryCount,
		Anchor:     f.Anchor,
		Entries:    make([]EntryInfo, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, EntryInfo{
			Index:         e.Index,
			Location:      e.Location,
			Checksum:      fmt.Sprintf("0x%08x", e.Checksum),
			PayloadOffset: e.PayloadOffset,
			PayloadSize:   e.PayloadSize,
			ClassDefs:     e.ClassDefs,
		})
	}
	return resp, nil
}
