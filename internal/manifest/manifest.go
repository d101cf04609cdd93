// Package manifest records what one extraction run produced.
package manifest

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/samcharles93/oatdex/pkg/oat"
)

// Manifest describes one extraction run.
type Manifest struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	OATVersion uint32    `json:"oat_version"`
	EntryCount uint32    `json:"entry_count"`
	Outputs    []Output  `json:"outputs"`
}

// Output describes one carved file.
type Output struct {
	Path     string `json:"path"`
	Location string `json:"location"`
	Size     uint32 `json:"size"`
	Checksum string `json:"checksum"`
}

// New builds a manifest for a completed run.
func New(source string, hdr oat.Header, artifacts []oat.Artifact) Manifest {
	outputs := make([]Output, 0, len(artifacts))
	for _, a := range artifacts {
		outputs = append(outputs, Output{
			Path:     a.Path,
			Location: a.Location,
			Size:     a.Size,
			Checksum: fmt.Sprintf("0x%08x", a.Checksum),
		})
	}
	return Manifest{
		RunID:      "run_" + uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Source:     source,
		OATVersion: hdr.Version,
		EntryCount: hdr.EntryCount,
		Outputs:    outputs,
	}
}

// WriteFile writes the manifest as indented JSON.
func (m Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
