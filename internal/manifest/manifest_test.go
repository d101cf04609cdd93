package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/oatdex/pkg/oat"
)

func TestNewAndWriteFile(t *testing.T) {
	t.Parallel()

	hdr := oat.Header{Version: 64, EntryCount: 2}
	artifacts := []oat.Artifact{
		{Path: "out/core.odex", Location: "framework/core.jar", Size: 128, Checksum: 0xAB},
		{Path: "out/ext.odex", Location: "framework/ext.jar", Size: 256, Checksum: 0xCD},
	}

	m := New("/system/framework/boot.oat", hdr, artifacts)
	if !strings.HasPrefix(m.RunID, "run_") {
		t.Fatalf("run id missing prefix: %q", m.RunID)
	}
	if m.OATVersion != 64 || m.EntryCount != 2 {
		t.Fatalf("header fields not carried: %+v", m)
	}
	if len(m.Outputs) != 2 {
		t.Fatalf("outputs: got %d, want 2", len(m.Outputs))
	}
	if m.Outputs[0].Checksum != "0x000000ab" {
		t.Fatalf("checksum formatting: got %q", m.Outputs[0].Checksum)
	}

	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var back Manifest
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if back.RunID != m.RunID || back.Source != m.Source || len(back.Outputs) != 2 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
