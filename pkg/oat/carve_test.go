package oat

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCarveRejectsInvalidPayloadSize(t *testing.T) {
	t.Parallel()

	t.Run("zero size", func(t *testing.T) {
		t.Parallel()
		fx := containerFixture{
			version: "064",
			anchor:  0x100,
			entries: []fixtureEntry{{location: "core.jar", size: 1}},
		}
		img := fx.build(t)
		// Overwrite the size field the fixture wrote with zero.
		w, _ := fx.open(t, img)
		entries, err := w.Entries(context.Background())
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
		binary.LittleEndian.PutUint32(img[entries[0].PayloadOffset+payloadSizeOff:], 0)

		w2, _ := fx.open(t, img)
		_, err = w2.Extract(context.Background(), ExtractOptions{OutDir: t.TempDir()})
		if !errors.Is(err, ErrInvalidPayloadSize) {
			t.Fatalf("expected ErrInvalidPayloadSize, got %v", err)
		}
	})

	t.Run("size past end of container", func(t *testing.T) {
		t.Parallel()
		fx := containerFixture{
			version: "064",
			anchor:  0x100,
			entries: []fixtureEntry{{location: "core.jar", size: 1 << 30}},
		}
		w, _ := fx.open(t, fx.build(t))
		_, err := w.Extract(context.Background(), ExtractOptions{OutDir: t.TempDir()})
		if !errors.Is(err, ErrInvalidPayloadSize) {
			t.Fatalf("expected ErrInvalidPayloadSize, got %v", err)
		}
	})
}

func TestCarveCreatesNestedDirectories(t *testing.T) {
	t.Parallel()

	fx := containerFixture{
		version: "064",
		anchor:  0x100,
		entries: []fixtureEntry{{location: "app/classes.jar:classes2.dex"}},
	}
	w, _ := fx.open(t, fx.build(t))

	outDir := t.TempDir()
	artifacts, err := w.Extract(context.Background(), ExtractOptions{OutDir: outDir})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := filepath.Join(outDir, "app", "classes2.odex")
	if artifacts[0].Path != want {
		t.Fatalf("artifact path: got %q, want %q", artifacts[0].Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("stat nested output: %v", err)
	}
}

func TestCopyChunkedShortSource(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	err := copyChunked(&dst, strings.NewReader("only ten b"), 4096)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestCopyChunkedExact(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0x5A}, 3000) // spans three chunks
	var dst bytes.Buffer
	if err := copyChunked(&dst, bytes.NewReader(payload), int64(len(payload))); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if !bytes.Equal(dst.Bytes(), payload) {
		t.Fatalf("copied bytes differ: got %d bytes", dst.Len())
	}
}
