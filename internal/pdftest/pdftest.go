// Package pdftest builds small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Build writes a PDF with one page per image into dir and returns its path.
// Images are imported as PNG, so an image with transparency gets a soft mask.
func Build(t testing.TB, dir, name string, imgs ...image.Image) string {
	t.Helper()

	readers := make([]io.Reader, 0, len(imgs))
	for _, img := range imgs {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("Failed to encode fixture image: %v", err)
		}
		readers = append(readers, &buf)
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, nil, nil); err != nil {
		t.Fatalf("Failed to build fixture PDF: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write fixture PDF: %v", err)
	}
	return path
}

// Corrupt overwrites the start of an object's stream data in place, so the
// file still parses but the stream no longer decodes.
func Corrupt(t testing.TB, path string, objNr int) {
	t.Helper()

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture PDF: %v", err)
	}
	entry, ok := ctx.Table[objNr]
	if !ok || entry == nil || entry.Offset == nil || entry.Compressed {
		t.Fatalf("Object %d has no file offset", objNr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture PDF: %v", err)
	}

	off := int(*entry.Offset)
	i := bytes.Index(data[off:], []byte("stream"))
	if i < 0 {
		t.Fatalf("Object %d has no stream", objNr)
	}
	start := off + i + len("stream")
	if start < len(data) && data[start] == '\r' {
		start++
	}
	if start < len(data) && data[start] == '\n' {
		start++
	}
	if start+4 > len(data) {
		t.Fatalf("Object %d stream is too short", objNr)
	}
	copy(data[start:start+4], []byte{0, 0, 0, 0})

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture PDF: %v", err)
	}
}
