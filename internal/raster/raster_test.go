package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, solid(30, 20, color.NRGBA{R: 200, A: 255}))

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("Expected 30x20, got %v", img.Bounds())
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not an image")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); err == nil {
				t.Error("Expected decode error")
			}
		})
	}
}

func TestRoundTripPreservesDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	data := encodePNG(t, solid(123, 45, color.NRGBA{G: 90, A: 255}))

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if err := Save(img, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	saved, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen saved image: %v", err)
	}
	if saved.Bounds().Dx() != 123 || saved.Bounds().Dy() != 45 {
		t.Errorf("Expected 123x45, got %v", saved.Bounds())
	}
}

func TestToRGBDropsAlpha(t *testing.T) {
	img := ToRGB(solid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 0}))

	got := img.NRGBAAt(2, 2)
	want := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 400, 200, 100, 50},
		{"portrait", 50, 500, 10, 100},
		{"square", 300, 300, 100, 100},
		{"already small", 60, 40, 60, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb := Thumbnail(solid(tt.w, tt.h, color.White), 100)
			if thumb.Bounds().Dx() != tt.wantW || thumb.Bounds().Dy() != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, thumb.Bounds().Dx(), thumb.Bounds().Dy())
			}
		})
	}
}

func TestComposite(t *testing.T) {
	base := solid(8, 8, color.NRGBA{R: 255, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				mask.SetGray(x, y, color.Gray{Y: 0})
			} else {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	out := Composite(base, mask)

	if a := out.NRGBAAt(1, 1).A; a != 0 {
		t.Errorf("Expected transparent pixel, got alpha %d", a)
	}
	if a := out.NRGBAAt(6, 1).A; a != 255 {
		t.Errorf("Expected opaque pixel, got alpha %d", a)
	}
	if r := out.NRGBAAt(6, 1).R; r != 255 {
		t.Errorf("Expected base color kept, got red %d", r)
	}
}

func TestCompositeScalesMask(t *testing.T) {
	base := solid(10, 6, color.NRGBA{B: 255, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 5, 3))
	for i := range mask.Pix {
		mask.Pix[i] = 128
	}

	out := Composite(base, mask)

	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 6 {
		t.Fatalf("Expected 10x6, got %v", out.Bounds())
	}
	if a := out.NRGBAAt(9, 5).A; a != 128 {
		t.Errorf("Expected alpha 128, got %d", a)
	}
}
