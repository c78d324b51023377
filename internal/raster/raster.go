// Package raster wraps the image operations used by the extraction pipeline.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes encoded image bytes (JPEG, PNG, GIF, TIFF, BMP or WebP)
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode image: empty payload")
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ToRGB converts img to an opaque NRGBA image. Color values are kept and the
// alpha channel is dropped rather than blended.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// Thumbnail converts img to RGB and shrinks it to fit within max x max,
// keeping the aspect ratio. Images that already fit are not enlarged.
func Thumbnail(img image.Image, max int) *image.NRGBA {
	rgb := ToRGB(img)
	return imaging.Fit(rgb, max, max, imaging.Box)
}

// Composite returns base with mask applied as its alpha channel.
// A mask with different dimensions is scaled to the base size first.
func Composite(base, mask image.Image) *image.NRGBA {
	dst := imaging.Clone(base)
	b := dst.Bounds()

	if mask.Bounds().Dx() != b.Dx() || mask.Bounds().Dy() != b.Dy() {
		mask = imaging.Resize(mask, b.Dx(), b.Dy(), imaging.Box)
	}
	mb := mask.Bounds()

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(mask.At(mb.Min.X+x, mb.Min.Y+y)).(color.Gray)
			dst.Pix[y*dst.Stride+x*4+3] = g.Y
		}
	}

	return dst
}

// Save writes img to path, choosing the format from the file extension
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
