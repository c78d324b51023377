package pipeline

import (
	"fmt"
	"image"

	"github.com/lehigh-university-libraries/pdfimages/internal/document"
	"github.com/lehigh-university-libraries/pdfimages/internal/raster"
)

// Compositor produces the final raster for a record, applying its soft mask
type Compositor struct {
	reader document.Reader
}

// NewCompositor creates a compositor resolving objects through r
func NewCompositor(r document.Reader) *Compositor {
	return &Compositor{reader: r}
}

// Compose decodes the record. When it carries a mask, base and mask are
// resolved separately and the mask becomes the alpha channel.
func (c *Compositor) Compose(rec document.ImageRecord) (image.Image, error) {
	if !rec.HasMask() {
		return raster.Decode(rec.Data)
	}

	baseData, err := c.reader.Resolve(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image %d: %w", rec.ID, err)
	}
	base, err := raster.Decode(baseData)
	if err != nil {
		return nil, fmt.Errorf("base image %d: %w", rec.ID, err)
	}

	maskData, err := c.reader.Resolve(rec.Mask)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mask %d: %w", rec.Mask, err)
	}
	mask, err := raster.Decode(maskData)
	if err != nil {
		return nil, fmt.Errorf("mask %d: %w", rec.Mask, err)
	}

	return raster.Composite(base, mask), nil
}
