// Package contactsheet arranges thumbnails into a labeled grid image.
package contactsheet

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Columns      = 10
	CellSize     = 100
	LabelPadding = 20
	// label top edge, relative to the cell origin
	LabelOffset = CellSize + 5
)

// ErrEmptyInput is returned when there is nothing to lay out
var ErrEmptyInput = errors.New("no images to create thumbnail sheet")

// Thumbnail is a decoded image no larger than CellSize in either dimension
type Thumbnail struct {
	Image   image.Image
	SizeKiB float64
}

// SortBySize orders thumbnails by descending size. Equal sizes keep their
// original order.
func SortBySize(thumbs []Thumbnail) {
	sort.SliceStable(thumbs, func(i, j int) bool {
		return thumbs[i].SizeKiB > thumbs[j].SizeKiB
	})
}

// Cell returns the top-left pixel of the cell holding the thumbnail at index
func Cell(index int) image.Point {
	row := index / Columns
	col := index % Columns
	return image.Point{X: col * CellSize, Y: row * (CellSize + LabelPadding)}
}

// Size returns the sheet dimensions for count thumbnails
func Size(count int) (width, height int) {
	if count <= 0 {
		return 0, 0
	}
	rows := (count + Columns - 1) / Columns
	return CellSize * min(count, Columns), (CellSize + LabelPadding) * rows
}

// Label formats a size for display under its thumbnail
func Label(sizeKiB float64) string {
	return fmt.Sprintf("%.2f KB", sizeKiB)
}

// Layout pastes thumbnails, already sorted, onto a black sheet and writes
// each size label in white beneath its cell.
func Layout(thumbs []Thumbnail) (*image.NRGBA, error) {
	if len(thumbs) == 0 {
		return nil, ErrEmptyInput
	}

	w, h := Size(len(thumbs))
	sheet := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  sheet,
		Src:  image.White,
		Face: face,
	}

	for i, th := range thumbs {
		origin := Cell(i)
		src := th.Image.Bounds()
		cell := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(CellSize, CellSize))}
		dst := image.Rectangle{Min: origin, Max: origin.Add(src.Size())}.Intersect(cell)
		draw.Draw(sheet, dst, th.Image, src.Min, draw.Src)

		d.Dot = fixed.P(origin.X, origin.Y+LabelOffset+ascent)
		d.DrawString(Label(th.SizeKiB))
	}

	return sheet, nil
}
