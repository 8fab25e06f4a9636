package tui

import (
	"image"

	"github.com/nfnt/resize"

	"github.com/verte-zerg/digitpad/internal/braille"
)

// Dots brighter than half intensity are lit.
const previewThreshold = 0x7fff

// renderPreview downsamples img onto a braille grid of cols x rows cells.
func renderPreview(img image.Image, cols, rows int) []string {
	grid := braille.NewGrid(cols, rows)
	if cols <= 0 || rows <= 0 {
		return grid.Lines()
	}
	small := resize.Resize(uint(grid.DotWidth()), uint(grid.DotHeight()), img, resize.Bilinear)
	b := small.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := small.At(x, y).RGBA()
			lum := (299*r + 587*g + 114*bl) / 1000
			if lum > previewThreshold {
				grid.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return grid.Lines()
}
