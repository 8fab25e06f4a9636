// Package canvas provides the fixed-size drawing surface that strokes are
// rasterized onto and snapshots are exported from.
package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/nfnt/resize"
)

const (
	// Size is the width and height of the bitmap in pixels.
	Size = 280
	// StrokeWidth is the pen width in pixels.
	StrokeWidth = 20
)

// Point is a position in canvas-local coordinates.
type Point struct {
	X float64
	Y float64
}

// Surface owns a Size x Size bitmap with a black background and white strokes.
type Surface struct {
	dc     *gg.Context
	pen    Point
	active bool
}

// New creates a surface that is already painted black.
func New() *Surface {
	s := &Surface{dc: gg.NewContext(Size, Size)}
	s.Initialize()
	return s
}

// Initialize paints the whole bitmap black and resets the pen style.
func (s *Surface) Initialize() {
	s.dc.ClearPath()
	s.dc.ClearWithColor(gg.Black)
	s.dc.SetRGB(1, 1, 1)
	s.dc.SetLineWidth(StrokeWidth)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
}

// Clear discards every stroke.
func (s *Surface) Clear() {
	s.Initialize()
}

// BeginStroke records p as the pen position. Nothing is painted.
func (s *Surface) BeginStroke(p Point) {
	s.pen = p
	s.active = true
}

// ExtendStroke paints a segment from the pen position to p and moves the pen.
// It is a no-op when no stroke is active.
func (s *Surface) ExtendStroke(p Point) error {
	if !s.active {
		return nil
	}
	s.dc.MoveTo(s.pen.X, s.pen.Y)
	s.dc.LineTo(p.X, p.Y)
	s.pen = p
	if err := s.dc.Stroke(); err != nil {
		return fmt.Errorf("failed to stroke segment: %w", err)
	}
	return nil
}

// EndStroke deactivates the current stroke.
func (s *Surface) EndStroke() {
	s.active = false
}

// Active reports whether a stroke is in progress.
func (s *Surface) Active() bool {
	return s.active
}

// Image returns a copy of the bitmap.
func (s *Surface) Image() *image.RGBA {
	src := s.dc.Image()
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

// Snapshot encodes the bitmap as PNG.
func (s *Surface) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportSnapshot returns the PNG snapshot as standard base64 without a
// data-URL prefix.
func (s *Surface) ExportSnapshot() (string, error) {
	data, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// LoadImage paints img over the whole bitmap, resized to Size x Size.
func (s *Surface) LoadImage(img image.Image) {
	s.Initialize()
	b := img.Bounds()
	if b.Dx() != Size || b.Dy() != Size {
		img = resize.Resize(Size, Size, img, resize.Lanczos3)
	}
	s.dc.DrawImage(gg.ImageBufFromImage(img), 0, 0)
}
