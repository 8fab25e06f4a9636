package canvas

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankPix(t *testing.T) []byte {
	t.Helper()
	return New().Image().Pix
}

func luminance(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).R
}

func TestNewIsUniformBlack(t *testing.T) {
	img := New().Image()
	require.Equal(t, image.Rect(0, 0, Size, Size), img.Bounds())
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			c := img.RGBAAt(x, y)
			if c != (color.RGBA{A: 255}) {
				t.Fatalf("pixel (%d,%d) = %v, want opaque black", x, y, c)
			}
		}
	}
}

func TestExtendWithoutBeginIsNoop(t *testing.T) {
	s := New()
	require.NoError(t, s.ExtendStroke(Point{X: 10, Y: 10}))
	require.NoError(t, s.ExtendStroke(Point{X: 200, Y: 200}))
	assert.Equal(t, blankPix(t), s.Image().Pix)
	assert.False(t, s.Active())
}

func TestBeginAloneDrawsNothing(t *testing.T) {
	s := New()
	s.BeginStroke(Point{X: 140, Y: 140})
	assert.True(t, s.Active())
	assert.Equal(t, blankPix(t), s.Image().Pix)
}

func TestStrokePaintsWhiteWithRoundCaps(t *testing.T) {
	s := New()
	s.BeginStroke(Point{X: 100, Y: 140})
	require.NoError(t, s.ExtendStroke(Point{X: 180, Y: 140}))
	s.EndStroke()

	img := s.Image()
	assert.Equal(t, uint8(255), luminance(img, 140, 140))
	assert.Equal(t, uint8(255), luminance(img, 140, 140+StrokeWidth/2-3))
	assert.Equal(t, uint8(0), luminance(img, 140, 140+StrokeWidth/2+3))
	// Round cap extends past the end point by half the stroke width.
	assert.Greater(t, luminance(img, 180+StrokeWidth/2-4, 140), uint8(200))
	assert.Equal(t, uint8(0), luminance(img, 180+StrokeWidth/2+3, 140))
}

func TestStrokeChainsFromLastPoint(t *testing.T) {
	s := New()
	s.BeginStroke(Point{X: 40, Y: 40})
	require.NoError(t, s.ExtendStroke(Point{X: 40, Y: 240}))
	require.NoError(t, s.ExtendStroke(Point{X: 240, Y: 240}))

	img := s.Image()
	assert.Equal(t, uint8(255), luminance(img, 40, 140))
	assert.Equal(t, uint8(255), luminance(img, 140, 240))
	assert.Equal(t, uint8(0), luminance(img, 140, 140))
}

func TestEndStrokeStopsPainting(t *testing.T) {
	s := New()
	s.BeginStroke(Point{X: 20, Y: 20})
	require.NoError(t, s.ExtendStroke(Point{X: 60, Y: 20}))
	s.EndStroke()
	before := s.Image().Pix

	require.NoError(t, s.ExtendStroke(Point{X: 200, Y: 200}))
	assert.Equal(t, before, s.Image().Pix)
}

func TestOutOfBoundsPointsAreTolerated(t *testing.T) {
	s := New()
	s.BeginStroke(Point{X: -100, Y: -100})
	require.NoError(t, s.ExtendStroke(Point{X: 400, Y: 400}))
	assert.Equal(t, uint8(255), luminance(s.Image(), 140, 140))
}

func TestClearRestoresInitialState(t *testing.T) {
	s := New()
	s.BeginStroke(Point{X: 10, Y: 10})
	require.NoError(t, s.ExtendStroke(Point{X: 270, Y: 270}))
	s.EndStroke()
	require.NotEqual(t, blankPix(t), s.Image().Pix)

	s.Clear()
	assert.Equal(t, blankPix(t), s.Image().Pix)
	s.Clear()
	assert.Equal(t, blankPix(t), s.Image().Pix)

	s.BeginStroke(Point{X: 100, Y: 100})
	require.NoError(t, s.ExtendStroke(Point{X: 120, Y: 100}))
	assert.Equal(t, uint8(255), luminance(s.Image(), 110, 100))
}

func TestExportSnapshotOfBlankCanvas(t *testing.T) {
	a, err := New().ExportSnapshot()
	require.NoError(t, err)
	b, err := New().ExportSnapshot()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.False(t, strings.HasPrefix(a, "data:"))

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, Size, Size), img.Bounds())
	for _, p := range []image.Point{{0, 0}, {140, 140}, {Size - 1, Size - 1}} {
		r, g, bl, al := img.At(p.X, p.Y).RGBA()
		assert.Equal(t, []uint32{0, 0, 0, 0xffff}, []uint32{r, g, bl, al}, "pixel %v", p)
	}
}

func TestExportSnapshotHasNoSideEffects(t *testing.T) {
	s := New()
	s.BeginStroke(Point{X: 50, Y: 50})
	require.NoError(t, s.ExtendStroke(Point{X: 90, Y: 90}))
	before := s.Image().Pix

	first, err := s.ExportSnapshot()
	require.NoError(t, err)
	second, err := s.ExportSnapshot()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, before, s.Image().Pix)
	assert.True(t, s.Active())
}

func TestLoadImageScalesToCanvas(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 28, 28))
	for y := 0; y < 28; y++ {
		for x := 0; x < 28; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	s := New()
	s.LoadImage(src)
	img := s.Image()
	assert.Greater(t, luminance(img, 140, 140), uint8(250))
	assert.Greater(t, luminance(img, 10, 270), uint8(250))
}
