package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/digitpad/internal/canvas"
)

const (
	marginLeft = 2
	// Rows above the preview interior: title, blank, top border.
	previewTop = 3
	// Rows outside the preview interior and the help view: title, blank,
	// two borders, blank, buttons, blank, result, hint, footer, blank.
	chromeRows = 11

	minPreviewRows     = 7
	maxPreviewRows     = 35
	defaultPreviewRows = 14

	buttonWidth = 16
	buttonGap   = 2
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// layout places the preview and the buttons in screen cells.
type layout struct {
	preview    rect
	predictBtn rect
	clearBtn   rect
}

func computeLayout(width, height, helpRows int) layout {
	rows := defaultPreviewRows
	if height > 0 {
		rows = height - chromeRows - helpRows
	}
	if width > 0 {
		// Two border cells plus the left margin on both sides.
		if maxRows := (width - 2*marginLeft - 2) / 2; rows > maxRows {
			rows = maxRows
		}
	}
	rows = clamp(rows, minPreviewRows, maxPreviewRows)
	cols := rows * 2

	preview := rect{x: marginLeft + 1, y: previewTop, w: cols, h: rows}
	buttonRow := preview.y + rows + 2
	return layout{
		preview:    preview,
		predictBtn: rect{x: marginLeft, y: buttonRow, w: buttonWidth, h: 1},
		clearBtn:   rect{x: marginLeft + buttonWidth + buttonGap, y: buttonRow, w: buttonWidth, h: 1},
	}
}

// toCanvas maps a screen cell inside the preview to the center of the
// matching canvas region.
func (l layout) toCanvas(x, y int) canvas.Point {
	sx := float64(canvas.Size) / float64(l.preview.w)
	sy := float64(canvas.Size) / float64(l.preview.h)
	return canvas.Point{
		X: (float64(x-l.preview.x) + 0.5) * sx,
		Y: (float64(y-l.preview.y) + 0.5) * sy,
	}
}

// buttonLabel centers label in a fixed-width cell span.
func buttonLabel(label string) string {
	w := runewidth.StringWidth(label)
	if w >= buttonWidth {
		return runewidth.Truncate(label, buttonWidth, "")
	}
	left := (buttonWidth - w) / 2
	return runewidth.FillRight(strings.Repeat(" ", left)+label, buttonWidth)
}

func indent(s string) string {
	pad := strings.Repeat(" ", marginLeft)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
