// Package braille renders dot bitmaps as Unicode braille cells, two dots wide
// and four dots tall per terminal cell.
package braille

import "strings"

// Grid is a dot bitmap backed by braille cell masks.
type Grid struct {
	cols  int
	rows  int
	cells [][]uint8
}

// NewGrid creates an empty grid of cols x rows terminal cells.
func NewGrid(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	cells := make([][]uint8, rows)
	for y := range cells {
		cells[y] = make([]uint8, cols)
	}
	return &Grid{cols: cols, rows: rows, cells: cells}
}

// Cols returns the width in terminal cells.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the height in terminal cells.
func (g *Grid) Rows() int { return g.rows }

// DotWidth returns the width in dots.
func (g *Grid) DotWidth() int { return g.cols * 2 }

// DotHeight returns the height in dots.
func (g *Grid) DotHeight() int { return g.rows * 4 }

// Set lights the dot at (x, y). Out-of-range dots are ignored.
func (g *Grid) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellX, cellY := x/2, y/4
	if cellY >= g.rows || cellX >= g.cols {
		return
	}
	g.cells[cellY][cellX] |= dotMask(x%2, y%4)
}

// Mask returns the dot mask of a cell.
func (g *Grid) Mask(col, row int) uint8 {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0
	}
	return g.cells[row][col]
}

// Line lights every dot on the segment between two dots.
func (g *Grid) Line(x0, y0, x1, y1 int) {
	Line(x0, y0, x1, y1, g.Set)
}

// Row renders one row of cells.
func (g *Grid) Row(row int) string {
	if row < 0 || row >= g.rows {
		return ""
	}
	var b strings.Builder
	for _, mask := range g.cells[row] {
		b.WriteRune(Rune(mask))
	}
	return b.String()
}

// Lines renders every row.
func (g *Grid) Lines() []string {
	out := make([]string, g.rows)
	for y := range out {
		out[y] = g.Row(y)
	}
	return out
}

// String renders the grid joined by newlines.
func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

// Rune returns the braille character for a dot mask.
func Rune(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// Line walks the segment between two dots with Bresenham's algorithm.
func Line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func dotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}
