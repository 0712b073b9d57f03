package viz

import (
	"strings"
)

const brailleBlank = 0x2800

// Braille cell dot bits, indexed [row][column] within the 2x4 cell.
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille characters addressed in sub-pixels: a canvas
// of Width x Height characters holds (2*Width) x (4*Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// Plot sets the dot nearest to the normalized point (u, v), with u growing
// right and v growing up. Points outside [0, 1] are dropped.
func (c *Canvas) Plot(u, v float64) {
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return
	}
	w, h := c.Width*2-1, c.Height*4-1
	c.Set(int(u*float64(w)+0.5), h-int(v*float64(h)+0.5))
}

// Row counts the dots set in character row r.
func (c *Canvas) Row(r int) int {
	n := 0
	for _, ch := range c.Grid[r] {
		for bits := ch - brailleBlank; bits != 0; bits &= bits - 1 {
			n++
		}
	}
	return n
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
