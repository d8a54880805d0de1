package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type cell struct {
	r  rune
	fg color.RGBA
	bg color.RGBA
}

// Cells is a terminal cell grid that maps a logical width×height surface
// onto cols×rows character cells. Font sizes are ignored; every label is a
// single text row.
type Cells struct {
	cols, rows    int
	width, height float64
	grid          [][]cell
}

// NewCells returns a cols×rows grid addressed in width×height logical units.
func NewCells(cols, rows int, width, height float64) *Cells {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c := &Cells{cols: cols, rows: rows, width: width, height: height}
	c.grid = make([][]cell, rows)
	for i := range c.grid {
		c.grid[i] = make([]cell, cols)
	}
	return c
}

func (c *Cells) Size() (float64, float64) { return c.width, c.height }

func (c *Cells) Clear(bg color.RGBA) {
	for y := range c.grid {
		for x := range c.grid[y] {
			c.grid[y][x] = cell{r: ' ', fg: bg, bg: bg}
		}
	}
}

func (c *Cells) FillRect(x, y, w, h float64, col color.RGBA) {
	x0, y0, x1, y1 := c.span(x, y, w, h)
	for row := y0; row <= y1; row++ {
		for cc := x0; cc <= x1; cc++ {
			c.grid[row][cc] = cell{r: ' ', fg: col, bg: col}
		}
	}
}

// StrokeRect draws a box outline; widths above 1 use the heavy box set.
func (c *Cells) StrokeRect(x, y, w, h float64, col color.RGBA, width float64) {
	x0, y0, x1, y1 := c.span(x, y, w, h)
	box := lipgloss.NormalBorder()
	if width > 1 {
		box = lipgloss.ThickBorder()
	}
	set := func(cc, row int, s string) {
		cur := c.grid[row][cc]
		c.grid[row][cc] = cell{r: []rune(s)[0], fg: col, bg: cur.bg}
	}
	for cc := x0 + 1; cc < x1; cc++ {
		set(cc, y0, box.Top)
		set(cc, y1, box.Bottom)
	}
	for row := y0 + 1; row < y1; row++ {
		set(x0, row, box.Left)
		set(x1, row, box.Right)
	}
	set(x0, y0, box.TopLeft)
	set(x1, y0, box.TopRight)
	set(x0, y1, box.BottomLeft)
	set(x1, y1, box.BottomRight)
}

func (c *Cells) Text(s string, cx, cy, _ float64, col color.RGBA) {
	row := c.row(cy)
	runes := []rune(s)
	w := runewidth.StringWidth(s)
	start := c.col(cx) - w/2
	pos := start
	for _, r := range runes {
		rw := runewidth.RuneWidth(r)
		if pos >= 0 && pos+rw <= c.cols {
			bg := c.grid[row][pos].bg
			c.grid[row][pos] = cell{r: r, fg: col, bg: bg}
			// Wide runes occupy the next cell too.
			for k := 1; k < rw; k++ {
				c.grid[row][pos+k] = cell{r: 0, fg: col, bg: bg}
			}
		}
		pos += rw
	}
}

// String renders the grid with lipgloss colors, one line per row.
func (c *Cells) String() string {
	var b strings.Builder
	for y, line := range c.grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle().
				Foreground(lipgloss.Color(HexString(cur.fg))).
				Background(lipgloss.Color(HexString(cur.bg)))
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for x, cl := range line {
			if x == 0 || cl.fg != cur.fg || cl.bg != cur.bg {
				flush()
				cur = cl
			}
			if cl.r != 0 {
				run.WriteRune(cl.r)
			}
		}
		flush()
	}
	return b.String()
}

// Plain returns the grid text without styling.
func (c *Cells) Plain() string {
	lines := make([]string, len(c.grid))
	for y, line := range c.grid {
		var b strings.Builder
		for _, cl := range line {
			if cl.r != 0 {
				b.WriteRune(cl.r)
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (c *Cells) col(x float64) int {
	return clampInt(int(math.Floor(x/c.width*float64(c.cols))), 0, c.cols-1)
}

func (c *Cells) row(y float64) int {
	return clampInt(int(math.Floor(y/c.height*float64(c.rows))), 0, c.rows-1)
}

func (c *Cells) span(x, y, w, h float64) (x0, y0, x1, y1 int) {
	x0, y0 = c.col(x), c.row(y)
	x1 = c.col(x + w - c.width/float64(c.cols)/2)
	y1 = c.row(y + h - c.height/float64(c.rows)/2)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
