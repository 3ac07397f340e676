package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty); dot n is bit n-1.
const brailleBase = '\u2800'

// brailleDots maps [row][col] inside a cell to the dot's bit offset.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

const (
	dashRune = '╌'

	// MinWidth and MinHeight are the smallest sizes Render draws a plot in.
	MinWidth  = 24
	MinHeight = 6
)

// canvas is a braille dot grid. Each cell remembers the color of the last
// series that touched it.
type canvas struct {
	cols, rows int
	cells      [][]rune
	owner      [][]Color
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows}
	c.cells = make([][]rune, rows)
	c.owner = make([][]Color, rows)
	for r := range c.cells {
		c.cells[r] = make([]rune, cols)
		c.owner[r] = make([]Color, cols)
		for i := range c.cells[r] {
			c.cells[r][i] = brailleBase
		}
	}
	return c
}

// set lights the dot at (x, y) in dot coordinates, origin top-left.
func (c *canvas) set(x, y int, color Color) {
	col, row := x/2, y/4
	if x < 0 || y < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row][col] |= rune(1) << brailleDots[y%4][x%2]
	c.owner[row][col] = color
}

// line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1 int, color Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Render draws fig in a width x height block of terminal cells: a title
// row, the plot with y-axis labels, a time-axis row and a legend row.
// Bands shade whole rows; reference lines are dashed rows; series are
// braille dots with time-proportional x positions.
func Render(fig Figure, width, height int) string {
	if width < MinWidth || height < MinHeight {
		return tooSmall(width)
	}

	first, last, ok := fig.TimeRange()
	if !ok {
		return titleStyle.Render(truncate(fig.Title, width)) + "\n" + axisStyle.Render("No samples to plot")
	}

	lo, hi := fig.YExtent()
	plotRows := height - 3

	rowLabels := map[int]float64{0: hi, plotRows - 1: lo}
	dashed := make(map[int]Color)
	for _, l := range fig.HLines {
		if r, ok := rowOf(l.Y, lo, hi, plotRows); ok {
			rowLabels[r] = l.Y
			if l.Dashed {
				dashed[r] = l.Color
			}
		}
	}
	format := labelFormat(hi - lo)
	labelW := 0
	for _, v := range rowLabels {
		labelW = max(labelW, len(fmt.Sprintf(format, v)))
	}

	// Very wide labels can leave no room for the plot itself.
	plotCols := width - labelW - 1
	if plotCols < 1 {
		return tooSmall(width)
	}
	cv := newCanvas(plotCols, plotRows)
	dotsX, dotsY := plotCols*2, plotRows*4

	xOf := func(t time.Time) int {
		span := last.Sub(first)
		if span <= 0 {
			return dotsX / 2
		}
		return int(math.Round(float64(t.Sub(first)) / float64(span) * float64(dotsX-1)))
	}
	yOf := func(v float64) (int, bool) {
		if math.IsNaN(v) || hi <= lo {
			return 0, false
		}
		frac := (hi - v) / (hi - lo)
		if frac < 0 || frac > 1 {
			return 0, false
		}
		return int(math.Round(frac * float64(dotsY-1))), true
	}

	for _, s := range fig.Series {
		drawSeries(cv, s, xOf, yOf)
	}

	rowBand := make([]Color, plotRows)
	for r := range rowBand {
		v := hi - (float64(r)+0.5)/float64(plotRows)*(hi-lo)
		for _, b := range fig.Bands {
			if !b.Empty() && v >= b.Y0 && v <= b.Y1 {
				rowBand[r] = b.Color
			}
		}
	}

	var out []string
	out = append(out, titleStyle.Render(truncate(fig.Title, width)))

	for r := 0; r < plotRows; r++ {
		var line strings.Builder
		label := strings.Repeat(" ", labelW)
		if v, ok := rowLabels[r]; ok {
			label = fmt.Sprintf("%*s", labelW, fmt.Sprintf(format, v))
		}
		line.WriteString(labelStyle.Render(label))
		line.WriteString(axisStyle.Render("│"))

		for col := 0; col < plotCols; col++ {
			ch, fg := cv.cells[r][col], cv.owner[r][col]
			if ch == brailleBase {
				if c, ok := dashed[r]; ok {
					ch, fg = dashRune, c
				} else {
					ch = ' '
				}
			}
			line.WriteString(cellStyle(fg, rowBand[r]).Render(string(ch)))
		}
		out = append(out, line.String())
	}

	out = append(out, timeAxis(first, last, labelW, plotCols))
	out = append(out, legend(fig, width))
	return strings.Join(out, "\n")
}

func tooSmall(width int) string {
	return axisStyle.Render(truncate("(enlarge the window to see the chart)", width))
}

func drawSeries(cv *canvas, s Series, xOf func(time.Time) int, yOf func(float64) (int, bool)) {
	prevX, prevY, prevOK := 0, 0, false
	n := min(len(s.X), len(s.Y))
	for i := 0; i < n; i++ {
		x := xOf(s.X[i])
		y, ok := yOf(s.Y[i])
		if !ok {
			prevOK = false
			continue
		}
		if prevOK {
			cv.line(prevX, prevY, x, y, s.Color)
			if s.Width > 1 {
				cv.line(prevX, prevY+1, x, y+1, s.Color)
			}
		} else {
			cv.set(x, y, s.Color)
		}
		prevX, prevY, prevOK = x, y, true
	}
}

// rowOf maps a value to the plot row containing it.
func rowOf(v, lo, hi float64, rows int) (int, bool) {
	if hi <= lo || v < lo || v > hi {
		return 0, false
	}
	r := int((hi - v) / (hi - lo) * float64(rows))
	if r >= rows {
		r = rows - 1
	}
	return r, true
}

func labelFormat(span float64) string {
	switch {
	case span >= 100:
		return "%.0f"
	case span >= 1:
		return "%.1f"
	default:
		return "%.3f"
	}
}

func timeAxis(first, last time.Time, labelW, plotCols int) string {
	layout := "15:04:05"
	if last.Sub(first) >= 24*time.Hour {
		layout = "01-02 15:04"
	}
	left := first.Format(layout)
	right := last.Format(layout)

	gap := plotCols - len(left) - len(right)
	if gap < 1 || !last.After(first) {
		return axisStyle.Render(strings.Repeat(" ", labelW+1) + truncate(left, plotCols))
	}
	return axisStyle.Render(strings.Repeat(" ", labelW+1) + left + strings.Repeat(" ", gap) + right)
}

func legend(fig Figure, width int) string {
	var parts []string
	for _, s := range fig.Series {
		glyph := "━"
		if s.Mode == ModeLinesMarkers {
			glyph = "•"
		}
		parts = append(parts, cellStyle(s.Color, "").Render(glyph)+" "+s.Name)
	}
	if len(fig.HLines) > 0 {
		parts = append(parts, cellStyle(fig.HLines[0].Color, "").Render(string(dashRune))+" Bounds")
	}
	out := strings.Join(parts, "  ")
	if lipgloss.Width(out) > width {
		return truncate(fig.YLabel, width)
	}
	return out
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-1]) + "…"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
