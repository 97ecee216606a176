package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is one named line of a trend plot, one value per stimulus.
type Series struct {
	Name   string
	Values []float64
}

// LinePlot draws series over a shared seconds axis using braille cells,
// two dot columns and four dot rows per terminal cell. The x axis runs
// over consecutive stimulus numbers starting at FirstStimulus.
type LinePlot struct {
	Title         string
	FirstStimulus int
	Series        []Series
	Width         int
	Height        int
	// Color forces ANSI colours even when w is not a terminal.
	Color bool
}

const (
	defaultPlotHeight     = 10
	minPlotWidth          = 10
	axisLabelWidth        = 7
	axisSeparator         = " │ "
	fallbackTerminalWidth = 80
	ansiReset             = "\x1b[0m"
	dottedPeriod          = 3
)

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// Render writes the plot to w. Series without a single finite value are
// dropped; if none remain nothing is written.
func (p LinePlot) Render(w io.Writer) error {
	series := plottable(p.Series)
	if len(series) == 0 {
		return nil
	}
	width, height := p.Width, p.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	lo, hi := valueBounds(series)
	if hi-lo < 1e-9 {
		lo -= 0.5
		hi += 0.5
	}
	points := 0
	for _, s := range series {
		points = max(points, len(s.Values))
	}

	layers := make([]*brailleCanvas, len(series))
	for i, s := range series {
		c := newBrailleCanvas(width, height)
		// Alternate series are dotted so they stay apart without colour.
		keep := func(int) bool { return true }
		if i%2 == 1 {
			keep = func(x int) bool { return x%dottedPeriod == 0 }
		}
		havePrev := false
		var px, py int
		for j, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				havePrev = false
				continue
			}
			x := dotColumn(j, points, width*2)
			y := dotRow(v, lo, hi, height*4)
			if havePrev {
				c.line(px, py, x, y, keep)
			} else {
				c.set(x, y)
			}
			px, py, havePrev = x, y, true
		}
		layers[i] = c
	}

	color := p.Color || isTerminal(w)
	if os.Getenv("NO_COLOR") != "" {
		color = false
	}
	var b strings.Builder
	if p.Title != "" {
		b.WriteString(p.Title)
		b.WriteByte('\n')
	}
	labels := axisLabels(height, lo, hi)
	for y := 0; y < height; y++ {
		fmt.Fprintf(&b, "%*s%s", axisLabelWidth, labels[y], axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := uint8(0), -1
			for i, c := range layers {
				if m := c.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			r := rune(0x2800 + int(mask))
			if color && owner >= 0 {
				b.WriteString(seriesColors[owner%len(seriesColors)])
				b.WriteRune(r)
				b.WriteString(ansiReset)
			} else {
				b.WriteRune(r)
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(stimulusAxis(p.FirstStimulus, points, width))
	b.WriteByte('\n')
	b.WriteString(legend(series, color))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor returns the number of braille cells that fit next to the
// value axis within totalWidth columns.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-axisLabelWidth-utf8.RuneCountInString(axisSeparator), minPlotWidth)
}

func plottable(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		for _, v := range s.Values {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func valueBounds(series []Series) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

func dotColumn(i, points, dots int) int {
	if points <= 1 {
		return 0
	}
	return int(math.Round(float64(i) * float64(dots-1) / float64(points-1)))
}

func dotRow(v, lo, hi float64, dots int) int {
	row := int(math.Round((hi - v) / (hi - lo) * float64(dots-1)))
	return min(max(row, 0), dots-1)
}

func axisLabels(height int, lo, hi float64) []string {
	labels := make([]string, height)
	labels[0] = axisValue(hi)
	if height > 2 {
		labels[height/2] = axisValue((lo + hi) / 2)
	}
	if height > 1 {
		labels[height-1] = axisValue(lo)
	}
	return labels
}

func axisValue(v float64) string {
	label := strconv.FormatFloat(v, 'f', 2, 64)
	if len(label) > axisLabelWidth {
		label = strconv.FormatFloat(v, 'e', 1, 64)
	}
	return label
}

// stimulusAxis labels the first and last plotted stimulus under the plot.
func stimulusAxis(first, points, width int) string {
	indent := strings.Repeat(" ", axisLabelWidth+utf8.RuneCountInString(axisSeparator))
	left := strconv.Itoa(first)
	if points <= 1 {
		return indent + left
	}
	right := strconv.Itoa(first + points - 1)
	gap := max(width-len(left)-len(right), 1)
	return indent + left + strings.Repeat(" ", gap) + right
}

func legend(series []Series, color bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		style := "solid"
		if i%2 == 1 {
			style = "dotted"
		}
		label := fmt.Sprintf("⣿ %s (%s)", s.Name, style)
		if color {
			label = seriesColors[i%len(seriesColors)] + label + ansiReset
		}
		parts[i] = label
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTerminalWidth
	}
	return width
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type brailleCanvas struct {
	cells [][]uint8
}

func newBrailleCanvas(width, height int) *brailleCanvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &brailleCanvas{cells: cells}
}

// brailleBits maps a dot inside a cell, indexed [row][col], to its bit in
// the U+2800 block.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func (c *brailleCanvas) set(x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(c.cells) || cx >= len(c.cells[cy]) {
		return
	}
	c.cells[cy][cx] |= brailleBits[y%4][x%2]
}

// line draws a Bresenham segment, setting only dots whose column passes keep.
func (c *brailleCanvas) line(x0, y0, x1, y1 int, keep func(x int) bool) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errTerm := dx + dy
	for {
		if keep(x0) {
			c.set(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errTerm
		if e2 >= dy {
			errTerm += dy
			x0 += sx
		}
		if e2 <= dx {
			errTerm += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
