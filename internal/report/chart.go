package report

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth    = 1200
	chartHeight   = 700
	barAreaWidth  = 1000
	minBarWidth   = 4
	maxBarWidth   = 80
	manyBarGroups = 6
)

var seriesColors = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
}

var errNoData = errors.New("no finite values to plot")

func seriesColor(i int) drawing.Color {
	return seriesColors[i%len(seriesColors)]
}

// RenderPNG renders a chart description as a PNG image.
func RenderPNG(c Chart, w io.Writer) error {
	switch ch := c.(type) {
	case BarChart:
		return renderBars(w, ch.Title, ch.YLabel, barValues(ch))
	case GroupedBarChart:
		return renderBars(w, ch.Title, ch.YLabel, groupedBarValues(ch))
	case LineChart:
		return renderLines(w, ch)
	case ScatterChart:
		return renderScatter(w, ch)
	default:
		return fmt.Errorf("unsupported chart type %T", c)
	}
}

func barValues(c BarChart) []chart.Value {
	bars := make([]chart.Value, 0, len(c.Values))
	for i, v := range c.Values {
		label := ""
		if i < len(c.Labels) {
			label = c.Labels[i]
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: barHeight(v),
			Style: chart.Style{FillColor: seriesColor(0), StrokeColor: seriesColor(0)},
		})
	}
	return bars
}

// groupedBarValues interleaves the series inside each group. go-chart has no
// grouped bar type, so series are told apart by color and, for short charts,
// by label.
func groupedBarValues(c GroupedBarChart) []chart.Value {
	bars := make([]chart.Value, 0, len(c.Groups)*len(c.Series))
	for g, group := range c.Groups {
		for s, series := range c.Series {
			v := math.NaN()
			if g < len(series.Values) {
				v = series.Values[g]
			}
			label := ""
			switch {
			case len(c.Groups) <= manyBarGroups:
				label = group + " " + series.Name
			case s == 0:
				label = group
			}
			bars = append(bars, chart.Value{
				Label: label,
				Value: barHeight(v),
				Style: chart.Style{FillColor: seriesColor(s), StrokeColor: seriesColor(s)},
			})
		}
	}
	return bars
}

func barHeight(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func renderBars(w io.Writer, title, yLabel string, bars []chart.Value) error {
	if len(bars) == 0 {
		return errNoData
	}
	maxValue := 0.0
	for _, b := range bars {
		maxValue = math.Max(maxValue, b.Value)
	}
	if maxValue <= 0 {
		maxValue = 1
	}
	barWidth := barAreaWidth / (len(bars) * 2)
	barWidth = max(minBarWidth, min(maxBarWidth, barWidth))

	bc := chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  yLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

func renderLines(w io.Writer, c LineChart) error {
	var series []chart.Series
	var xs, ys []float64
	for i, s := range c.Series {
		sx, sy := finitePairs(c.X, s.Values)
		if len(sx) == 0 {
			continue
		}
		xs = append(xs, sx...)
		ys = append(ys, sy...)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: sx,
			YValues: sy,
			Style: chart.Style{
				StrokeColor: seriesColor(i),
				StrokeWidth: 2,
				DotColor:    seriesColor(i),
				DotWidth:    4,
			},
		})
	}
	if len(series) == 0 {
		return errNoData
	}
	ch := chart.Chart{
		Title:      c.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: c.XLabel, Range: &chart.ContinuousRange{Min: minOf(xs) - 0.5, Max: maxOf(xs) + 0.5}},
		YAxis:      chart.YAxis{Name: c.YLabel, Range: paddedRange(ys, 0.05)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func renderScatter(w io.Writer, c ScatterChart) error {
	xs, ys := finitePairs(c.X, c.Y)
	if len(xs) == 0 {
		return errNoData
	}
	ch := chart.Chart{
		Title:      c.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: c.XLabel, Range: &chart.ContinuousRange{Min: minOf(xs) - 0.5, Max: maxOf(xs) + 0.5}},
		YAxis:      chart.YAxis{Name: c.YLabel, Range: paddedRange(ys, 0.05)},
		Series: []chart.Series{chart.ContinuousSeries{
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    seriesColor(0),
			},
		}},
	}
	return ch.Render(chart.PNG, w)
}

// finitePairs drops positions where either coordinate is not finite.
func finitePairs(x, y []float64) ([]float64, []float64) {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// paddedRange spans the values with a relative margin. A single distinct
// value gets a fixed margin so the axis never collapses.
func paddedRange(values []float64, margin float64) *chart.ContinuousRange {
	lo, hi := minOf(values), maxOf(values)
	pad := (hi - lo) * margin
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*margin, 0.5)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}
