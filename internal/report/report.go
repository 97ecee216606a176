// Package report turns analysis results into tables and charts and writes them out.
package report

import (
	"math"
	"strconv"
	"strings"
)

// Table is a header plus string rows, ready to be written as CSV.
type Table struct {
	Header []string
	Rows   [][]string
}

// Chart is a chart description. Rendering is left to the Reporter.
type Chart interface {
	ChartTitle() string
}

// Reporter persists tables and charts under fixed file names.
type Reporter interface {
	WriteTable(name string, t Table) error
	RenderChart(name string, c Chart) error
}

// BarSeries is one named set of bar heights, aligned with the chart groups.
type BarSeries struct {
	Name   string
	Values []float64
}

// BarChart draws one bar per label.
type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
}

// ChartTitle implements Chart.
func (c BarChart) ChartTitle() string { return c.Title }

// GroupedBarChart draws one bar per series inside each group.
type GroupedBarChart struct {
	Title  string
	XLabel string
	YLabel string
	Groups []string
	Series []BarSeries
}

// ChartTitle implements Chart.
func (c GroupedBarChart) ChartTitle() string { return c.Title }

// LineSeries is one named line, aligned with LineChart.X.
type LineSeries struct {
	Name   string
	Values []float64
}

// LineChart draws series over shared integer x positions.
type LineChart struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Series []LineSeries
}

// ChartTitle implements Chart.
func (c LineChart) ChartTitle() string { return c.Title }

// ScatterChart draws unconnected points.
type ScatterChart struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// ChartTitle implements Chart.
func (c ScatterChart) ChartTitle() string { return c.Title }

// FormatFloat renders a float the way the analysis CSVs expect: shortest
// round-trip digits, always with a decimal point, and NaN as an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
