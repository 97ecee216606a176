package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestLinePlotRender(t *testing.T) {
	var buf bytes.Buffer
	plot := LinePlot{
		Title:         "Stimuli 1-5",
		FirstStimulus: 1,
		Series: []Series{
			{Name: "Mean", Values: []float64{1, 2, 3, 2, 1}},
			{Name: "Median", Values: []float64{1, 1, 2, 3, 4}},
		},
		Width:  10,
		Height: 4,
	}
	if err := plot.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Stimuli 1-5", "4.00", "1.00", "Mean (solid)", "Median (dotted)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, four plot rows, stimulus axis, legend
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	axis := strings.Fields(lines[5])
	if len(axis) != 2 || axis[0] != "1" || axis[1] != "5" {
		t.Fatalf("unexpected stimulus axis %q", lines[5])
	}
}

func TestLinePlotSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	plot := LinePlot{Title: "Empty", Series: []Series{{Name: "Mean"}, {Name: "Median", Values: []float64{math.NaN()}}}, Width: 10, Height: 4}
	if err := plot.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output without finite values, got %q", buf.String())
	}
}

func TestLinePlotToleratesGaps(t *testing.T) {
	var buf bytes.Buffer
	plot := LinePlot{
		FirstStimulus: 11,
		Series:        []Series{{Name: "Mean", Values: []float64{1, math.NaN(), 3}}},
		Width:         10,
		Height:        3,
	}
	if err := plot.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "NaN") {
		t.Fatalf("expected NaN to be skipped in axis labels:\n%s", out)
	}
	if !strings.Contains(out, "11") || !strings.Contains(out, "13") {
		t.Fatalf("expected stimulus numbers on the axis:\n%s", out)
	}
}

func TestBrailleCanvasLine(t *testing.T) {
	c := newBrailleCanvas(2, 1)
	c.line(0, 0, 3, 3, func(int) bool { return true })
	// The diagonal touches one dot in each of the four dot rows.
	if got := c.cells[0][0]; got != 0x01|0x10 {
		t.Fatalf("left cell mask = %#x", got)
	}
	if got := c.cells[0][1]; got != 0x04|0x80 {
		t.Fatalf("right cell mask = %#x", got)
	}
}
