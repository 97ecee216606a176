// Package stats contains reaction-time statistics and their text rendering.
package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/verte-zerg/rtlab/internal/model"
)

// FormatSeconds formats a value for display, rendering NaN as "n/a".
func FormatSeconds(v float64, precision int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// RenderDelaySummary prints the no-target delay statistics and bucket counts.
func RenderDelaySummary(w io.Writer, d model.DelayAnalysis) error {
	lines := []string{
		"=== Delay Statistics ===",
		fmt.Sprintf("Total valid no-target trials: %d", d.Count),
		fmt.Sprintf("Maximum delay: %s sec", FormatSeconds(d.Max, 6)),
		fmt.Sprintf("Mean delay:    %s sec", FormatSeconds(d.Mean, 6)),
		fmt.Sprintf("Std deviation: %s sec", FormatSeconds(d.StdDev, 6)),
		"",
		"=== Delay Range Summary ===",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, b := range d.Buckets {
		if _, err := fmt.Fprintf(w, "%s: %d trials\n", b.Label, b.Count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderInvalidDelays prints no-target rows answered before the window elapsed.
func RenderInvalidDelays(w io.Writer, invalid []model.InvalidDelay) error {
	if len(invalid) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Warning: found delays less than 0 (reaction time shorter than the no-target window)"); err != nil {
		return err
	}
	t := newTextTable("Participant", "Stimulus", "Reaction Time", "Excess Delay").alignRight(1, 2, 3)
	for _, inv := range invalid {
		t.add(inv.Participant, strconv.Itoa(inv.Stimulus), FormatSeconds(inv.ReactionTime, 6), FormatSeconds(inv.ExcessDelay, 6))
	}
	return t.write(w)
}

// RenderStimulusTable prints per-stimulus mean and median reaction times.
func RenderStimulusTable(w io.Writer, stimuli []model.StimulusSummary) error {
	if len(stimuli) == 0 {
		_, err := fmt.Fprintln(w, "No target-present trials found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Stimulus Reaction Time"); err != nil {
		return err
	}
	t := newTextTable("Stimulus", "N", "Mean (s)", "Median (s)").alignRight(0, 1, 2, 3)
	for _, s := range stimuli {
		t.add(strconv.Itoa(s.Stimulus), strconv.Itoa(s.N), FormatSeconds(s.Mean, 3), FormatSeconds(s.Median, 3))
	}
	return t.write(w)
}

// RenderRangeTable prints per-range mean and median reaction times.
func RenderRangeTable(w io.Writer, ranges []model.RangeSummary) error {
	if len(ranges) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Stimulus Ranges"); err != nil {
		return err
	}
	t := rangeTable()
	for _, r := range ranges {
		t.add(rangeRow(r)...)
	}
	return t.write(w)
}

// RenderComparisons prints each pairwise range comparison.
func RenderComparisons(w io.Writer, comparisons []model.Comparison) error {
	if len(comparisons) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Range Comparisons"); err != nil {
		return err
	}
	t := rangeTable()
	for _, c := range comparisons {
		t.gap()
		t.add(rangeRow(c.First)...)
		t.add(rangeRow(c.Second)...)
	}
	return t.write(w)
}

// RenderCorrelations prints one line per computed correlation.
func RenderCorrelations(w io.Writer, correlations []model.Correlation) error {
	for _, c := range correlations {
		if _, err := fmt.Fprintf(w, "Stimuli %d–%d Correlation: %s, p-value: %s (n=%d)\n",
			c.Range.Start, c.Range.End, FormatSeconds(c.R, 3), FormatSeconds(c.PValue, 3), c.N); err != nil {
			return err
		}
	}
	if len(correlations) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrends prints braille line plots of per-stimulus mean and median.
func RenderTrends(w io.Writer, trends []model.Trend) error {
	return RenderTrendsWithSize(w, trends, 0, defaultPlotHeight, false)
}

// RenderTrendsWithSize prints trend plots sized to a given total width.
func RenderTrendsWithSize(w io.Writer, trends []model.Trend, totalWidth, height int, useColor bool) error {
	for _, tr := range trends {
		if len(tr.Points) == 0 {
			continue
		}
		first, last := tr.Points[0].Stimulus, tr.Points[len(tr.Points)-1].Stimulus
		// Stimuli without data stay NaN and break the line.
		means := make([]float64, last-first+1)
		medians := make([]float64, last-first+1)
		for i := range means {
			means[i], medians[i] = math.NaN(), math.NaN()
		}
		for _, p := range tr.Points {
			means[p.Stimulus-first] = p.Mean
			medians[p.Stimulus-first] = p.Median
		}
		width := 0
		if totalWidth > 0 {
			width = PlotWidthFor(totalWidth)
		}
		plot := LinePlot{
			Title:         fmt.Sprintf("Trend %s (stimulus %d to %d)", tr.Range.Label, first, last),
			FirstStimulus: first,
			Series:        []Series{{Name: "Mean", Values: means}, {Name: "Median", Values: medians}},
			Width:         width,
			Height:        height,
			Color:         useColor,
		}
		if err := plot.Render(w); err != nil {
			return err
		}
	}
	return nil
}

// RenderResult prints the full textual report of a run.
func RenderResult(w io.Writer, res model.Result) error {
	if _, err := fmt.Fprintf(w, "Participants: %d  Trials: %d\n\n", res.Participants, len(res.Trials)); err != nil {
		return err
	}
	steps := []func() error{
		func() error { return RenderDelaySummary(w, res.Delays) },
		func() error { return RenderStimulusTable(w, res.Stimuli) },
		func() error { return RenderRangeTable(w, res.Ranges) },
		func() error { return RenderComparisons(w, res.Comparisons) },
		func() error { return RenderCorrelations(w, res.Correlations) },
		func() error { return RenderWarnings(w, res.Warnings) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// RenderWarnings prints skipped input files.
func RenderWarnings(w io.Writer, warnings []model.LoadWarning) error {
	if len(warnings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Skipped inputs"); err != nil {
		return err
	}
	t := newTextTable("Path", "Reason")
	for _, lw := range warnings {
		t.add(lw.Path, lw.Message)
	}
	return t.write(w)
}

func rangeTable() *textTable {
	return newTextTable("Range", "N", "Mean (s)", "Median (s)").alignRight(1, 2, 3)
}

func rangeRow(r model.RangeSummary) []string {
	return []string{
		r.Range.Label,
		strconv.Itoa(r.N),
		FormatSeconds(r.Mean, 3),
		FormatSeconds(r.Median, 3),
	}
}
