package report

import (
	"fmt"
	"strconv"

	"github.com/verte-zerg/rtlab/internal/model"
)

// Output file names.
const (
	StimulusStatsFile   = "stimulus_stats_individual.csv"
	RangeStatsFile      = "stimulus_stats_ranges.csv"
	DelayBucketsFile    = "delay_buckets.csv"
	ComparisonsFile     = "range_comparisons.csv"
	CorrelationsFile    = "correlations.csv"
	DelayChartFile      = "no_target_excess_delay_ranges.png"
	StimulusChartFile   = "stimulus_avg_median.png"
	RangeChartFile      = "reaction_time_by_range.png"
	reactionTimeCaption = "Reakcijas laiks (sekundēs)"
	stimulusCaption     = "Stimula numurs"
	meanCaption         = "Vidējais"
	medianCaption       = "Mediāna"
)

// TrendChartFile names the trend chart for r, e.g. trend_1_5.png.
func TrendChartFile(r model.StimulusRange) string {
	return "trend_" + r.Slug() + ".png"
}

// ComparisonChartFile names the comparison chart for a pair.
func ComparisonChartFile(p model.RangePair) string {
	return fmt.Sprintf("compare_%s_vs_%s.png", p.First.Slug(), p.Second.Slug())
}

// CorrelationChartFile names the scatterplot for r.
func CorrelationChartFile(r model.StimulusRange) string {
	return "distractor_vs_time_corr_" + r.Slug() + ".png"
}

// StimulusTable lists per-stimulus mean and median.
func StimulusTable(stimuli []model.StimulusSummary) Table {
	t := Table{Header: []string{"stimulus", "mean", "median"}}
	for _, s := range stimuli {
		t.Rows = append(t.Rows, []string{strconv.Itoa(s.Stimulus), FormatFloat(s.Mean), FormatFloat(s.Median)})
	}
	return t
}

// RangeTable lists per-range mean and median.
func RangeTable(ranges []model.RangeSummary) Table {
	t := Table{Header: []string{"Range", "Mean", "Median"}}
	for _, r := range ranges {
		t.Rows = append(t.Rows, []string{r.Range.Label, FormatFloat(r.Mean), FormatFloat(r.Median)})
	}
	return t
}

// DelayBucketTable lists every delay bucket with its count.
func DelayBucketTable(d model.DelayAnalysis) Table {
	t := Table{Header: []string{"Range", "Lower", "Upper", "Count"}}
	for _, b := range d.Buckets {
		t.Rows = append(t.Rows, []string{b.Label, FormatFloat(b.Lower), FormatFloat(b.Upper), strconv.Itoa(b.Count)})
	}
	return t
}

// ComparisonTable lists each compared pair as two consecutive rows.
func ComparisonTable(comparisons []model.Comparison) Table {
	t := Table{Header: []string{"Comparison", "Range", "Mean", "Median"}}
	for _, c := range comparisons {
		name := c.First.Range.Label + " vs " + c.Second.Range.Label
		for _, r := range []model.RangeSummary{c.First, c.Second} {
			t.Rows = append(t.Rows, []string{name, r.Range.Label, FormatFloat(r.Mean), FormatFloat(r.Median)})
		}
	}
	return t
}

// CorrelationTable lists computed correlations.
func CorrelationTable(correlations []model.Correlation) Table {
	t := Table{Header: []string{"Range", "N", "Correlation", "PValue"}}
	for _, c := range correlations {
		t.Rows = append(t.Rows, []string{c.Range.Label, strconv.Itoa(c.N), FormatFloat(c.R), FormatFloat(c.PValue)})
	}
	return t
}

// DelayChart charts the delay bucket counts.
func DelayChart(d model.DelayAnalysis) BarChart {
	c := BarChart{
		Title:  "Reģistrēto aizturu sadalījums (stimuli bez mērķa)",
		XLabel: "Aiztures intervāls",
		YLabel: "Stimulu skaits",
	}
	for _, b := range d.Buckets {
		c.Labels = append(c.Labels, b.Label)
		c.Values = append(c.Values, float64(b.Count))
	}
	return c
}

// StimulusChart charts per-stimulus mean and median side by side.
func StimulusChart(stimuli []model.StimulusSummary) GroupedBarChart {
	c := GroupedBarChart{
		Title:  "Vidējais un mediānas reakcijas laiks katram stimulus",
		XLabel: stimulusCaption,
		YLabel: reactionTimeCaption,
	}
	means := BarSeries{Name: meanCaption}
	medians := BarSeries{Name: medianCaption}
	for _, s := range stimuli {
		c.Groups = append(c.Groups, strconv.Itoa(s.Stimulus))
		means.Values = append(means.Values, s.Mean)
		medians.Values = append(medians.Values, s.Median)
	}
	c.Series = []BarSeries{means, medians}
	return c
}

// TrendChart charts per-stimulus mean and median across a span.
func TrendChart(tr model.Trend) LineChart {
	c := LineChart{
		Title:  fmt.Sprintf("Reakcijas laika tendence (stimuli %d–%d)", tr.Range.Start, tr.Range.End),
		XLabel: stimulusCaption,
		YLabel: reactionTimeCaption,
	}
	means := LineSeries{Name: "mean"}
	medians := LineSeries{Name: "median"}
	for _, p := range tr.Points {
		c.X = append(c.X, float64(p.Stimulus))
		means.Values = append(means.Values, p.Mean)
		medians.Values = append(medians.Values, p.Median)
	}
	c.Series = []LineSeries{means, medians}
	return c
}

// ComparisonChart charts two ranges' mean and median.
func ComparisonChart(cmp model.Comparison) GroupedBarChart {
	return rangeBars(
		fmt.Sprintf("Salīdzinājums: %s vs %s", cmp.First.Range.Label, cmp.Second.Range.Label),
		"",
		[]model.RangeSummary{cmp.First, cmp.Second},
	)
}

// RangeChart charts every configured range's mean and median.
func RangeChart(ranges []model.RangeSummary) GroupedBarChart {
	return rangeBars("Reakcijas laiks pēc emocionālā stimulu bloka", "Stimulu intervāls", ranges)
}

// CorrelationChart scatters distractor count against reaction time.
func CorrelationChart(corr model.Correlation) ScatterChart {
	c := ScatterChart{
		Title:  fmt.Sprintf("Distraktoru skaita un reakcijas laika korelācija (stimuli %d–%d)", corr.Range.Start, corr.Range.End),
		XLabel: "Distraktoru skaits",
		YLabel: reactionTimeCaption,
	}
	for _, p := range corr.Points {
		c.X = append(c.X, float64(p.Distractors))
		c.Y = append(c.Y, p.ReactionTime)
	}
	return c
}

func rangeBars(title, xLabel string, ranges []model.RangeSummary) GroupedBarChart {
	c := GroupedBarChart{Title: title, XLabel: xLabel, YLabel: reactionTimeCaption}
	means := BarSeries{Name: meanCaption}
	medians := BarSeries{Name: medianCaption}
	for _, r := range ranges {
		c.Groups = append(c.Groups, r.Range.Label)
		means.Values = append(means.Values, r.Mean)
		medians.Values = append(medians.Values, r.Median)
	}
	c.Series = []BarSeries{means, medians}
	return c
}

// Emit writes every table and chart of a result through r. Table errors are
// returned immediately; chart errors are passed to onChartError and skipped.
func Emit(r Reporter, res model.Result, cfg model.Config, onChartError func(name string, err error)) error {
	if err := r.WriteTable(StimulusStatsFile, StimulusTable(res.Stimuli)); err != nil {
		return err
	}
	if err := r.WriteTable(RangeStatsFile, RangeTable(res.Ranges)); err != nil {
		return err
	}
	if err := r.WriteTable(DelayBucketsFile, DelayBucketTable(res.Delays)); err != nil {
		return err
	}
	if err := r.WriteTable(ComparisonsFile, ComparisonTable(res.Comparisons)); err != nil {
		return err
	}
	if err := r.WriteTable(CorrelationsFile, CorrelationTable(res.Correlations)); err != nil {
		return err
	}

	type chartJob struct {
		name  string
		chart Chart
	}
	jobs := []chartJob{
		{DelayChartFile, DelayChart(res.Delays)},
		{StimulusChartFile, StimulusChart(res.Stimuli)},
	}
	for _, tr := range res.Trends {
		jobs = append(jobs, chartJob{TrendChartFile(tr.Range), TrendChart(tr)})
	}
	for i, c := range res.Comparisons {
		name := ComparisonChartFile(model.RangePair{First: c.First.Range, Second: c.Second.Range})
		if i < len(cfg.Comparisons) {
			name = ComparisonChartFile(cfg.Comparisons[i])
		}
		jobs = append(jobs, chartJob{name, ComparisonChart(c)})
	}
	for _, corr := range res.Correlations {
		jobs = append(jobs, chartJob{CorrelationChartFile(corr.Range), CorrelationChart(corr)})
	}
	jobs = append(jobs, chartJob{RangeChartFile, RangeChart(res.Ranges)})

	for _, job := range jobs {
		if err := r.RenderChart(job.name, job.chart); err != nil && onChartError != nil {
			onChartError(job.name, err)
		}
	}
	return nil
}
