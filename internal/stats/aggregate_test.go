package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/verte-zerg/rtlab/internal/model"
)

func trial(stimulus int, rt float64) model.Trial {
	return model.Trial{Participant: "P", Stimulus: stimulus, ReactionTime: rt}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   model.Summary
	}{
		{name: "odd", values: []float64{3, 1, 2}, want: model.Summary{N: 3, Mean: 2, Median: 2}},
		{name: "even", values: []float64{4, 1, 2, 3}, want: model.Summary{N: 4, Mean: 2.5, Median: 2.5}},
		{name: "nan skipped", values: []float64{1, math.NaN(), 3}, want: model.Summary{N: 2, Mean: 2, Median: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.values)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Fatalf("summary mismatch (-want +got):\n%s", diff)
			}
		})
	}
	empty := Describe(nil)
	if empty.N != 0 || !math.IsNaN(empty.Mean) || !math.IsNaN(empty.Median) {
		t.Fatalf("expected NaN summary for empty input, got %+v", empty)
	}
}

func TestStimulusStats(t *testing.T) {
	trials := []model.Trial{trial(2, 1), trial(1, 4), trial(2, 3), trial(1, 2), trial(2, 5)}
	got := StimulusStats(trials)
	want := []model.StimulusSummary{
		{Stimulus: 1, Summary: model.Summary{N: 2, Mean: 3, Median: 3}},
		{Stimulus: 2, Summary: model.Summary{N: 3, Mean: 3, Median: 3}},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("stimulus stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeStatsInclusive(t *testing.T) {
	trials := []model.Trial{trial(0, 100), trial(1, 1), trial(3, 2), trial(5, 6), trial(6, 100)}
	r := model.StimulusRange{Label: "Stimuli 1-5", Start: 1, End: 5}
	got := RangeStats(trials, r)
	if got.N != 3 {
		t.Fatalf("expected both range ends to be included, got n=%d", got.N)
	}
	if math.Abs(got.Mean-3) > 1e-12 || math.Abs(got.Median-2) > 1e-12 {
		t.Fatalf("unexpected summary: %+v", got.Summary)
	}

	empty := RangeStats(trials, model.StimulusRange{Label: "none", Start: 10, End: 12})
	if empty.N != 0 || !math.IsNaN(empty.Mean) {
		t.Fatalf("expected empty range to be NaN, got %+v", empty.Summary)
	}
}

func TestCompareRangesAndTrend(t *testing.T) {
	trials := []model.Trial{trial(1, 1), trial(2, 2), trial(6, 3), trial(7, 5)}
	pair := model.RangePair{
		First:  model.StimulusRange{Label: "A", Start: 1, End: 5},
		Second: model.StimulusRange{Label: "B", Start: 6, End: 10},
	}
	c := CompareRanges(trials, pair)
	if c.First.Range.Label != "A" || c.Second.Range.Label != "B" {
		t.Fatalf("unexpected labels: %+v", c)
	}
	if c.First.Mean != 1.5 || c.Second.Mean != 4 {
		t.Fatalf("unexpected means: %v %v", c.First.Mean, c.Second.Mean)
	}

	tr := Trend(trials, model.StimulusRange{Label: "A", Start: 1, End: 5})
	if len(tr.Points) != 2 || tr.Points[0].Stimulus != 1 || tr.Points[1].Stimulus != 2 {
		t.Fatalf("unexpected trend points: %+v", tr.Points)
	}
}
