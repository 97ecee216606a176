package stats

import (
	"math"
	"testing"

	"github.com/verte-zerg/rtlab/internal/model"
)

func analysisConfig(count int) model.Config {
	r := func(label string, start, end int) model.StimulusRange {
		return model.StimulusRange{Label: label, Start: start, End: end}
	}
	return model.Config{
		StimulusCount:  count,
		NoTargetWindow: 20.0,
		Ranges:         []model.StimulusRange{r("Stimuli 1-2", 1, 2), r("Stimuli 3-4", 3, 4)},
		Trends:         []model.StimulusRange{r("Stimuli 1-4", 1, 4)},
		Comparisons:    []model.RangePair{{First: r("Stimuli 1-2", 1, 2), Second: r("Stimuli 3-4", 3, 4)}},
		Correlations:   []model.StimulusRange{r("Stimuli 1-2", 1, 2), r("Stimuli 3-4", 3, 4)},
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	wide := model.WideTable{
		StimulusCount: 4,
		Rows: []model.WideRow{
			{Participant: "A", Times: []float64{1.0, 2.0, 20.007, 4.0}, NoTarget: []bool{false, false, true, false}},
			{Participant: "B", Times: []float64{3.0, 4.0, 19.999, 6.0}, NoTarget: []bool{false, false, true, false}},
		},
	}
	logs := []model.TrialLog{
		{Participant: "A", Entries: []model.LogEntry{
			{Stimulus: 1, ReactionTime: 1.0, Distractors: 1},
			{Stimulus: 2, ReactionTime: 2.0, Distractors: 3},
			{Stimulus: 2, ReactionTime: 2.5, Distractors: 4},
		}},
	}

	res := Analyze(wide, logs, analysisConfig(4))
	if res.Participants != 2 || len(res.Trials) != 8 {
		t.Fatalf("unexpected shape: %d participants, %d trials", res.Participants, len(res.Trials))
	}

	if res.Delays.Count != 1 || len(res.Delays.Invalid) != 1 {
		t.Fatalf("expected one valid and one invalid delay, got %+v", res.Delays)
	}
	if res.Delays.Invalid[0].Participant != "B" {
		t.Fatalf("expected participant B to be invalid")
	}
	for _, b := range res.Delays.Buckets {
		want := 0
		if b.Label == "5–10ms" {
			want = 1
		}
		if b.Count != want {
			t.Fatalf("bucket %s: expected %d, got %d", b.Label, want, b.Count)
		}
	}

	if len(res.Stimuli) != 3 {
		t.Fatalf("expected stats for the 3 target-present stimuli, got %d", len(res.Stimuli))
	}
	if res.Stimuli[0].Mean != 2 || res.Stimuli[2].Stimulus != 4 || res.Stimuli[2].Mean != 5 {
		t.Fatalf("unexpected stimulus stats: %+v", res.Stimuli)
	}

	if len(res.Ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(res.Ranges))
	}
	if res.Ranges[0].N != 4 || math.Abs(res.Ranges[0].Mean-2.5) > 1e-12 {
		t.Fatalf("unexpected first range: %+v", res.Ranges[0])
	}
	// No-target stimulus 3 must not leak into the target-present ranges.
	if res.Ranges[1].N != 2 || math.Abs(res.Ranges[1].Mean-5) > 1e-12 {
		t.Fatalf("unexpected second range: %+v", res.Ranges[1])
	}

	if len(res.Comparisons) != 1 || len(res.Trends) != 1 || len(res.Trends[0].Points) != 3 {
		t.Fatalf("unexpected comparisons/trends: %+v %+v", res.Comparisons, res.Trends)
	}

	if len(res.Correlations) != 1 {
		t.Fatalf("expected the empty correlation range to be skipped, got %d", len(res.Correlations))
	}
	if res.Correlations[0].Range.Start != 1 || res.Correlations[0].N != 3 {
		t.Fatalf("unexpected correlation: %+v", res.Correlations[0])
	}
}
