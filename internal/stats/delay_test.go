package stats

import (
	"math"
	"testing"

	"github.com/verte-zerg/rtlab/internal/model"
)

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		delay float64
		want  string
	}{
		{0, "<1ms"},
		{0.0009, "<1ms"},
		{0.001, "1–5ms"},
		{0.0049, "1–5ms"},
		{0.005, "5–10ms"},
		{0.007, "5–10ms"},
		{0.010, "10–25ms"},
		{0.025, "25–50ms"},
		{0.0499, "25–50ms"},
		{0.050, ">50ms"},
		{3.5, ">50ms"},
	}
	for _, tt := range tests {
		idx := BucketIndex(tt.delay, DelayBuckets)
		if idx < 0 {
			t.Fatalf("delay %v: no bucket", tt.delay)
		}
		if got := DelayBuckets[idx].Label; got != tt.want {
			t.Fatalf("delay %v: expected %s, got %s", tt.delay, tt.want, got)
		}
	}
	if idx := BucketIndex(-0.001, DelayBuckets); idx != -1 {
		t.Fatalf("expected negative delay to have no bucket, got %d", idx)
	}
}

func TestAnalyzeDelaysExcludesInvalid(t *testing.T) {
	trials := []model.Trial{
		{Participant: "A", Stimulus: 3, ReactionTime: 20.007, NoTarget: true},
		{Participant: "B", Stimulus: 3, ReactionTime: 19.999, NoTarget: true},
		{Participant: "A", Stimulus: 4, ReactionTime: 1.2},
	}
	d := AnalyzeDelays(trials, 20.0)
	if d.Count != 1 {
		t.Fatalf("expected 1 valid delay, got %d", d.Count)
	}
	if len(d.Invalid) != 1 || d.Invalid[0].Participant != "B" {
		t.Fatalf("expected participant B to be invalid, got %+v", d.Invalid)
	}
	if math.Abs(d.Max-0.007) > 1e-9 || math.Abs(d.Mean-0.007) > 1e-9 {
		t.Fatalf("unexpected max/mean: %v/%v", d.Max, d.Mean)
	}
	if !math.IsNaN(d.StdDev) {
		t.Fatalf("expected NaN std dev for a single value, got %v", d.StdDev)
	}
	counts := map[string]int{}
	for _, b := range d.Buckets {
		counts[b.Label] = b.Count
	}
	if counts["5–10ms"] != 1 {
		t.Fatalf("expected 5–10ms bucket to hold participant A, got %+v", d.Buckets)
	}
}

func TestAnalyzeDelaysBucketsSumToValid(t *testing.T) {
	var trials []model.Trial
	for i := 0; i < 200; i++ {
		trials = append(trials, model.Trial{
			Participant:  "P",
			Stimulus:     i%20 + 1,
			ReactionTime: 19.99 + float64(i)*0.0007,
			NoTarget:     true,
		})
	}
	trials = append(trials, model.Trial{ReactionTime: math.NaN(), NoTarget: true})
	d := AnalyzeDelays(trials, 20.0)
	if len(d.Buckets) != len(DelayBuckets) {
		t.Fatalf("expected every bucket to be reported, got %d", len(d.Buckets))
	}
	sum := 0
	for _, b := range d.Buckets {
		sum += b.Count
	}
	if sum != d.Count {
		t.Fatalf("bucket counts sum to %d, expected %d", sum, d.Count)
	}
	if d.Count+len(d.Invalid) != 200 {
		t.Fatalf("expected valid+invalid to cover all non-NaN rows, got %d+%d", d.Count, len(d.Invalid))
	}
	for _, inv := range d.Invalid {
		if inv.ReactionTime >= 20.0 {
			t.Fatalf("row %v should not be invalid", inv.ReactionTime)
		}
	}
}

func TestAnalyzeDelaysEmpty(t *testing.T) {
	d := AnalyzeDelays(nil, 20.0)
	if d.Count != 0 || !math.IsNaN(d.Mean) || !math.IsNaN(d.Max) {
		t.Fatalf("unexpected empty analysis: %+v", d)
	}
	for _, b := range d.Buckets {
		if b.Count != 0 {
			t.Fatalf("expected zero counts, got %+v", b)
		}
	}
}
