package stats

import (
	"math"

	"github.com/verte-zerg/rtlab/internal/model"
)

// DelayBuckets are the half-open excess delay intervals, in seconds.
var DelayBuckets = []model.DelayBucket{
	{Label: "<1ms", Lower: 0, Upper: 0.001},
	{Label: "1–5ms", Lower: 0.001, Upper: 0.005},
	{Label: "5–10ms", Lower: 0.005, Upper: 0.010},
	{Label: "10–25ms", Lower: 0.010, Upper: 0.025},
	{Label: "25–50ms", Lower: 0.025, Upper: 0.050},
	{Label: ">50ms", Lower: 0.050, Upper: math.Inf(1)},
}

// BucketIndex returns the index of the bucket containing delay, or -1.
func BucketIndex(delay float64, buckets []model.DelayBucket) int {
	for i, b := range buckets {
		if delay >= b.Lower && delay < b.Upper {
			return i
		}
	}
	return -1
}

// AnalyzeDelays summarizes how long no-target trials ran past the window.
// Trials answered before the window elapsed are returned as invalid and
// excluded from every statistic and bucket.
func AnalyzeDelays(trials []model.Trial, window float64) model.DelayAnalysis {
	buckets := make([]model.DelayBucket, len(DelayBuckets))
	copy(buckets, DelayBuckets)

	var delays []float64
	var invalid []model.InvalidDelay
	for _, t := range trials {
		if !t.NoTarget || math.IsNaN(t.ReactionTime) {
			continue
		}
		delay := t.ReactionTime - window
		if delay < 0 {
			invalid = append(invalid, model.InvalidDelay{Trial: t, ExcessDelay: delay})
			continue
		}
		delays = append(delays, delay)
		if idx := BucketIndex(delay, buckets); idx >= 0 {
			buckets[idx].Count++
		}
	}

	return model.DelayAnalysis{
		Count:   len(delays),
		Max:     Max(delays),
		Mean:    Mean(delays),
		StdDev:  StdDev(delays),
		Buckets: buckets,
		Invalid: invalid,
	}
}
