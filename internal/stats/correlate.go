package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/verte-zerg/rtlab/internal/model"
)

// CorrelationPoints collects target-present log entries within r across all logs.
func CorrelationPoints(logs []model.TrialLog, r model.StimulusRange) []model.CorrelationPoint {
	var points []model.CorrelationPoint
	for _, log := range logs {
		for _, e := range log.Entries {
			if e.NoTarget || !r.Contains(e.Stimulus) {
				continue
			}
			points = append(points, model.CorrelationPoint{
				Participant:  string(log.Participant),
				Stimulus:     e.Stimulus,
				Distractors:  e.Distractors,
				ReactionTime: e.ReactionTime,
			})
		}
	}
	return points
}

// Pearson returns the correlation coefficient of x and y and its two-sided
// p-value under a Student t distribution with n-2 degrees of freedom.
func Pearson(x, y []float64) (r, p float64) {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN(), math.NaN()
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return r, math.NaN()
	}
	if n == 2 {
		return r, 1
	}
	if math.Abs(r) >= 1 {
		return r, 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(t))
	if p > 1 {
		p = 1
	}
	return r, p
}

// Correlate computes the distractor/reaction-time correlation for r.
// ok is false when fewer than two pairs exist.
func Correlate(logs []model.TrialLog, r model.StimulusRange) (corr model.Correlation, ok bool) {
	points := CorrelationPoints(logs, r)
	corr = model.Correlation{Range: r, N: len(points), Points: points}
	if len(points) < 2 {
		return corr, false
	}
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, pt := range points {
		x[i] = float64(pt.Distractors)
		y[i] = pt.ReactionTime
	}
	corr.R, corr.PValue = Pearson(x, y)
	return corr, true
}
