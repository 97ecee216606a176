package stats

import (
	"math"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/verte-zerg/rtlab/internal/model"
)

// Describe computes count, mean and median, skipping NaN values.
func Describe(values []float64) model.Summary {
	xs := finite(values)
	if len(xs) == 0 {
		return model.Summary{Mean: math.NaN(), Median: math.NaN()}
	}
	return model.Summary{
		N:      len(xs),
		Mean:   stat.Mean(xs, nil),
		Median: Median(xs),
	}
}

// Median returns the middle value, averaging the two middle values for even counts.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sample := mstats.Sample{Xs: values}
	return sample.Quantile(0.5)
}

// Max returns the largest value, or NaN for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	_, hi := mstats.Sample{Xs: values}.Bounds()
	return hi
}

// StdDev returns the sample standard deviation (n-1 denominator).
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func reactionTimes(trials []model.Trial) []float64 {
	out := make([]float64, len(trials))
	for i, t := range trials {
		out[i] = t.ReactionTime
	}
	return out
}
