// Package fairness summarizes how evenly playing time is spread across the roster.
package fairness

import (
	"math"
	"slices"

	"github.com/maxviazov/equalplay-service/internal/model"
)

// Rating classifies a standard deviation of accrued seconds.
type Rating string

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingNeedsImprovement Rating = "Needs Improvement"
)

// Rating thresholds in seconds of standard deviation.
const (
	ExcellentBelow = 60.0
	GoodBelow      = 120.0
)

// ComputeMinutesStats returns median, mean, population stdev, min and max of accrued seconds.
// An empty roster yields all zeros.
func ComputeMinutesStats(players []model.Player) model.MinutesStats {
	n := len(players)
	if n == 0 {
		return model.MinutesStats{}
	}

	secs := make([]float64, n)
	for i, p := range players {
		secs[i] = float64(max(p.Seconds, 0))
	}
	slices.Sort(secs)

	var median float64
	if n%2 == 1 {
		median = secs[n/2]
	} else {
		median = (secs[n/2-1] + secs[n/2]) / 2
	}

	var sum float64
	for _, s := range secs {
		sum += s
	}
	mean := sum / float64(n)

	var sq float64
	for _, s := range secs {
		d := s - mean
		sq += d * d
	}

	return model.MinutesStats{
		Median: median,
		Mean:   mean,
		Stdev:  math.Sqrt(sq / float64(n)),
		Min:    secs[0],
		Max:    secs[n-1],
	}
}

// Rate maps a standard deviation onto the three fairness bands.
func Rate(stdev float64) Rating {
	switch {
	case stdev < ExcellentBelow:
		return RatingExcellent
	case stdev < GoodBelow:
		return RatingGood
	default:
		return RatingNeedsImprovement
	}
}

// Report bundles the statistics with their rating for display layers.
type Report struct {
	model.MinutesStats
	Rating Rating `json:"rating"`
}

// Evaluate computes the statistics and rates them in one step.
func Evaluate(players []model.Player) Report {
	st := ComputeMinutesStats(players)
	return Report{MinutesStats: st, Rating: Rate(st.Stdev)}
}
