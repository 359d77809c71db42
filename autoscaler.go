package quadbench

import (
	"fmt"
	"math"
)

// WorkerRecommendation is the pool size suggested by a fitted scaling law.
type WorkerRecommendation struct {
	Workers      int     // Recommended Runtime.Workers
	PeakWorkers  float64 // Theoretical throughput peak, may be +Inf
	Throughput   float64 // Predicted integrations/sec at Workers
	Efficiency   float64 // Predicted efficiency at Workers
	InRetrograde bool    // True if maxWorkers is already past the peak
	Reason       string
}

// PeakWorkers returns the worker count where throughput stops growing.
//
// From C(N) = λN / (1 + α(N-1) + βN(N-1)), dC/dN = 0 at
//
//	N_peak = sqrt((1-α)/β)
//
// With β ≤ 0 there is no coordination penalty and the peak is +Inf.
func (c USLCoefficients) PeakWorkers() float64 {
	if c.Beta <= 0 {
		return math.Inf(1)
	}
	if c.Alpha >= 1 {
		return 0
	}
	return math.Sqrt((1 - c.Alpha) / c.Beta)
}

// IsRetrograde reports whether adding workers beyond n lowers throughput.
func (c USLCoefficients) IsRetrograde(n int) bool {
	peak := c.PeakWorkers()
	if math.IsInf(peak, 1) {
		return false
	}
	return float64(n) >= peak
}

// RecommendWorkers picks the worker count in [1, maxWorkers] with the
// highest predicted throughput. A larger pool must beat the current best by
// more than minGain to be chosen.
func (c USLCoefficients) RecommendWorkers(maxWorkers int) WorkerRecommendation {
	const minGain = 0.01

	if maxWorkers < 1 {
		maxWorkers = 1
	}

	best := 1
	bestThroughput := c.PredictThroughput(1)
	for n := 2; n <= maxWorkers; n++ {
		tp := c.PredictThroughput(n)
		if tp > bestThroughput*(1+minGain) {
			best = n
			bestThroughput = tp
		}
	}

	peak := c.PeakWorkers()
	rec := WorkerRecommendation{
		Workers:      best,
		PeakWorkers:  peak,
		Throughput:   bestThroughput,
		Efficiency:   c.Efficiency(best),
		InRetrograde: c.IsRetrograde(maxWorkers),
	}

	switch {
	case best == 1:
		rec.Reason = "parallel overhead outweighs the work: run sequentially or raise n"
	case rec.InRetrograde:
		rec.Reason = fmt.Sprintf("throughput peaks near %.1f workers; more workers slow integration down", peak)
	case best == maxWorkers:
		rec.Reason = fmt.Sprintf("still scaling at %d workers (efficiency %.0f%%)", best, rec.Efficiency*100)
	default:
		rec.Reason = fmt.Sprintf("gains below %.0f%% per worker beyond %d", minGain*100, best)
	}
	return rec
}
