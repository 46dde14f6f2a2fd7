package aggregate

import "github.com/montanaflynn/stats"

// Text extraction occasionally glues two readings into one huge number or
// leaves a truncated near-zero fragment. Both corrupt a client's history far
// more than dropping the month does, so FilterOutliers removes them.
const (
	// spikePercentile is the upper percentile used as the plausibility bound.
	spikePercentile = 90
	// spikeFactor is how far above the quantile the maximum must sit before
	// the bound is enforced at all.
	spikeFactor = 10
	// nearZeroRatio flags readings vanishingly small relative to the rest of
	// the series.
	nearZeroRatio = 1e-4
)

// FilterOutliers drops rows whose peak consumption is implausible. It runs
// once over the whole aggregated batch: the plausibility bound comes from
// every client's readings together, so a glued reading on a client with a
// short history is still cut. Batches too short to judge are returned
// unchanged.
func FilterOutliers(rows []Row) []Row {
	if len(rows) < 3 {
		return rows
	}
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ConsumptionPeak
	}

	rows = dropSpikes(rows, values)

	values = values[:0]
	for _, r := range rows {
		values = append(values, r.ConsumptionPeak)
	}
	return dropNearZero(rows, values)
}

// dropSpikes removes readings above the upper percentile, but only when the
// maximum is a whole spikeFactor above it. A series that is merely spread
// out keeps all its rows.
func dropSpikes(rows []Row, values []float64) []Row {
	bound, err := stats.Percentile(values, spikePercentile)
	if err != nil {
		return rows
	}
	max, err := stats.Max(values)
	if err != nil || max <= spikeFactor*bound {
		return rows
	}
	kept := rows[:0]
	for _, r := range rows {
		if r.ConsumptionPeak <= bound {
			kept = append(kept, r)
		}
	}
	return kept
}

// dropNearZero removes readings tiny relative to the series floor, taken as
// mean minus one standard deviation.
func dropNearZero(rows []Row, values []float64) []Row {
	mean, err := stats.Mean(values)
	if err != nil {
		return rows
	}
	stddev, err := stats.StandardDeviation(values)
	if err != nil {
		return rows
	}
	floor := mean - stddev
	if floor <= 0 {
		return rows
	}
	kept := rows[:0]
	for _, r := range rows {
		if r.ConsumptionPeak/floor >= nearZeroRatio {
			kept = append(kept, r)
		}
	}
	return kept
}
