// Package detectors provides simple, non-model-based outlier detection on 1D
// numeric sequences. It is the lightweight alternative to the fitted DVARS
// hypothesis test: any per-time-point summary (mean signal, squared DVARS,
// z-scores) can be fed through the interquartile fence rule.
package detectors

import "sort"

// DefaultFenceMultiplier is the conventional Tukey fence factor.
const DefaultFenceMultiplier = 1.5

// IQROutliers flags values lying outside the robust fences
// [Q1 - k*IQR, Q3 + k*IQR], where Q1 and Q3 are the 25th and 75th
// percentiles of values and IQR = Q3 - Q1. k <= 0 falls back to
// DefaultFenceMultiplier. The returned mask has one element per input value.
func IQROutliers(values []float64, k float64) []bool {
	if k <= 0 {
		k = DefaultFenceMultiplier
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - k*iqr
	upper := q3 + k*iqr

	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = v < lower || v > upper
	}
	return mask
}

// Indices converts a boolean mask into the list of flagged positions.
func Indices(mask []bool) []int {
	var out []int
	for i, flagged := range mask {
		if flagged {
			out = append(out, i)
		}
	}
	return out
}

// quantile returns the q-th quantile of sorted values with linear
// interpolation between order statistics.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	pos := q * float64(n-1)
	lower := int(pos)
	upper := lower + 1
	if upper >= n {
		return sorted[lower]
	}
	weight := pos - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
