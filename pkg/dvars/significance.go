package dvars

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"dvarsfind/internal/models"
)

// TestOptions configures the DVARS hypothesis test.
type TestOptions struct {
	// Alpha is the significance threshold applied to the Bonferroni-adjusted
	// p-values. Must lie in (0, 1].
	Alpha float64

	// SkewOrder is the order d of the power transform used to correct the
	// right skew of the null distribution before moment matching. 0 disables
	// the correction.
	SkewOrder float64

	// Center selects mean or median for the global intensity scale.
	Center Center

	// Workers bounds the concurrency of the per-voxel estimation.
	// 0 means one worker per CPU.
	Workers int

	// SkipNormalization suppresses the percent-change rescaling for callers
	// whose data is already in percent-change units.
	SkipNormalization bool
}

// DefaultTestOptions returns the standard test configuration: alpha 0.05 and
// the cube-root skew correction.
func DefaultTestOptions() TestOptions {
	return TestOptions{
		Alpha:     0.05,
		SkewOrder: 3,
		Center:    CenterMean,
	}
}

// TestResult holds the per-transition statistics and decisions of a DVARS
// hypothesis test. All per-transition slices have length T-1, one element per
// pair of consecutive volumes; element t refers to the transition from volume
// t to volume t+1.
type TestResult struct {
	// SquaredDVARS is the spatial mean of squared voxel differences per
	// transition, and DVARS its square root.
	SquaredDVARS []float64
	DVARS        []float64

	// NullMean and NullVariance are the fitted null-distribution parameters.
	// NullVariance includes the skew correction when one was requested.
	NullMean     float64
	NullVariance float64

	// Statistics are the chi-squared test statistics and DOF the shared
	// degrees of freedom of the fitted model.
	Statistics []float64
	DOF        float64

	// PValues are right-tail probabilities under the fitted chi-squared
	// model. AdjustedPValues are Bonferroni-scaled by the number of
	// transitions and may exceed 1; they are compared against alpha, not
	// interpreted as calibrated probabilities.
	PValues         []float64
	AdjustedPValues []float64

	// Rejected marks transitions whose adjusted p-value is at or below alpha.
	Rejected []bool

	// ZScores are standardized deviations (D2(t) - mu0) / sqrt(var0), a
	// model-free diagnostic view of the same series.
	ZScores []float64
}

// Test runs the full DVARS significance pipeline on a raw 4D series:
// normalization, temporal differencing, robust null-parameter estimation,
// chi-squared moment matching, and Bonferroni-corrected right-tail tests.
//
// An all-constant series degenerates cleanly: every statistic is 0, every
// p-value is 1 and nothing is rejected. A null distribution that collapses on
// data that does vary is reported as ErrDegenerateDistribution.
func Test(raw *models.Series4D, opts TestOptions) (*TestResult, error) {
	if opts.Alpha <= 0 || opts.Alpha > 1 {
		return nil, fmt.Errorf("alpha must be in (0, 1], got %g", opts.Alpha)
	}
	if opts.SkewOrder < 0 {
		return nil, fmt.Errorf("skew-correction order must be non-negative, got %g", opts.SkewOrder)
	}

	data := raw
	if !opts.SkipNormalization {
		normalized, err := Normalize(raw, opts.Center)
		if err != nil {
			return nil, err
		}
		data = normalized
	}

	diff, err := TemporalDiff(data)
	if err != nil {
		return nil, err
	}

	squared := SquaredDVARS(diff)
	mu0 := NullMean(VoxelIQRVariance(diff, opts.Workers))
	variance := NullVariance(squared)
	if opts.SkewOrder > 0 {
		variance = SkewCorrectedVariance(mu0, variance, opts.SkewOrder)
	}

	result := &TestResult{
		SquaredDVARS: squared,
		DVARS:        DVARS(squared),
		NullMean:     mu0,
		NullVariance: variance,
	}

	n := len(squared)
	if mu0 == 0 {
		if !allZero(squared) {
			return nil, fmt.Errorf("null mean is zero but the series varies: %w",
				ErrDegenerateDistribution)
		}
		// No temporal variation anywhere: nothing to test, nothing rejected.
		result.Statistics = make([]float64, n)
		result.ZScores = make([]float64, n)
		result.PValues = ones(n)
		result.AdjustedPValues = make([]float64, n)
		for t := range result.AdjustedPValues {
			result.AdjustedPValues[t] = float64(n)
		}
		result.Rejected = make([]bool, n)
		return result, nil
	}
	if variance <= 0 {
		return nil, fmt.Errorf("null variance %g is not positive: %w",
			variance, ErrDegenerateDistribution)
	}

	result.DOF = 2 * mu0 * mu0 / variance
	result.Statistics = make([]float64, n)
	result.PValues = make([]float64, n)
	result.AdjustedPValues = make([]float64, n)
	result.Rejected = make([]bool, n)
	result.ZScores = make([]float64, n)

	model := distuv.ChiSquared{K: result.DOF}
	sd := math.Sqrt(variance)
	for t, d2 := range squared {
		result.Statistics[t] = 2 * mu0 * d2 / variance
		result.PValues[t] = model.Survival(result.Statistics[t])
		result.AdjustedPValues[t] = result.PValues[t] * float64(n)
		result.Rejected[t] = result.AdjustedPValues[t] <= opts.Alpha
		result.ZScores[t] = (d2 - mu0) / sd
	}

	return result, nil
}

// Outliers returns the indices of rejected transitions.
func (r *TestResult) Outliers() []int {
	var out []int
	for t, rejected := range r.Rejected {
		if rejected {
			out = append(out, t)
		}
	}
	return out
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
