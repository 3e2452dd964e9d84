// Package dvars implements the DVARS outlier statistic for 4D volumetric
// time-series and a hypothesis test against a robustly estimated null
// distribution.
//
// DVARS between two consecutive volumes is the square root of the spatial
// mean of squared voxel intensity differences. Under the null hypothesis of
// no real signal change, the squared DVARS values follow a distribution whose
// mean and variance are estimated here with interquartile-range statistics,
// making the estimates insensitive to the outlier volumes the test is trying
// to find. The squared DVARS series is then modeled as a scaled chi-squared
// variable by moment matching, which yields per-transition p-values.
package dvars

import (
	"errors"
	"fmt"
	"math"

	"dvarsfind/internal/models"
)

// ErrDegenerateDistribution is returned when the estimated null distribution
// cannot support a test: a zero or negative null variance on data that is not
// entirely constant, or a zero global intensity scale during normalization.
var ErrDegenerateDistribution = errors.New("degenerate null distribution")

// TemporalDiff computes the first-order temporal difference of s: a series
// with one fewer time point where element (x, y, z, t) is
// s(x, y, z, t+1) - s(x, y, z, t).
//
// Both the DVARS series and the null-parameter estimates are derived from
// this same difference array; using a single definition keeps the fitted
// chi-squared model consistent with the statistic it is tested against.
func TemporalDiff(s *models.Series4D) (*models.Series4D, error) {
	if s.T < 2 {
		return nil, fmt.Errorf("need at least 2 time points to difference, got %d: %w",
			s.T, models.ErrBadShape)
	}

	numVoxels := s.NumVoxels()
	diffT := s.T - 1
	out := make([]float64, numVoxels*diffT)

	for v := 0; v < numVoxels; v++ {
		series := s.VoxelSeries(v)
		dst := out[v*diffT : (v+1)*diffT]
		for t := 0; t < diffT; t++ {
			dst[t] = series[t+1] - series[t]
		}
	}

	return &models.Series4D{Data: out, X: s.X, Y: s.Y, Z: s.Z, T: diffT}, nil
}

// SquaredDVARS computes the squared DVARS series from a temporal difference
// array: for each transition t, the mean over all voxels of the squared
// difference. The result has one element per transition.
func SquaredDVARS(diff *models.Series4D) []float64 {
	numVoxels := diff.NumVoxels()
	out := make([]float64, diff.T)

	for v := 0; v < numVoxels; v++ {
		series := diff.VoxelSeries(v)
		for t, d := range series {
			out[t] += d * d
		}
	}

	for t := range out {
		out[t] /= float64(numVoxels)
	}
	return out
}

// DVARS returns the element-wise square root of a squared DVARS series.
func DVARS(squared []float64) []float64 {
	out := make([]float64, len(squared))
	for i, v := range squared {
		out[i] = math.Sqrt(v)
	}
	return out
}

// MeanSignal returns the spatial mean intensity at each time point: the
// volume-average time course. This is the simple 1D summary consumed by the
// non-model-based IQR fence detector.
func MeanSignal(s *models.Series4D) []float64 {
	numVoxels := s.NumVoxels()
	out := make([]float64, s.T)

	for v := 0; v < numVoxels; v++ {
		series := s.VoxelSeries(v)
		for t, val := range series {
			out[t] += val
		}
	}

	for t := range out {
		out[t] /= float64(numVoxels)
	}
	return out
}
