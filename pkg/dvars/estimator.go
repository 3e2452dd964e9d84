package dvars

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"dvarsfind/internal/models"
)

// normalIQR is the interquartile range of the standard normal distribution,
// Phi^-1(0.75) - Phi^-1(0.25), approximately 1.349. Dividing an empirical IQR
// by this constant converts it into a robust standard-deviation-like estimate.
var normalIQR = distuv.UnitNormal.Quantile(0.75) - distuv.UnitNormal.Quantile(0.25)

// quantile returns the q-th quantile of sorted values using linear
// interpolation between order statistics, the percentile definition the
// null-distribution derivation is calibrated against. values must be sorted.
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

// median returns the median of values without modifying them.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantile(sorted, 0.5)
}

// VoxelIQRVariance computes a robust per-voxel variance estimate from a
// temporal difference series: each voxel's interquartile range over its
// transitions, divided by the standard normal IQR. A voxel whose series is
// constant gets 0.
//
// The per-voxel computation is independent across voxels, so the spatial
// volume is partitioned into contiguous chunks processed concurrently.
// workers <= 0 means one worker per CPU.
func VoxelIQRVariance(diff *models.Series4D, workers int) *models.Grid3D {
	numVoxels := diff.NumVoxels()
	out := make([]float64, numVoxels)

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > numVoxels {
		workers = numVoxels
	}
	voxelsPerWorker := (numVoxels + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * voxelsPerWorker
		end := start + voxelsPerWorker
		if end > numVoxels {
			end = numVoxels
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			// Reused scratch buffer; each voxel's series is sorted in place here.
			sorted := make([]float64, diff.T)
			for v := start; v < end; v++ {
				copy(sorted, diff.VoxelSeries(v))
				sort.Float64s(sorted)
				iqr := quantile(sorted, 0.75) - quantile(sorted, 0.25)
				out[v] = iqr / normalIQR
			}
		}(start, end)
	}
	wg.Wait()

	return &models.Grid3D{Data: out, X: diff.X, Y: diff.Y, Z: diff.Z}
}

// NullMean estimates the mean of the null distribution of squared DVARS as
// the median across voxels of the robust per-voxel variances. The median
// keeps the estimate insensitive to the minority of voxels affected by real
// signal change.
//
// An all-constant series has zero IQR at every voxel and therefore a null
// mean of 0; tests against it report no significant outliers rather than a
// numeric error.
func NullMean(voxelVariance *models.Grid3D) float64 {
	return median(voxelVariance.Data)
}

// NullVariance estimates the variance of the null distribution from the
// squared DVARS series itself: its half interquartile range (median minus
// first quartile) divided by half the standard normal IQR. The half-IQR is
// used because outlier transitions inflate only the upper tail.
func NullVariance(squaredDVARS []float64) float64 {
	sorted := make([]float64, len(squaredDVARS))
	copy(sorted, squaredDVARS)
	sort.Float64s(sorted)

	hIQR := quantile(sorted, 0.5) - quantile(sorted, 0.25)
	return hIQR / (normalIQR / 2)
}

// SkewCorrectedVariance compensates for the right skew of the squared DVARS
// null distribution before it is treated as chi-squared, using a power
// transform of order d (d = 3, the cube-root transform, is standard):
//
//	corrected = (1/d) * variance * mu^(2/d - 2)
//
// Returns 0 when mu is 0, the degenerate all-constant case.
func SkewCorrectedVariance(mu, variance, d float64) float64 {
	if mu == 0 {
		return 0
	}
	return variance * math.Pow(mu, 2/d-2) / d
}

// LegacyMean is the earlier, non-robust null-mean estimator from the
// project's history: the sum of per-voxel temporal variances divided by the
// sum of all intensities. It is not equivalent to NullMean and nothing in
// the testing pipeline consumes it; it is kept only as a diagnostic.
func LegacyMean(s *models.Series4D) float64 {
	numVoxels := s.NumVoxels()

	var varianceSum float64
	for v := 0; v < numVoxels; v++ {
		series := s.VoxelSeries(v)
		mean := stat.Mean(series, nil)
		var ss float64
		for _, val := range series {
			d := val - mean
			ss += d * d
		}
		// Population variance, matching the historical definition.
		varianceSum += ss / float64(s.T)
	}

	return varianceSum / floats.Sum(s.Data)
}
