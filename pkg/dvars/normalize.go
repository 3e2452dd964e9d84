package dvars

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"dvarsfind/internal/models"
)

// Center selects the central-tendency statistic used for the global
// intensity scale during normalization.
type Center int

const (
	// CenterMean uses the mean of the per-voxel temporal means.
	CenterMean Center = iota

	// CenterMedian uses the median of the per-voxel temporal means.
	CenterMedian
)

// Normalize rescales raw voxel intensities into percentage-change units.
//
// For each voxel the temporal mean M(x,y,z) is subtracted, and the result is
// scaled by 100 divided by a single global factor m_R, the mean (or median,
// per center) of the per-voxel means:
//
//	normalized(x,y,z,t) = 100 * (raw(x,y,z,t) - M(x,y,z)) / m_R
//
// The output has the same shape as the input and every voxel's temporal mean
// in the output is 0. All downstream null-distribution formulas assume these
// units; a caller that already has percent-change data may skip this step.
//
// Returns ErrDegenerateDistribution when m_R is 0 (all-zero input).
func Normalize(s *models.Series4D, center Center) (*models.Series4D, error) {
	numVoxels := s.NumVoxels()

	voxelMeans := make([]float64, numVoxels)
	for v := 0; v < numVoxels; v++ {
		voxelMeans[v] = stat.Mean(s.VoxelSeries(v), nil)
	}

	var scale float64
	switch center {
	case CenterMedian:
		scale = median(voxelMeans)
	default:
		scale = stat.Mean(voxelMeans, nil)
	}
	if scale == 0 {
		return nil, fmt.Errorf("normalize: global intensity scale m_R is zero: %w",
			ErrDegenerateDistribution)
	}

	out := make([]float64, len(s.Data))
	for v := 0; v < numVoxels; v++ {
		series := s.VoxelSeries(v)
		dst := out[v*s.T : (v+1)*s.T]
		for t, val := range series {
			dst[t] = 100 * (val - voxelMeans[v]) / scale
		}
	}

	return &models.Series4D{Data: out, X: s.X, Y: s.Y, Z: s.Z, T: s.T}, nil
}
