// Package models holds the shared data types for volumetric time-series data.
package models

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBadShape is returned when input data is not a valid 4D series
	// with at least two time points.
	ErrBadShape = errors.New("data must be a 4D series with at least 2 time points")

	// ErrNonFinite is returned when input data contains NaN or infinite values.
	ErrNonFinite = errors.New("data contains non-finite values")
)

// Series4D represents a volumetric time-series: a 3D grid of voxels, each
// owning a temporal sequence of intensity values.
//
// Data is stored as a flat array in voxel-major order with time varying
// fastest, so each voxel's temporal series occupies a contiguous block:
//
//	index = ((x*Y + y)*Z + z)*T + t
type Series4D struct {
	// Data is the flat intensity array of length X*Y*Z*T.
	Data []float64

	// X, Y, Z are the spatial dimensions in voxels.
	X, Y, Z int

	// T is the number of time points (volumes).
	T int
}

// NewSeries4D validates dims and data and wraps them in a Series4D.
// It returns ErrBadShape for non-positive dimensions, fewer than two time
// points or a length mismatch, and ErrNonFinite if any value is NaN or Inf.
func NewSeries4D(x, y, z, t int, data []float64) (*Series4D, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("invalid spatial dimensions %dx%dx%d: %w", x, y, z, ErrBadShape)
	}
	if t < 2 {
		return nil, fmt.Errorf("got %d time points: %w", t, ErrBadShape)
	}
	if len(data) != x*y*z*t {
		return nil, fmt.Errorf("data length %d does not match dimensions %dx%dx%dx%d: %w",
			len(data), x, y, z, t, ErrBadShape)
	}
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
	}
	return &Series4D{Data: data, X: x, Y: y, Z: z, T: t}, nil
}

// NumVoxels returns the number of spatial locations X*Y*Z.
func (s *Series4D) NumVoxels() int {
	return s.X * s.Y * s.Z
}

// VoxelSeries returns the temporal sequence of voxel v as a view into the
// underlying array. Voxels are numbered 0..NumVoxels()-1 in (x, y, z) order.
func (s *Series4D) VoxelSeries(v int) []float64 {
	return s.Data[v*s.T : (v+1)*s.T]
}

// At returns the intensity at spatial location (x, y, z) and time t.
func (s *Series4D) At(x, y, z, t int) float64 {
	return s.Data[((x*s.Y+y)*s.Z+z)*s.T+t]
}

// Set stores an intensity at spatial location (x, y, z) and time t.
func (s *Series4D) Set(x, y, z, t int, value float64) {
	s.Data[((x*s.Y+y)*s.Z+z)*s.T+t] = value
}

// Grid3D is a single scalar value per voxel, stored flat in the same
// (x, y, z) voxel order as Series4D.
type Grid3D struct {
	Data    []float64
	X, Y, Z int
}

// At returns the value at spatial location (x, y, z).
func (g *Grid3D) At(x, y, z int) float64 {
	return g.Data[(x*g.Y+y)*g.Z+z]
}
