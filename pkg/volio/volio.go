// Package volio reads and writes 4D volume files in a minimal raw format:
// a 4-byte magic, the number of dimensions, the four dimension sizes as
// little-endian uint32 values, then the voxel intensities as little-endian
// float64 values in the Series4D flat order (time varying fastest).
//
// The header is validated before any voxel data reaches the statistics core,
// so non-4D files are rejected at the boundary.
package volio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"dvarsfind/internal/models"
)

// Magic identifies a raw 4D volume file.
const Magic = "VOL4"

// DefaultExtension is the file extension the orchestrator scans for.
const DefaultExtension = ".vol4"

// Save writes s to path in the raw 4D format.
func Save(path string, s *models.Series4D) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create volume file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(Magic); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	header := []uint32{4, uint32(s.X), uint32(s.Y), uint32(s.Z), uint32(s.T)}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	if err := binary.Write(w, binary.LittleEndian, s.Data); err != nil {
		return fmt.Errorf("failed to write voxel data: %w", err)
	}
	return w.Flush()
}

// Load reads a raw 4D volume file and validates its shape and contents.
// The header must declare exactly 4 dimensions; the resulting series must
// have at least 2 time points and only finite values.
func Load(path string) (*models.Series4D, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("%s is not a raw 4D volume file", path)
	}

	var ndim uint32
	if err := binary.Read(r, binary.LittleEndian, &ndim); err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if ndim != 4 {
		return nil, fmt.Errorf("%s declares %d dimensions, want 4: %w",
			path, ndim, models.ErrBadShape)
	}

	dims := make([]uint32, 4)
	for i := range dims {
		if err := binary.Read(r, binary.LittleEndian, &dims[i]); err != nil {
			return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
	}

	x, y, z, t := int(dims[0]), int(dims[1]), int(dims[2]), int(dims[3])
	if x <= 0 || y <= 0 || z <= 0 || t <= 0 {
		return nil, fmt.Errorf("%s has invalid dimensions %dx%dx%dx%d: %w",
			path, x, y, z, t, models.ErrBadShape)
	}

	data := make([]float64, x*y*z*t)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("failed to read voxel data of %s: %w", path, err)
	}

	series, err := models.NewSeries4D(x, y, z, t, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}
