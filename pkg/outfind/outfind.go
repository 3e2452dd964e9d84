// Package outfind orchestrates outlier detection over a directory of 4D
// volume files. Each file is tested independently; a file that fails to load
// or to yield a testable null distribution is recorded and the batch
// continues with the remaining files.
package outfind

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dvarsfind/pkg/config"
	"dvarsfind/pkg/detectors"
	"dvarsfind/pkg/dvars"
	"dvarsfind/pkg/volio"
)

// Params holds the detection parameters for a batch run.
type Params struct {
	// DataDir is the directory containing 4D volume files.
	DataDir string

	// FileExtension filters which files in DataDir are analyzed.
	FileExtension string

	// Method is config.MethodDVARS or config.MethodMeanSignal.
	Method string

	// Alpha is the significance threshold for the DVARS test.
	Alpha float64

	// SkewOrder is the order of the skew-correction transform (0 disables).
	SkewOrder float64

	// Center is "mean" or "median", the global intensity scale statistic.
	Center string

	// FenceMultiplier is the IQR fence factor for the mean-signal method.
	FenceMultiplier float64

	// NumCores bounds the concurrency of the per-voxel estimation.
	NumCores int

	// Verbose enables per-file progress output.
	Verbose bool
}

// FileResult is the outcome of testing a single volume file.
type FileResult struct {
	// File is the filename relative to the data directory.
	File string `json:"file"`

	// Outliers are the flagged indices: transition indices for the DVARS
	// method, time-point indices for the mean-signal method.
	Outliers []int `json:"outliers"`

	// Error is set when this file could not be tested.
	Error string `json:"error,omitempty"`
}

// Report maps every scanned file to its flagged indices.
type Report struct {
	DataDir string       `json:"dataDir"`
	Method  string       `json:"method"`
	Alpha   float64      `json:"alpha,omitempty"`
	Results []FileResult `json:"results"`
}

// Finder runs outlier detection over a data directory.
type Finder struct {
	params *Params
}

// NewFinder creates a finder with the provided parameters.
func NewFinder(params *Params) *Finder {
	return &Finder{params: params}
}

// Run scans the data directory and tests every volume file, returning a
// report with one entry per file. Per-file failures are recorded in the
// report rather than aborting the batch; the returned error covers only
// conditions that prevent the batch itself, such as an unreadable directory
// or an unknown method name.
func (f *Finder) Run() (*Report, error) {
	switch f.params.Method {
	case config.MethodDVARS, config.MethodMeanSignal:
	default:
		return nil, fmt.Errorf("unknown detection method %q", f.params.Method)
	}

	entries, err := os.ReadDir(f.params.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	ext := f.params.FileExtension
	if ext == "" {
		ext = volio.DefaultExtension
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	report := &Report{
		DataDir: f.params.DataDir,
		Method:  f.params.Method,
		Alpha:   f.params.Alpha,
		Results: make([]FileResult, 0, len(names)),
	}

	for _, name := range names {
		if f.params.Verbose {
			fmt.Printf("Testing %s...\n", name)
		}

		outliers, err := f.DetectFile(filepath.Join(f.params.DataDir, name))
		result := FileResult{File: name, Outliers: outliers}
		if err != nil {
			result.Error = err.Error()
			if f.params.Verbose {
				fmt.Printf("Warning: skipping %s: %v\n", name, err)
			}
		}
		report.Results = append(report.Results, result)
	}

	return report, nil
}

// DetectFile loads a single volume file and returns its flagged indices.
func (f *Finder) DetectFile(path string) ([]int, error) {
	series, err := volio.Load(path)
	if err != nil {
		return nil, err
	}

	if f.params.Method == config.MethodMeanSignal {
		mask := detectors.IQROutliers(dvars.MeanSignal(series), f.params.FenceMultiplier)
		return detectors.Indices(mask), nil
	}

	opts := dvars.TestOptions{
		Alpha:     f.params.Alpha,
		SkewOrder: f.params.SkewOrder,
		Center:    dvars.CenterMean,
		Workers:   f.params.NumCores,
	}
	if f.params.Center == "median" {
		opts.Center = dvars.CenterMedian
	}

	result, err := dvars.Test(series, opts)
	if err != nil {
		return nil, err
	}
	return result.Outliers(), nil
}
