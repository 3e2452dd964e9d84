package outfind

import (
	"os"
	"path/filepath"
	"testing"

	"dvarsfind/internal/models"
	"dvarsfind/pkg/config"
	"dvarsfind/pkg/volio"
)

func writeConstantVolume(t *testing.T, path string, value float64) {
	t.Helper()
	data := make([]float64, 3*3*3*10)
	for i := range data {
		data[i] = value
	}
	s, err := models.NewSeries4D(3, 3, 3, 10, data)
	if err != nil {
		t.Fatalf("NewSeries4D failed: %v", err)
	}
	if err := volio.Save(path, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func writeSpikedVolume(t *testing.T, path string, spikeAt int) {
	t.Helper()
	x, y, z, n := 3, 3, 3, 10
	data := make([]float64, x*y*z*n)
	for v := 0; v < x*y*z; v++ {
		for tt := 0; tt < n; tt++ {
			if tt == spikeAt {
				data[v*n+tt] = 100
			} else {
				data[v*n+tt] = 1
			}
		}
	}
	s, err := models.NewSeries4D(x, y, z, n, data)
	if err != nil {
		t.Fatalf("NewSeries4D failed: %v", err)
	}
	if err := volio.Save(path, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func TestRunMeanSignalMethod(t *testing.T) {
	dir := t.TempDir()
	writeConstantVolume(t, filepath.Join(dir, "calm.vol4"), 1)
	writeSpikedVolume(t, filepath.Join(dir, "spiked.vol4"), 5)

	finder := NewFinder(&Params{
		DataDir:         dir,
		Method:          config.MethodMeanSignal,
		FenceMultiplier: 1.5,
	})
	report, err := finder.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(report.Results))
	}

	// Results are sorted by filename: calm first.
	calm, spiked := report.Results[0], report.Results[1]
	if calm.File != "calm.vol4" || spiked.File != "spiked.vol4" {
		t.Fatalf("Unexpected result order: %s, %s", calm.File, spiked.File)
	}

	if len(calm.Outliers) != 0 {
		t.Errorf("Constant volume flagged outliers %v", calm.Outliers)
	}
	if len(spiked.Outliers) != 1 || spiked.Outliers[0] != 5 {
		t.Errorf("Spiked volume outliers = %v, want [5]", spiked.Outliers)
	}
}

func TestRunContinuesPastBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeConstantVolume(t, filepath.Join(dir, "good.vol4"), 2)
	if err := os.WriteFile(filepath.Join(dir, "broken.vol4"), []byte("garbage"), 0644); err != nil {
		t.Fatalf("Failed to write broken file: %v", err)
	}

	finder := NewFinder(&Params{
		DataDir: dir,
		Method:  config.MethodMeanSignal,
	})
	report, err := finder.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(report.Results))
	}

	broken, good := report.Results[0], report.Results[1]
	if broken.Error == "" {
		t.Error("Broken file produced no error")
	}
	if good.Error != "" {
		t.Errorf("Good file unexpectedly failed: %s", good.Error)
	}
}

func TestRunDVARSMethodOnConstantVolume(t *testing.T) {
	dir := t.TempDir()
	writeConstantVolume(t, filepath.Join(dir, "calm.vol4"), 1)

	finder := NewFinder(&Params{
		DataDir:   dir,
		Method:    config.MethodDVARS,
		Alpha:     0.05,
		SkewOrder: 3,
		Center:    "mean",
	})
	report, err := finder.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	result := report.Results[0]
	if result.Error != "" {
		t.Fatalf("Constant volume failed the DVARS test: %s", result.Error)
	}
	if len(result.Outliers) != 0 {
		t.Errorf("Constant volume flagged outliers %v", result.Outliers)
	}
}

func TestRunUnknownMethod(t *testing.T) {
	finder := NewFinder(&Params{DataDir: t.TempDir(), Method: "guesswork"})
	if _, err := finder.Run(); err == nil {
		t.Error("Expected error for unknown method, got nil")
	}
}

func TestRunIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeConstantVolume(t, filepath.Join(dir, "volume.vol4"), 1)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatalf("Failed to write extra file: %v", err)
	}

	finder := NewFinder(&Params{
		DataDir: dir,
		Method:  config.MethodMeanSignal,
	})
	report, err := finder.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Results) != 1 || report.Results[0].File != "volume.vol4" {
		t.Errorf("Expected only volume.vol4 in results, got %+v", report.Results)
	}
}
