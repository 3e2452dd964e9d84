package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Detection.Method != MethodDVARS {
		t.Errorf("Default method = %q, want %q", cfg.Detection.Method, MethodDVARS)
	}
	if cfg.Detection.Alpha != 0.05 {
		t.Errorf("Default alpha = %f, want 0.05", cfg.Detection.Alpha)
	}
	if cfg.Detection.SkewOrder != 3 {
		t.Errorf("Default skew order = %f, want 3", cfg.Detection.SkewOrder)
	}
	if cfg.Detection.FenceMultiplier != 1.5 {
		t.Errorf("Default fence multiplier = %f, want 1.5", cfg.Detection.FenceMultiplier)
	}
	if cfg.Processing.NumCores <= 0 {
		t.Errorf("Default core count = %d, want positive", cfg.Processing.NumCores)
	}
	if cfg.Processing.FileExtension != ".vol4" {
		t.Errorf("Default extension = %q, want .vol4", cfg.Processing.FileExtension)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed for missing file: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Detection.Method != defaults.Detection.Method ||
		cfg.Detection.Alpha != defaults.Detection.Alpha {
		t.Error("Missing config file did not fall back to defaults")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Detection.Method = MethodMeanSignal
	cfg.Detection.Alpha = 0.01
	cfg.Detection.Center = "median"
	cfg.Processing.NumCores = 2
	cfg.Output.ReportFile = "report.json"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Detection.Method != MethodMeanSignal {
		t.Errorf("Method = %q, want %q", loaded.Detection.Method, MethodMeanSignal)
	}
	if loaded.Detection.Alpha != 0.01 {
		t.Errorf("Alpha = %f, want 0.01", loaded.Detection.Alpha)
	}
	if loaded.Detection.Center != "median" {
		t.Errorf("Center = %q, want median", loaded.Detection.Center)
	}
	if loaded.Processing.NumCores != 2 {
		t.Errorf("NumCores = %d, want 2", loaded.Processing.NumCores)
	}
	if loaded.Output.ReportFile != "report.json" {
		t.Errorf("ReportFile = %q, want report.json", loaded.Output.ReportFile)
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Detection.Method != MethodDVARS {
		t.Errorf("Method = %q, want %q", loaded.Detection.Method, MethodDVARS)
	}
}
