// Package config provides configuration loading and management for dvarsfind.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Detection method names accepted in configuration and on the command line.
const (
	MethodDVARS      = "dvars"
	MethodMeanSignal = "meansignal"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Detection parameters
	Detection struct {
		// Method selects the outlier test: "dvars" for the fitted chi-squared
		// hypothesis test or "meansignal" for the IQR fence on the volume
		// mean time course
		Method string `yaml:"method"`

		// Alpha is the significance threshold for the DVARS test
		Alpha float64 `yaml:"alpha"`

		// SkewOrder is the order of the skew-correction transform applied to
		// the null variance (0 disables the correction)
		SkewOrder float64 `yaml:"skewOrder"`

		// Center chooses the global intensity scale statistic: "mean" or "median"
		Center string `yaml:"center"`

		// FenceMultiplier is the IQR fence factor for the meansignal method
		FenceMultiplier float64 `yaml:"fenceMultiplier"`
	} `yaml:"detection"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for the per-voxel
		// estimation
		NumCores int `yaml:"numCores"`

		// FileExtension is the volume file extension scanned for in the data
		// directory
		FileExtension string `yaml:"fileExtension"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// ReportFile, when set, is where the JSON report is written
		ReportFile string `yaml:"reportFile"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default detection parameters
	cfg.Detection.Method = MethodDVARS
	cfg.Detection.Alpha = 0.05
	cfg.Detection.SkewOrder = 3
	cfg.Detection.Center = "mean"
	cfg.Detection.FenceMultiplier = 1.5

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.FileExtension = ".vol4"

	// Set default output parameters
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
