package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/goccy/go-json"

	"dvarsfind/pkg/config"
	"dvarsfind/pkg/outfind"
	"dvarsfind/pkg/validate"
)

func main() {
	// Parse command line arguments
	dataDir := flag.String("data", "", "Directory containing 4D volume files")
	configPath := flag.String("config", "dvarsfind.yaml", "Path to YAML configuration file")
	method := flag.String("method", "", "Detection method: dvars or meansignal (overrides config)")
	alpha := flag.Float64("alpha", 0, "Significance threshold for the DVARS test (overrides config)")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: all available)")
	checkHashes := flag.Bool("validate", false, "Validate data hashes against hash_list.txt before testing")
	reportPath := flag.String("json", "", "Write a JSON report to this path (overrides config)")
	flag.Parse()

	// Validate inputs
	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line flags take precedence over the config file
	if *method != "" {
		cfg.Detection.Method = *method
	}
	if *alpha > 0 {
		cfg.Detection.Alpha = *alpha
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *reportPath != "" {
		cfg.Output.ReportFile = *reportPath
	}
	if cfg.Processing.NumCores <= 0 {
		cfg.Processing.NumCores = runtime.NumCPU()
	}

	// Check data integrity before loading anything
	if *checkHashes {
		fmt.Println("Validating data hashes...")
		if err := validate.ValidateData(*dataDir); err != nil {
			log.Fatalf("Data validation failed: %v", err)
		}
		fmt.Println("All hashes match.")
	}

	params := &outfind.Params{
		DataDir:         *dataDir,
		FileExtension:   cfg.Processing.FileExtension,
		Method:          cfg.Detection.Method,
		Alpha:           cfg.Detection.Alpha,
		SkewOrder:       cfg.Detection.SkewOrder,
		Center:          cfg.Detection.Center,
		FenceMultiplier: cfg.Detection.FenceMultiplier,
		NumCores:        cfg.Processing.NumCores,
		Verbose:         cfg.Output.Verbose,
	}

	finder := outfind.NewFinder(params)
	report, err := finder.Run()
	if err != nil {
		log.Fatalf("Outlier detection failed: %v", err)
	}

	// Print per-file results
	failures := 0
	for _, result := range report.Results {
		if result.Error != "" {
			failures++
			fmt.Printf("%s: ERROR: %s\n", result.File, result.Error)
			continue
		}
		fmt.Printf("%s: %v\n", result.File, result.Outliers)
	}
	fmt.Printf("\nTested %d files with method %q (%d failed)\n",
		len(report.Results), report.Method, failures)

	// Write the machine-readable report if requested
	if cfg.Output.ReportFile != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		if err := os.WriteFile(cfg.Output.ReportFile, data, 0644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Printf("Report written to %s\n", cfg.Output.ReportFile)
	}
}
