package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/webpconv/config"
	"github.com/lepinkainen/webpconv/types"
)

// Fixed folders used by the batch command, relative to the working directory
const (
	BatchInputDir  = "./input_files"
	BatchOutputDir = "output_files"
)

// BatchCmd converts ./input_files into ./output_files and prints the report
type BatchCmd struct {
	Quality string `arg:"" optional:"" help:"WebP quality (0-100)" default:"80"`
	Workers int    `help:"Number of parallel workers (0 = number of CPUs)" default:"0"`
	Details bool   `help:"Print a per-file result table"`
	Strict  bool   `help:"Exit with an error when any image fails to convert"`
}

// QualityValue parses the quality argument
func (cmd *BatchCmd) QualityValue() (int, error) {
	raw := strings.TrimSpace(cmd.Quality)
	if raw == "" {
		return config.DefaultQuality, nil
	}
	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("quality must be an integer, got %q", cmd.Quality)
	}
	if err := config.ValidateQuality(q); err != nil {
		return 0, err
	}
	return q, nil
}

// Validate is called by kong after parsing
func (cmd *BatchCmd) Validate() error {
	if _, err := cmd.QualityValue(); err != nil {
		return err
	}
	if cmd.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", cmd.Workers)
	}
	return nil
}

func (cmd *BatchCmd) Run(appCtx *types.AppContext) error {
	quality, err := cmd.QualityValue()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(appCtx)
	if err != nil {
		return err
	}

	return runConversion(appCtx, cfg, runOptions{
		Title:             "WebP Batch Converter",
		InputDir:          BatchInputDir,
		OutputDir:         BatchOutputDir,
		Quality:           quality,
		Workers:           cmd.Workers,
		AllowMissingInput: true,
		Details:           cmd.Details,
		Strict:            cmd.Strict,
	})
}
