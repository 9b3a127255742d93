package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/lepinkainen/webpconv/config"
	"github.com/lepinkainen/webpconv/types"
)

// OutputSuffix is appended to the input folder name to get the output folder
const OutputSuffix = "_webp"

// ConvertCmd converts every image below a folder into a sibling <folder>_webp folder
type ConvertCmd struct {
	InputFolder  string  `arg:"" name:"input_folder" help:"Folder to scan for images" type:"existingdir"`
	ImageQuality int     `name:"image-quality" help:"WebP quality (0-100)" default:"80"`
	Workers      int     `help:"Number of parallel workers (0 = number of CPUs)" default:"0"`
	LogFile      string  `name:"log-file" help:"Append log records to this file (default from config: logs/webpconv.log)" type:"path"`
	NoLogFile    bool    `name:"no-log-file" help:"Log to the console only"`
	TUI          bool    `name:"tui" help:"Show an interactive progress view"`
	Details      bool    `help:"Print a per-file result table"`
	Strict       bool    `help:"Exit with an error when any image fails to convert"`
	LaunchRate   float64 `name:"launch-rate" help:"Maximum encoder launches per second (0 = unlimited)" default:"0"`
	MetricsFile  string  `name:"metrics-file" help:"Write Prometheus textfile metrics to this path" type:"path"`
}

// Validate is called by kong after parsing
func (cmd *ConvertCmd) Validate() error {
	if err := config.ValidateQuality(cmd.ImageQuality); err != nil {
		return err
	}
	if cmd.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", cmd.Workers)
	}
	if cmd.LaunchRate < 0 {
		return fmt.Errorf("launch rate must be >= 0, got %g", cmd.LaunchRate)
	}
	return nil
}

// OutputFolder derives <absolute input folder>_webp
func (cmd *ConvertCmd) OutputFolder() (string, error) {
	abs, err := filepath.Abs(cmd.InputFolder)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", cmd.InputFolder, err)
	}
	return filepath.Clean(abs) + OutputSuffix, nil
}

func (cmd *ConvertCmd) Run(appCtx *types.AppContext) error {
	cfg, err := loadConfig(appCtx)
	if err != nil {
		return err
	}

	output, err := cmd.OutputFolder()
	if err != nil {
		return err
	}

	logFile := cfg.LogFile
	if cmd.LogFile != "" {
		logFile = cmd.LogFile
	}
	if cmd.NoLogFile {
		logFile = ""
	}

	return runConversion(appCtx, cfg, runOptions{
		Title:       "WebP Converter",
		InputDir:    cmd.InputFolder,
		OutputDir:   output,
		Quality:     cmd.ImageQuality,
		Workers:     cmd.Workers,
		LogFile:     logFile,
		LogSummary:  true,
		TUI:         cmd.TUI,
		Details:     cmd.Details,
		Strict:      cmd.Strict,
		LaunchRate:  cmd.LaunchRate,
		MetricsFile: cmd.MetricsFile,
	})
}
