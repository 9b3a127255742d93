package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/webpconv/types"
	"github.com/lepinkainen/webpconv/ui"
	"github.com/lepinkainen/webpconv/webp"
)

// VerifyCmd checks converted files against their sources using perceptual hashes.
// Lossy encoding changes bytes but should keep the picture, so a small Hamming
// distance still counts as a match.
type VerifyCmd struct {
	InputFolder string `arg:"" name:"input_folder" help:"Folder holding the source images" type:"existingdir"`
	Output      string `help:"Folder holding the converted images (default: <input_folder>_webp)" type:"path"`
	Threshold   int    `help:"Hamming distance threshold for similarity (0-64)" default:"10"`
	Workers     int    `help:"Number of parallel workers (0 = number of CPUs)" default:"0"`
}

// Validate is called by kong after parsing
func (cmd *VerifyCmd) Validate() error {
	if cmd.Threshold < 0 || cmd.Threshold > 64 {
		return fmt.Errorf("threshold must be between 0 and 64, got %d", cmd.Threshold)
	}
	if cmd.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", cmd.Workers)
	}
	return nil
}

type verifyResult struct {
	task     webp.Task
	distance int
	missing  bool
	err      error
}

func (cmd *VerifyCmd) Run(appCtx *types.AppContext) error {
	cfg, err := loadConfig(appCtx)
	if err != nil {
		return err
	}

	output := cmd.Output
	if output == "" {
		conv := ConvertCmd{InputFolder: cmd.InputFolder}
		if output, err = conv.OutputFolder(); err != nil {
			return err
		}
	}

	files, err := webp.FindImageFilesRecursively(cmd.InputFolder, cfg.Extensions)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", cmd.InputFolder, err)
	}
	tasks := webp.BuildTasks(files, output, 0)

	fmt.Fprintf(stdout, "%s\n", ui.InfoStyle.Render(fmt.Sprintf("Verifying %d files against %s...", len(tasks), output)))

	results := cmd.compareAll(tasks)

	var verified, failed, missing int
	for _, r := range results {
		switch {
		case r.missing:
			fmt.Fprintf(stdout, "⚠️  %s has no converted output\n", r.task.Source)
			missing++
		case r.err != nil:
			fmt.Fprintf(stdout, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("❌ Error comparing %s: %v", r.task.Source, r.err)))
			failed++
		case r.distance > cmd.Threshold:
			fmt.Fprintf(stdout, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("❌ %s (distance %d)", r.task.Source, r.distance)))
			failed++
		default:
			fmt.Fprintf(stdout, "%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ %s", r.task.Source)))
			verified++
		}
	}

	fmt.Fprintf(stdout, "\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("✅ Verified: %d, ❌ Failed: %d, ⚠️  Missing: %d", verified, failed, missing)))
	return nil
}

// compareAll hashes source/destination pairs in parallel, keeping task order
func (cmd *VerifyCmd) compareAll(tasks []webp.Task) []verifyResult {
	results := make([]verifyResult, len(tasks))

	limit := cmd.Workers
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			results[i] = compareTask(task)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func compareTask(task webp.Task) verifyResult {
	r := verifyResult{task: task}
	if _, err := os.Stat(task.Destination); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.missing = true
			return r
		}
		r.err = err
		return r
	}
	r.distance, r.err = webp.CompareImages(task.Source, task.Destination)
	return r
}
