package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/webpconv/batch"
	"github.com/lepinkainen/webpconv/config"
	"github.com/lepinkainen/webpconv/logging"
	"github.com/lepinkainen/webpconv/types"
	"github.com/lepinkainen/webpconv/ui"
	"github.com/lepinkainen/webpconv/utils"
	"github.com/lepinkainen/webpconv/webp"
)

// Swappable in tests
var (
	stdout          io.Writer = os.Stdout
	stderr          io.Writer = os.Stderr
	resolveEncoder            = utils.ResolveEncoder
	newEncoder                = newEncoderForPath
	stderrIsTTY               = func() bool { return isTerminal(os.Stderr) }
	newProgram                = func(m tea.Model) *tea.Program {
		return tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	}
)

// newEncoderForPath wraps the resolved cwebp binary. An empty path still
// yields an encoder, one that fails every call.
func newEncoderForPath(path string) webp.Encoder {
	return webp.CWebP{Path: path}
}

// runOptions is everything a conversion run needs after flag parsing
type runOptions struct {
	Title             string
	InputDir          string
	OutputDir         string
	Quality           int
	Workers           int
	LogFile           string // empty keeps logging on the console only
	LogSummary        bool   // report through the logger instead of stdout
	AllowMissingInput bool
	TUI               bool
	Details           bool
	Strict            bool
	LaunchRate        float64
	MetricsFile       string
}

// loadConfig reads the config file named in the app context
func loadConfig(appCtx *types.AppContext) (*config.Config, error) {
	cfg, err := config.Load(appCtx.ConfigPathOrEmpty())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// runConversion is the discovery -> dispatch -> report pipeline shared by convert and batch
func runConversion(appCtx *types.AppContext, cfg *config.Config, opts runOptions) error {
	version := appCtx.VersionOrDefault()
	ctx := context.Background()

	if opts.Workers <= 0 {
		opts.Workers = cfg.Workers
	}
	if opts.LaunchRate <= 0 {
		opts.LaunchRate = cfg.LaunchRate
	}
	if opts.MetricsFile == "" {
		opts.MetricsFile = cfg.MetricsFile
	}

	useTUI := opts.TUI && stderrIsTTY()

	// Console records are held back while the TUI owns the terminal
	console := &pausableWriter{w: stderr}
	base, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		FilePath: opts.LogFile,
		Console:  console,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer base.Close()
	logger, _ := base.WithRunID()

	fmt.Fprintln(stdout, ui.HeaderStyle.Render(fmt.Sprintf("%s %s", opts.Title, version)))

	encoderPath, err := resolveEncoder(cfg.EncoderPath)
	if err != nil {
		// Not fatal: WebP sources can still be copied, everything else fails per file
		logger.Warn("encoder unavailable, non-WebP images will fail", slog.String("error", err.Error()))
	}

	files, err := webp.FindImageFilesRecursively(opts.InputDir, cfg.Extensions)
	if err != nil {
		if !(opts.AllowMissingInput && errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("failed to scan %s: %w", opts.InputDir, err)
		}
		logger.Warn("input folder does not exist", slog.String("input", opts.InputDir))
		files = nil
	}

	tasks := webp.BuildTasks(files, opts.OutputDir, opts.Quality)
	collisions := webp.FindCollisions(tasks)
	dests := make([]string, 0, len(collisions))
	for dest := range collisions {
		dests = append(dests, dest)
	}
	sort.Strings(dests)
	for _, dest := range dests {
		sources := collisions[dest]
		logger.Warn("several images map to the same output, the last one written wins",
			slog.String("destination", dest), slog.Any("sources", sources))
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder %s: %w", opts.OutputDir, err)
	}

	lock, err := batch.LockOutput(opts.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release output lock", slog.String("error", err.Error()))
		}
	}()

	dispatcher := &batch.Dispatcher{
		Workers:    opts.Workers,
		Encoder:    newEncoder(encoderPath),
		LaunchRate: opts.LaunchRate,
	}
	workers := dispatcher.WorkerCount()

	logger.Info("starting conversion",
		slog.String("input", opts.InputDir),
		slog.String("output", opts.OutputDir),
		slog.Int("images", len(tasks)),
		slog.Int("quality", opts.Quality),
		slog.Int("workers", workers),
		slog.String("encoder", encoderPath),
	)

	observers := batch.Observers{logObserver{logger: logger.Logger}}

	var metrics *batch.Metrics
	if opts.MetricsFile != "" {
		metrics = batch.NewMetrics()
		observers = append(observers, metrics)
	}

	var bar *progressObserver
	var program *tea.Program
	var programDone chan struct{}
	switch {
	case useTUI && len(tasks) > 0:
		program = newProgram(ui.NewBatchModel(len(tasks), min(workers, len(tasks)), version))
		programDone = make(chan struct{})
		console.Pause()
		go func() {
			defer close(programDone)
			if _, err := program.Run(); err != nil {
				logger.Warn("progress view stopped", slog.String("error", err.Error()))
			}
		}()
		observers = append(observers, ui.ProgramObserver{Program: program})
	case stderrIsTTY() && len(tasks) > 0:
		bar = newProgressObserver(len(tasks), stderr)
		observers = append(observers, bar)
	}
	dispatcher.Observer = observers

	start := time.Now()
	results := dispatcher.Run(ctx, tasks)

	if program != nil {
		program.Send(ui.BatchDoneMsg{})
		<-programDone
		console.Resume()
	}
	if bar != nil {
		bar.Finish()
	}

	summary := batch.Summarize(results)
	if opts.LogSummary {
		summary.Log(logger.Logger)
	} else if err := summary.WriteText(stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.Details && len(results) > 0 {
		fmt.Fprintln(stdout, batch.RenderDetails(results))
	}

	logger.Debug("batch finished", slog.Duration("elapsed", time.Since(start)))

	if metrics != nil {
		metrics.Finish(time.Now())
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Warn("failed to write metrics", slog.String("path", opts.MetricsFile), slog.String("error", err.Error()))
		}
	}

	if opts.Strict && len(summary.Failed) > 0 {
		return fmt.Errorf("%w: %d of %d", batch.ErrFailures, len(summary.Failed), summary.Total)
	}
	return nil
}

// logObserver writes one record per finished file
type logObserver struct {
	logger *slog.Logger
}

func (o logObserver) TaskStarted(workerID int, task webp.Task) {
	o.logger.Debug("converting", slog.String("source", task.Source), slog.Int("worker", workerID+1))
}

func (o logObserver) TaskFinished(workerID int, r webp.Result) {
	if r.Succeeded() {
		o.logger.Debug("converted",
			slog.String("source", r.Task.Source),
			slog.String("destination", r.Task.Destination),
			slog.Bool("copied", r.Copied),
			slog.Duration("took", r.Duration),
		)
		return
	}
	errText := "unknown error"
	if r.Err != nil {
		errText = r.Err.Error()
	}
	o.logger.Warn("conversion failed", slog.String("source", r.Task.Source), slog.String("error", errText))
}
