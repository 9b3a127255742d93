package batch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lepinkainen/webpconv/webp"
)

// ErrFailures is returned by callers that want a non-zero exit when any task failed
var ErrFailures = errors.New("one or more images failed to convert")

// Summary is the aggregate view of a finished batch
type Summary struct {
	Total  int
	Copied int
	Failed []string // failing source paths, in task order
}

// Summarize builds a summary from the full result list
func Summarize(results []webp.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if !r.Succeeded() {
			s.Failed = append(s.Failed, r.Task.Source)
			continue
		}
		if r.Copied {
			s.Copied++
		}
	}
	return s
}

// Succeeded is the number of tasks that did not fail
func (s Summary) Succeeded() int {
	return s.Total - len(s.Failed)
}

// WriteText prints the human readable report
func (s Summary) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Converted %d image(s) to WebP format.\n", s.Succeeded()); err != nil {
		return err
	}
	if len(s.Failed) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Failed to convert %d image(s):\n", len(s.Failed)); err != nil {
		return err
	}
	for _, path := range s.Failed {
		if _, err := fmt.Fprintf(w, "- %s\n", path); err != nil {
			return err
		}
	}
	return nil
}

// Log emits the report through the structured logger
func (s Summary) Log(logger *slog.Logger) {
	logger.Info(fmt.Sprintf("Converted %d image(s) to WebP format.", s.Succeeded()),
		slog.Int("total", s.Total),
		slog.Int("copied", s.Copied),
		slog.Int("failed", len(s.Failed)),
	)
	if len(s.Failed) == 0 {
		return
	}
	logger.Error(fmt.Sprintf("Failed to convert %d image(s):", len(s.Failed)))
	for _, path := range s.Failed {
		logger.Error("- "+path, slog.String("source", path))
	}
}

// RenderDetails renders a per-file table of results
func RenderDetails(results []webp.Result) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Source", "Destination", "Outcome", "Size", "Time", "Reason"})

	for _, r := range results {
		outcome := r.Outcome.String()
		if r.Copied && r.Succeeded() {
			outcome = "copied"
		}

		size := ""
		if r.Succeeded() {
			size = humanize.Bytes(uint64(r.OutputSize))
		}

		reason := ""
		if r.Err != nil {
			reason = firstLine(r.Err.Error())
		}

		tw.AppendRow(table.Row{
			r.Task.Source,
			r.Task.Destination,
			outcome,
			size,
			r.Duration.Round(time.Millisecond).String(),
			reason,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
