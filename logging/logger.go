// Package logging builds the slog logger used by every command: console
// output plus an optional append-only log file with the same records.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options describes logger construction parameters
type Options struct {
	Level    string
	Format   string    // "text" (default) or "json"
	FilePath string    // empty disables the log file
	Console  io.Writer // defaults to os.Stderr
}

// Logger wraps slog.Logger with the log file it may own
type Logger struct {
	*slog.Logger
	file *os.File
}

// New constructs a logger using the provided options
func New(opts Options) (*Logger, error) {
	level := ParseLevel(opts.Level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{}
	writer := console
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		f, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		l.file = f
		writer = io.MultiWriter(console, f)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime && len(groups) == 0 {
				attr.Value = slog.StringValue(attr.Value.Time().Format(time.DateTime))
			}
			return attr
		},
	}

	var handler slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "text":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		if l.file != nil {
			_ = l.file.Close()
		}
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	l.Logger = slog.New(handler)
	return l, nil
}

// WithRunID tags every record with a fresh run identifier
func (l *Logger) WithRunID() (*Logger, string) {
	id := uuid.NewString()
	return &Logger{Logger: l.Logger.With(slog.String("run_id", id)), file: l.file}, id
}

// Close closes the log file if one was opened
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel maps a level name to slog; unknown names fall back to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
