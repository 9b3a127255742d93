package webp

import (
	"path/filepath"
	"strings"
	"time"
)

// TargetExt is the extension every converted file is written with
const TargetExt = ".webp"

// Task describes one source image and where its WebP output goes
type Task struct {
	Source      string
	Destination string
	Quality     int // 0-100, passed straight to the encoder
}

// NewTask builds a task whose destination is derived from the source name
func NewTask(source, outputDir string, quality int) Task {
	return Task{
		Source:      source,
		Destination: DestinationPath(outputDir, source),
		Quality:     quality,
	}
}

// DestinationPath returns outputDir/<base name without extension>.webp
func DestinationPath(outputDir, source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+TargetExt)
}

// BuildTasks turns discovered files into tasks, keeping discovery order
func BuildTasks(files []string, outputDir string, quality int) []Task {
	tasks := make([]Task, 0, len(files))
	for _, f := range files {
		tasks = append(tasks, NewTask(f, outputDir, quality))
	}
	return tasks
}

// Outcome classifies a finished task
type Outcome int

const (
	Failure Outcome = iota
	Success
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Result holds what happened to a single task
type Result struct {
	Task       Task
	Outcome    Outcome
	Err        error // reason for a Failure, nil on Success
	Copied     bool  // source was already WebP and was copied verbatim
	OutputSize int64
	Duration   time.Duration
}

// Succeeded reports whether the task produced its destination file
func (r Result) Succeeded() bool {
	return r.Outcome == Success
}
