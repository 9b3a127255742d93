package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/webpconv/webp"
)

// FileLogEntry is one finished file in the processed list
type FileLogEntry struct {
	Source      string
	Destination string
	Copied      bool
	Error       string
}

func (f FileLogEntry) FilterValue() string { return f.Source }
func (f FileLogEntry) Title() string       { return f.Source }
func (f FileLogEntry) Description() string {
	if f.Error != "" {
		return fmt.Sprintf("❌ %s", f.Error)
	}
	if f.Copied {
		return fmt.Sprintf("✓ copied → %s", filepath.Base(f.Destination))
	}
	return fmt.Sprintf("✓ → %s", filepath.Base(f.Destination))
}

// WorkerState tracks what one pool worker is doing
type WorkerState struct {
	ID          int
	CurrentFile string
	Status      string // "idle", "converting", "done"
	Completed   int
}

// BatchModel is the bubbletea model for a running conversion batch
type BatchModel struct {
	totalFiles int
	completed  int
	failed     int
	workers    []*WorkerState
	entries    []FileLogEntry

	overallProgress progress.Model
	fileList        list.Model

	width  int
	height int

	done     bool
	quitting bool

	Version string
}

// NewBatchModel creates a model for numFiles tasks over numWorkers workers
func NewBatchModel(numFiles, numWorkers int, version string) BatchModel {
	workers := make([]*WorkerState, numWorkers)
	for i := range workers {
		workers[i] = &WorkerState{ID: i, Status: "idle"}
	}

	fileList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	fileList.Title = "Processed Files"

	return BatchModel{
		totalFiles:      numFiles,
		workers:         workers,
		overallProgress: progress.New(progress.WithDefaultGradient()),
		fileList:        fileList,
		Version:         version,
	}
}

// Init implements tea.Model
func (m BatchModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Only the display goes away, the batch keeps running
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fileList.SetSize(msg.Width-4, msg.Height/3)
		m.overallProgress.Width = max(10, msg.Width-30)

	case WorkerStartedMsg:
		if w := m.worker(msg.WorkerID); w != nil {
			w.CurrentFile = msg.Source
			w.Status = "converting"
		}

	case WorkerCompletedMsg:
		if w := m.worker(msg.WorkerID); w != nil {
			w.CurrentFile = ""
			w.Status = "idle"
			w.Completed++
		}

		m.completed++
		entry := FileLogEntry{
			Source:      msg.Result.Task.Source,
			Destination: msg.Result.Task.Destination,
			Copied:      msg.Result.Copied,
		}
		if !msg.Result.Succeeded() {
			m.failed++
			entry.Error = "conversion failed"
			if msg.Result.Err != nil {
				entry.Error = msg.Result.Err.Error()
			}
		}
		m.entries = append(m.entries, entry)

		items := make([]list.Item, len(m.entries))
		for i, e := range m.entries {
			items[i] = e
		}
		cmd := m.fileList.SetItems(items)
		return m, cmd

	case BatchDoneMsg:
		m.done = true
		for _, w := range m.workers {
			w.Status = "done"
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m BatchModel) worker(id int) *WorkerState {
	if id < 0 || id >= len(m.workers) {
		return nil
	}
	return m.workers[id]
}

// Completed returns how many tasks have reported
func (m BatchModel) Completed() int { return m.completed }

// Failed returns how many reported tasks failed
func (m BatchModel) Failed() int { return m.failed }

// Done reports whether the batch finished
func (m BatchModel) Done() bool { return m.done }

// View implements tea.Model
func (m BatchModel) View() string {
	if m.quitting {
		return "Hiding progress, conversion continues...\n"
	}

	header := HeaderStyle.Render(fmt.Sprintf("WebP Converter %s", m.Version))

	overallPercent := 0.0
	if m.totalFiles > 0 {
		overallPercent = float64(m.completed) / float64(m.totalFiles)
	}
	overallView := fmt.Sprintf("Overall Progress: %s (%d/%d, %d failed)",
		m.overallProgress.ViewAs(overallPercent),
		m.completed,
		m.totalFiles,
		m.failed)

	workerViews := []string{"Worker Status:"}
	for _, w := range m.workers {
		status := fmt.Sprintf("Worker %d: ", w.ID+1)
		if w.Status == "converting" {
			status += ProcessingStyle.Render(w.Status) + " " + w.CurrentFile
		} else {
			status += MutedStyle.Render(fmt.Sprintf("%-10s (%d done)", w.Status, w.Completed))
		}
		workerViews = append(workerViews, status)
	}

	sections := []string{
		header,
		overallView,
		strings.Join(workerViews, "\n"),
		m.fileList.View(),
		"Controls: [q] Hide progress",
	}

	return strings.Join(sections, "\n\n")
}

// ProgramObserver forwards dispatcher events to a running tea.Program
type ProgramObserver struct {
	Program *tea.Program
}

// TaskStarted implements batch.Observer
func (o ProgramObserver) TaskStarted(workerID int, task webp.Task) {
	o.Program.Send(WorkerStartedMsg{WorkerID: workerID, Source: task.Source})
}

// TaskFinished implements batch.Observer
func (o ProgramObserver) TaskFinished(workerID int, result webp.Result) {
	o.Program.Send(WorkerCompletedMsg{WorkerID: workerID, Result: result})
}
