package cmd

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/lepinkainen/webpconv/webp"
)

// progressObserver advances a terminal progress bar as tasks finish
type progressObserver struct {
	bar *progressbar.ProgressBar
}

func newProgressObserver(total int, w io.Writer) *progressObserver {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
	return &progressObserver{bar: bar}
}

func (p *progressObserver) TaskStarted(int, webp.Task) {}

func (p *progressObserver) TaskFinished(int, webp.Result) {
	_ = p.bar.Add(1)
}

func (p *progressObserver) Finish() {
	_ = p.bar.Finish()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pausableWriter drops writes while paused
type pausableWriter struct {
	mu     sync.Mutex
	w      io.Writer
	paused bool
}

func (p *pausableWriter) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return len(b), nil
	}
	return p.w.Write(b)
}

func (p *pausableWriter) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

func (p *pausableWriter) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}
