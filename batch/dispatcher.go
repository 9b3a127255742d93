// Package batch runs conversion tasks across a fixed pool of workers and
// summarises their results.
package batch

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/time/rate"

	"github.com/lepinkainen/webpconv/webp"
)

// Observer is notified as workers pick up and finish tasks. Calls arrive
// from worker goroutines concurrently.
type Observer interface {
	TaskStarted(workerID int, task webp.Task)
	TaskFinished(workerID int, result webp.Result)
}

// Dispatcher executes every task independently on a fixed-size worker pool
type Dispatcher struct {
	Workers    int          // <= 0 means runtime.NumCPU()
	Encoder    webp.Encoder // used for every non-WebP source
	LaunchRate float64      // max tasks started per second, 0 = unlimited
	Observer   Observer     // optional
}

type job struct {
	index int
	task  webp.Task
}

// WorkerCount returns the pool size Run will use
func (d *Dispatcher) WorkerCount() int {
	if d.Workers <= 0 {
		return runtime.NumCPU()
	}
	return d.Workers
}

// Run converts all tasks and blocks until every one has reported. Results are
// returned in task order regardless of completion order; a failing task never
// stops the others.
func (d *Dispatcher) Run(ctx context.Context, tasks []webp.Task) []webp.Result {
	results := make([]webp.Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	workers := d.WorkerCount()
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var limiter *rate.Limiter
	if d.LaunchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.LaunchRate), 1)
	}

	jobs := make(chan job, len(tasks))
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = d.process(ctx, workerID, limiter, j.task)
			}
		}(i)
	}

	// Send jobs
	for i, task := range tasks {
		jobs <- job{index: i, task: task}
	}
	close(jobs)

	wg.Wait()
	return results
}

func (d *Dispatcher) process(ctx context.Context, workerID int, limiter *rate.Limiter, task webp.Task) webp.Result {
	if d.Observer != nil {
		d.Observer.TaskStarted(workerID, task)
	}

	var result webp.Result
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			result = webp.Result{Task: task, Outcome: webp.Failure, Err: err}
		}
	}
	if result.Err == nil {
		result = webp.ConvertFile(ctx, d.Encoder, task)
	}

	if d.Observer != nil {
		d.Observer.TaskFinished(workerID, result)
	}
	return result
}

// Observers fans notifications out to several observers in order
type Observers []Observer

func (o Observers) TaskStarted(workerID int, task webp.Task) {
	for _, obs := range o {
		obs.TaskStarted(workerID, task)
	}
}

func (o Observers) TaskFinished(workerID int, result webp.Result) {
	for _, obs := range o {
		obs.TaskFinished(workerID, result)
	}
}
