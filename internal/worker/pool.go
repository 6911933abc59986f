// Package worker fetches static map images in parallel.
package worker

import (
	"context"
	"sync"
	"time"
)

// Fetcher downloads one image. *mapbox.Client satisfies it.
type Fetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Task is a single image to fetch.
type Task struct {
	Name string
	URL  string
}

// Result is the outcome of a Task.
type Result struct {
	Task    Task
	Data    []byte
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Fetcher    Fetcher
	OnProgress ProgressFunc
	// OnResult, when set, receives every result from the collecting goroutine
	// as soon as it is available.
	OnResult func(Result)
}

// Pool manages parallel image fetching.
type Pool struct {
	workers    int
	fetcher    Fetcher
	onProgress ProgressFunc
	onResult   func(Result)
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		fetcher:    cfg.Fetcher,
		onProgress: cfg.OnProgress,
		onResult:   cfg.OnResult,
	}
}

// Run fetches all tasks and returns their results in completion order.
// It blocks until every task has a result. Tasks not started before ctx is
// cancelled get ctx.Err() as their error.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task)
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		defer close(taskCh)
		for i, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				for _, skipped := range tasks[i:] {
					resultCh <- Result{Task: skipped, Err: ctx.Err()}
				}
				return
			}
		}
	}()

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		var failed int
		for result := range resultCh {
			results = append(results, result)
			if result.Err != nil {
				failed++
			}
			if p.onResult != nil {
				p.onResult(result)
			}
			if p.onProgress != nil {
				p.onProgress(len(results), len(tasks), failed)
			}
		}
		close(done)
	}()

	// Workers exit only after the feeder closed taskCh, so every skipped
	// task has been reported once they are done.
	wg.Wait()
	close(resultCh)
	<-done

	return results
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		if err := ctx.Err(); err != nil {
			results <- Result{Task: task, Err: err}
			continue
		}

		start := time.Now()
		data, err := p.fetcher.FetchImage(ctx, task.URL)
		results <- Result{
			Task:    task,
			Data:    data,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
