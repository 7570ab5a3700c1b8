// Package workpool runs independent jobs on a bounded set of goroutines.
package workpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Result pairs a job with its outcome.
type Result[T, R any] struct {
	Job   T
	Value R
	Err   error
}

// DefaultWorkers is the pool size used when none is configured.
func DefaultWorkers() int { return runtime.NumCPU() }

// Run executes fn once per job on at most workers goroutines and waits for
// all of them. Results arrive in completion order. A failing or panicking job
// is recorded in its Result and never stops its siblings.
func Run[T, R any](ctx context.Context, workers int, jobs []T, fn func(context.Context, T) (R, error)) []Result[T, R] {
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan T)
	results := make(chan Result[T, R], len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				results <- runOne(ctx, job, fn)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			queue <- job
		}
		close(queue)
		wg.Wait()
		close(results)
	}()

	out := make([]Result[T, R], 0, len(jobs))
	for r := range results {
		out = append(out, r)
	}
	return out
}

func runOne[T, R any](ctx context.Context, job T, fn func(context.Context, T) (R, error)) (res Result[T, R]) {
	res.Job = job
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	res.Value, res.Err = fn(ctx, job)
	return res
}
