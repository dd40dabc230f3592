package treeinv

import (
	"context"
	"sync"

	"github.com/arjunmahishi/treeinv/parser"
	"github.com/arjunmahishi/treeinv/scanner"
)

// processFunc handles one file with the worker's own parser pool. ok=false drops
// the result.
type processFunc[R any] func(pool *parser.Pool, job scanner.FileJob) (result R, ok bool)

// runWorkers fans files out to jobs workers and collects their results in
// completion order. Each worker owns its parsers, since tree-sitter parsers are
// not safe for concurrent use. Cancellation is checked between files.
func runWorkers[R any](ctx context.Context, files []scanner.FileJob, jobs int, process processFunc[R]) []R {
	results := make(chan R, 128)
	jobQueue := make(chan scanner.FileJob, 128)
	var wg sync.WaitGroup

	workerCount := jobs
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	worker := func() {
		defer wg.Done()
		pool := parser.NewPool()
		for job := range jobQueue {
			if ctx.Err() != nil {
				continue
			}
			if r, ok := process(pool, job); ok {
				results <- r
			}
		}
	}

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go worker()
	}

	go func() {
		defer close(jobQueue)
		for _, f := range files {
			select {
			case jobQueue <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []R
	for r := range results {
		all = append(all, r)
	}
	return all
}
