package pool

import (
	"context"
	"sync"
)

// WorkerFunc processes one item and may return an error.
type WorkerFunc[T any] func(ctx context.Context, item T) error

// Run processes items with numWorkers goroutines (at least one). It returns
// the non-nil errors in the order of the items that produced them. Items not
// yet started when ctx is cancelled are skipped.
func Run[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T]) []error {
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	indexes := make(chan int, numWorkers)
	errs := make([]error, len(items))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if ctx.Err() != nil {
					return
				}
				errs[idx] = workerFunc(ctx, items[idx])
			}
		}()
	}

OUT:
	for i := range items {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break OUT
		}
	}
	close(indexes)
	wg.Wait()

	var allErrors []error
	for _, err := range errs {
		if err != nil {
			allErrors = append(allErrors, err)
		}
	}
	return allErrors
}
