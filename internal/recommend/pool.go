// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend

import (
	"context"
	"sync"
)

// runPool calls fn(i) for every i in [0, n) on up to workers goroutines.
// fn writes its result into a slot owned by i, so no merge step is needed.
// Remaining jobs are skipped after the first failure or cancellation; the
// error of the lowest failing index is returned.
func runPool(ctx context.Context, workers, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}

	errs := make([]error, n)
	jobs := make(chan int)
	stop := make(chan struct{})
	var stopOnce sync.Once
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
				} else {
					errs[i] = fn(i)
				}
				if errs[i] != nil {
					stopOnce.Do(func() { close(stop) })
				}
			}
		}()
	}

dispatch:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-stop:
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
