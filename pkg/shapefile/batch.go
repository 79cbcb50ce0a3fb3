package shapefile

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// BatchOptions controls GetShapefiles.
type BatchOptions struct {
	// Workers is the number of concurrent loads. Zero means runtime.NumCPU().
	Workers int

	// SkipErrors continues past failed sources. Their results are nil and
	// their errors are returned. When false, the first error cancels the rest.
	SkipErrors bool

	// Progress, if set, is called after each source completes.
	Progress func(done, total int)
}

// DefaultBatchOptions returns batch options with sensible defaults.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Workers:    runtime.NumCPU(),
		SkipErrors: false,
		Progress:   nil,
	}
}

// GetShapefiles resolves several sources with a worker pool.
//
// Results are returned in source order. Errors are wrapped with the source
// they belong to.
//
// Example:
//
//	results, errs := reader.GetShapefiles(ctx, sources, shapefile.DefaultOptions(), shapefile.BatchOptions{
//	    SkipErrors: true,
//	    Progress: func(done, total int) {
//	        fmt.Printf("\rLoading: %d/%d", done, total)
//	    },
//	})
func (r *Reader) GetShapefiles(ctx context.Context, sources []any, opts Options, batch BatchOptions) ([]*Result, []error) {
	results := make([]*Result, len(sources))
	if len(sources) == 0 {
		return results, nil
	}

	workers := batch.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(sources))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type loadResult struct {
		index  int
		result *Result
		err    error
	}

	jobs := make(chan int, len(sources))
	done := make(chan loadResult, len(sources))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				if err := ctx.Err(); err != nil {
					done <- loadResult{index: index, err: err}
					continue
				}
				res, err := r.GetShapefile(ctx, sources[index], opts)
				done <- loadResult{index: index, result: res, err: err}
			}
		}()
	}

	for i := range sources {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	var (
		errs     []error
		first    error
		finished int
	)
	for res := range done {
		finished++
		if batch.Progress != nil {
			batch.Progress(finished, len(sources))
		}

		if res.err != nil {
			err := fmt.Errorf("%s: %w", describe(sources[res.index]), res.err)
			if batch.SkipErrors {
				r.logger.Warn("source failed", "source", describe(sources[res.index]), "error", res.err)
				errs = append(errs, err)
				continue
			}
			if first == nil {
				first = err
				cancel()
			}
			continue
		}
		results[res.index] = res.result
	}

	if first != nil {
		return nil, []error{first}
	}
	return results, errs
}

func describe(source any) string {
	if s, ok := source.(string); ok {
		return s
	}
	return fmt.Sprintf("<%T>", source)
}
