package filter

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/organarr/organarr/organize"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates filters against item lists, splitting
// large lists across goroutines.
type ConcurrentEvaluator struct {
	workers   int
	batchSize int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the items the filter accepts, in input order.
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, items []organize.Item) ([]organize.Item, error) {
	if len(items) == 0 {
		return []organize.Item{}, nil
	}

	// Small lists are not worth the goroutine overhead
	if len(items) < e.batchSize {
		return evaluateChunk(filter, items)
	}

	return e.evaluateConcurrent(ctx, filter, items)
}

// EvaluateBatch evaluates multiple named filters against the same items
// concurrently. A filter that fails to evaluate is dropped from the result
// instead of failing the whole batch.
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, items []organize.Item) (map[string][]organize.Item, error) {
	results := make(map[string][]organize.Item, len(filters))
	if len(filters) == 0 || len(items) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	var mu sync.Mutex
	for name, filter := range filters {
		name, filter := name, filter
		g.Go(func() error {
			matches, err := e.Evaluate(ctx, filter, items)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Skip filters that error
				return nil
			}

			mu.Lock()
			results[name] = matches
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// evaluateConcurrent splits items into chunks, filters them in parallel and
// reassembles the matches in input order.
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, items []organize.Item) ([]organize.Item, error) {
	chunkSize := max(len(items)/e.workers, e.batchSize)
	chunks := (len(items) + chunkSize - 1) / chunkSize

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	// Each chunk writes only its own slot; Wait orders the reads.
	results := make([][]organize.Item, chunks)
	for c := 0; c < chunks; c++ {
		start := c * chunkSize
		end := min(start+chunkSize, len(items))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			matches, err := evaluateChunk(filter, items[start:end])
			if err != nil {
				return err
			}
			results[c] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]organize.Item, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}

	return all, nil
}

// evaluateChunk filters one slice of items, stopping at the first
// evaluation error.
func evaluateChunk(filter CompiledFilter, items []organize.Item) ([]organize.Item, error) {
	matches := make([]organize.Item, 0, len(items)/4)
	for _, item := range items {
		ok, err := filter.Evaluate(item)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, item)
		}
	}
	return matches, nil
}
