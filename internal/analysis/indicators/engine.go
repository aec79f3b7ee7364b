// Package indicators provides technical indicator calculations with parallel processing.
package indicators

import (
	"context"
	"sync"

	"finterm/internal/models"
)

// Indicator defines the interface for single-value technical indicators.
type Indicator interface {
	Name() string
	Calculate(candles []models.Candle) ([]float64, error)
	Period() int
}

// MultiValueIndicator defines the interface for indicators that return multiple values.
type MultiValueIndicator interface {
	Name() string
	Calculate(candles []models.Candle) (map[string][]float64, error)
	Period() int
}

// Engine computes batches of indicators over one candle history using a
// worker pool. A batch is typically the same indicator instantiated per
// requested window length.
type Engine struct {
	workers int
}

// NewEngine creates a new indicator engine with the specified number of workers.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{workers: workers}
}

// ComputeSet calculates the given indicators in parallel and returns their
// series keyed by indicator name. The first calculation error aborts the
// batch and is returned.
func (e *Engine) ComputeSet(ctx context.Context, candles []models.Candle, inds []Indicator) (map[string][]float64, error) {
	results := make(map[string][]float64, len(inds))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	work := make(chan Indicator, len(inds))

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}
				values, err := ind.Calculate(candles)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					results[ind.Name()] = values
				}
				mu.Unlock()
			}
		}()
	}

	for _, ind := range inds {
		work <- ind
	}
	close(work)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// ComputeLengths instantiates one indicator per window length via build and
// calculates them in parallel. Results are keyed by each instance's name.
func (e *Engine) ComputeLengths(ctx context.Context, candles []models.Candle, lengths []int, build func(length int) Indicator) (map[string][]float64, error) {
	inds := make([]Indicator, 0, len(lengths))
	for _, l := range lengths {
		inds = append(inds, build(l))
	}
	return e.ComputeSet(ctx, candles, inds)
}
