package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ItemResult is the outcome of one fan-out item. Errors are recorded here
// instead of aborting sibling items.
type ItemResult[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// FanOut runs fn over items with at most limit goroutines and collects
// every per-item result. It never fails as a whole: a failing item only
// fails its own slot.
func FanOut[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []ItemResult[T, R] {
	if limit <= 0 {
		limit = 1
	}

	results := make([]ItemResult[T, R], len(items))
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			value, err := fn(ctx, item)
			results[i] = ItemResult[T, R]{Item: item, Value: value, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
