// Package query holds the per-resource fetch state the dashboard renders from:
// the last data, the last error and whether a fetch is in flight.
package query

import (
	"context"
	"sync"
)

type Query[T any] struct {
	fetch func(ctx context.Context) (T, error)

	mu       sync.RWMutex
	data     T
	hasData  bool
	err      error
	fetching bool
}

func New[T any](fetch func(ctx context.Context) (T, error)) *Query[T] {
	return &Query[T]{fetch: fetch}
}

// Data returns the last successful result. A failed refetch keeps the
// previous data, like a stale-while-error cache.
func (q *Query[T]) Data() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.data, q.hasData
}

func (q *Query[T]) Err() error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.err
}

func (q *Query[T]) IsFetching() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.fetching
}

// Refetch runs the fetch function and records its outcome.
func (q *Query[T]) Refetch(ctx context.Context) error {
	q.mu.Lock()
	q.fetching = true
	q.mu.Unlock()

	data, err := q.fetch(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.fetching = false
	q.err = err
	if err == nil {
		q.data = data
		q.hasData = true
	}
	return err
}

// Refetcher is any query regardless of its data type.
type Refetcher interface {
	Refetch(ctx context.Context) error
}

// RefetchAll triggers every query concurrently and waits for all of them.
// Failures stay on the individual queries.
func RefetchAll(ctx context.Context, queries ...Refetcher) {
	var wg sync.WaitGroup
	wg.Add(len(queries))

	for _, q := range queries {
		go func(q Refetcher) {
			defer wg.Done()
			_ = q.Refetch(ctx)
		}(q)
	}

	wg.Wait()
}
