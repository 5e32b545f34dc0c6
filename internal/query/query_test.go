package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("empty before first fetch", func(t *testing.T) {
		q := New(func(context.Context) (int, error) { return 1, nil })
		_, ok := q.Data()
		assert.False(t, ok)
		assert.NoError(t, q.Err())
		assert.False(t, q.IsFetching())
	})

	t.Run("records data", func(t *testing.T) {
		q := New(func(context.Context) (string, error) { return "sunny", nil })
		require.NoError(t, q.Refetch(ctx))

		v, ok := q.Data()
		assert.True(t, ok)
		assert.Equal(t, "sunny", v)
	})

	t.Run("error keeps previous data", func(t *testing.T) {
		fail := false
		q := New(func(context.Context) (int, error) {
			if fail {
				return 0, errors.New("upstream down")
			}
			return 42, nil
		})

		require.NoError(t, q.Refetch(ctx))
		fail = true
		assert.Error(t, q.Refetch(ctx))

		v, ok := q.Data()
		assert.True(t, ok)
		assert.Equal(t, 42, v)
		assert.EqualError(t, q.Err(), "upstream down")
	})

	t.Run("fetching flag while in flight", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		q := New(func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})

		done := make(chan struct{})
		go func() {
			_ = q.Refetch(ctx)
			close(done)
		}()

		<-started
		assert.True(t, q.IsFetching())
		close(release)
		<-done
		assert.False(t, q.IsFetching())
	})
}

func TestRefetchAll(t *testing.T) {
	// Each slow fetch waits for its sibling; run sequentially they would time out.
	var started atomic.Int32
	slow := func(context.Context) (int, error) {
		started.Add(1)
		deadline := time.Now().Add(2 * time.Second)
		for started.Load() < 2 {
			if time.Now().After(deadline) {
				return 0, errors.New("sibling never started")
			}
			time.Sleep(time.Millisecond)
		}
		return 1, nil
	}

	a, b, c := New(slow), New(slow), New(func(context.Context) (int, error) { return 0, errors.New("nope") })
	RefetchAll(context.Background(), a, b, c)

	assert.NoError(t, a.Err())
	assert.NoError(t, b.Err())
	assert.Error(t, c.Err())
}
