package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstledger/internal/lock"
)

func TestKeyedQueue_ServesWaitersInArrivalOrder(t *testing.T) {
	q := lock.NewKeyedQueue()
	ctx := context.Background()

	release, err := q.Acquire(ctx, "doc")
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rel, err := q.Acquire(ctx, "doc")
			if err != nil {
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			rel()
		}(i)
		// Wait until the goroutine is queued so arrival order is deterministic.
		require.Eventually(t, func() bool { return q.Waiting("doc") == i+1 }, time.Second, time.Millisecond)
	}

	release()
	wg.Wait()

	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Zero(t, q.Waiting("doc"))
}

func TestKeyedQueue_IndependentKeys(t *testing.T) {
	q := lock.NewKeyedQueue()
	ctx := context.Background()

	relA, err := q.Acquire(ctx, "a")
	require.NoError(t, err)
	defer relA()

	done := make(chan struct{})
	go func() {
		rel, err := q.Acquire(ctx, "b")
		if err == nil {
			rel()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestKeyedQueue_CanceledWaiterLeavesQueue(t *testing.T) {
	q := lock.NewKeyedQueue()

	release, err := q.Acquire(context.Background(), "doc")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = q.Acquire(ctx, "doc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, q.Waiting("doc"))

	release()
	assert.Zero(t, q.Waiting("doc"))

	rel, err := q.Acquire(context.Background(), "doc")
	require.NoError(t, err)
	rel()
}

func TestKeyedQueue_ReleaseIsIdempotent(t *testing.T) {
	q := lock.NewKeyedQueue()
	ctx := context.Background()

	first, err := q.Acquire(ctx, "doc")
	require.NoError(t, err)
	first()

	second, err := q.Acquire(ctx, "doc")
	require.NoError(t, err)
	first()
	assert.Equal(t, 1, q.Waiting("doc"))
	second()
	assert.Zero(t, q.Waiting("doc"))
}

func TestKeyedQueue_MutualExclusion(t *testing.T) {
	q := lock.NewKeyedQueue()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rel, err := q.Acquire(ctx, "doc")
			if err != nil {
				return
			}
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			rel()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
