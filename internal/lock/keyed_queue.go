// Package lock serializes document mutations per key, either inside one process
// or across processes through Redis.
package lock

import (
	"context"
	"sync"

	"gstledger/internal/port"
)

type ticket struct {
	ready chan struct{}
}

// KeyedQueue grants exclusive access per key in arrival order. Keys with no holder
// and no waiters are dropped from the map.
type KeyedQueue struct {
	mu     sync.Mutex
	queues map[string][]*ticket
}

// NewKeyedQueue creates an in-process DocumentLocker.
func NewKeyedQueue() *KeyedQueue {
	return &KeyedQueue{queues: make(map[string][]*ticket)}
}

var _ port.DocumentLocker = (*KeyedQueue)(nil)

// Acquire waits for every earlier caller on key to release, then returns a release
// function that must be called exactly once. Calling it again is a no-op.
func (q *KeyedQueue) Acquire(ctx context.Context, key string) (func(), error) {
	t := &ticket{ready: make(chan struct{})}

	q.mu.Lock()
	q.queues[key] = append(q.queues[key], t)
	if len(q.queues[key]) == 1 {
		close(t.ready)
	}
	q.mu.Unlock()

	select {
	case <-t.ready:
		var once sync.Once
		return func() { once.Do(func() { q.leave(key, t) }) }, nil
	case <-ctx.Done():
		q.leave(key, t)
		return nil, ctx.Err()
	}
}

// Waiting reports how many callers hold or wait for key.
func (q *KeyedQueue) Waiting(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[key])
}

// leave drops t from the key's queue and wakes the next waiter when t was the
// holder. A waiter whose context ended leaves the same way, whether or not it was
// granted in the meantime.
func (q *KeyedQueue) leave(key string, t *ticket) {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue := q.queues[key]
	for i := range queue {
		if queue[i] != t {
			continue
		}
		wasHead := i == 0
		queue = append(queue[:i], queue[i+1:]...)
		if len(queue) == 0 {
			delete(q.queues, key)
			return
		}
		q.queues[key] = queue
		if wasHead {
			close(queue[0].ready)
		}
		return
	}
}
