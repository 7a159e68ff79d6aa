package port

import "context"

// DocumentLocker serializes mutations per key. Acquire blocks until the caller holds
// the key or ctx is done. The in-process implementation serves waiters in arrival
// order; the Redis one only bounds the wait.
type DocumentLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
