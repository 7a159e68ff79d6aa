package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"gstledger/internal/domain"
	"gstledger/internal/logging"
	"gstledger/internal/port"
)

// RedisConfig tunes how long a lock lives and how long a caller waits for it.
type RedisConfig struct {
	TTL   time.Duration
	Wait  time.Duration
	Retry time.Duration
}

// RedisLocker serializes mutations across server processes with a Redis lock per key.
// Waiters poll with linear backoff until Wait elapses. A held lock is refreshed every
// TTL/2 until released, so a long mutation never outlives its key.
type RedisLocker struct {
	rdb    redis.UniversalClient
	client *redislock.Client
	cfg    RedisConfig
	log    *logrus.Entry
}

// NewRedisLocker creates a distributed DocumentLocker over an existing Redis client.
func NewRedisLocker(rdb redis.UniversalClient, cfg RedisConfig, logger logrus.FieldLogger) *RedisLocker {
	return &RedisLocker{
		rdb:    rdb,
		client: redislock.New(rdb),
		cfg:    cfg,
		log:    logging.Module(logger, "redisLocker"),
	}
}

var _ port.DocumentLocker = (*RedisLocker)(nil)

// PingContext reports whether Redis answers, for readiness checks.
func (l *RedisLocker) PingContext(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}

// Acquire obtains "lock:<key>". It returns domain.ErrLockNotObtained when the key
// stays held for longer than the configured wait.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.cfg.Wait)
	defer cancel()

	lockKey := "lock:" + key
	lk, err := l.client.Obtain(waitCtx, lockKey, l.cfg.TTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.cfg.Retry),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrLockNotObtained, key)
		}
		return nil, fmt.Errorf("redisLocker.Acquire: %w", err)
	}

	stop := l.keepAlive(lk, lockKey)
	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			// The caller's context may already be canceled; release regardless.
			relCtx, relCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer relCancel()
			if err := lk.Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.log.WithFields(logrus.Fields{"key": lockKey}).WithError(err).Warn("release failed")
			}
		})
	}, nil
}

// keepAlive extends lk every TTL/2 until the returned stop function is called. Stop
// waits for an in-flight refresh so release never races it.
func (l *RedisLocker) keepAlive(lk *redislock.Lock, lockKey string) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(l.cfg.TTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), l.cfg.TTL/2)
				err := lk.Refresh(ctx, l.cfg.TTL, nil)
				cancel()
				if err != nil {
					l.log.WithFields(logrus.Fields{"key": lockKey}).WithError(err).Error("lock refresh failed")
					if errors.Is(err, redislock.ErrNotObtained) {
						return
					}
				}
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
