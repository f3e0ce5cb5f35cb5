// Package locks serializes work on a key across requests, and across
// instances when Redis is configured.
package locks

import (
	"context"
	"errors"
	"time"
)

type Locker interface {
	// TryLock takes key for at most ttl or fails with ErrNotAcquired.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

var ErrNotAcquired = errors.New("lock held by another owner")

const retryInterval = 25 * time.Millisecond

// Acquire retries TryLock until it succeeds, wait elapses or ctx ends.
func Acquire(ctx context.Context, l Locker, key string, ttl, wait time.Duration) (Lock, error) {
	deadline := time.Now().Add(wait)
	for {
		lock, err := l.TryLock(ctx, key, ttl)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrNotAcquired) {
			return nil, err
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func UserKey(userID string) string {
	return "nextlevel:lock:user:" + userID
}

const SweepKey = "nextlevel:lock:recurrence-sweep"
