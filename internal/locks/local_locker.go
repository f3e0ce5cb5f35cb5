package locks

import (
	"context"
	"sync"
	"time"
)

// LocalLocker keeps locks in process memory. Expired locks are reclaimed on
// the next TryLock for the same key.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localEntry
	clock func() time.Time
}

type localEntry struct {
	owner   uint64
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]localEntry),
		clock: time.Now,
	}
}

var localOwnerSeq struct {
	sync.Mutex
	next uint64
}

func nextOwner() uint64 {
	localOwnerSeq.Lock()
	defer localOwnerSeq.Unlock()
	localOwnerSeq.next++
	return localOwnerSeq.next
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if entry, ok := l.held[key]; ok && now.Before(entry.expires) {
		return nil, ErrNotAcquired
	}

	owner := nextOwner()
	l.held[key] = localEntry{owner: owner, expires: now.Add(ttl)}
	return &localLock{locker: l, key: key, owner: owner}, nil
}

type localLock struct {
	locker *LocalLocker
	key    string
	owner  uint64
}

func (k *localLock) Release(context.Context) error {
	k.locker.mu.Lock()
	defer k.locker.mu.Unlock()

	if entry, ok := k.locker.held[k.key]; ok && entry.owner == k.owner {
		delete(k.locker.held, k.key)
	}
	return nil
}
