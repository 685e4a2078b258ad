package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/uiengineer/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes work per key and garbage collects idle entries by
// reference counting.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates the entry for key and increments its reference
// count. The caller MUST lock entry.mu and call release(key) after unlocking.
func (k *keyedMutex) acquire(key string) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, exists := k.locks[key]
	if !exists {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (k *keyedMutex) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, exists := k.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(k.locks, key)
	}
}

// size reports how many keys currently hold an entry.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// withLock runs fn while holding the lock for appID, first in-process and
// then, if configured, in the distributed locker.
func (s *Service) withLock(ctx context.Context, appID string, fn func(context.Context) error) error {
	entry := s.locks.acquire(appID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		s.locks.release(appID)
	}()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, appID, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer s.releaseDistributed(appID, unlock)
	}

	return fn(ctx)
}

func (s *Service) releaseDistributed(appID string, unlock ports.UnlockFunc) {
	// The request context may already be cancelled; release regardless.
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL)
	defer cancel()
	if err := unlock(ctx); err != nil {
		s.logger.Warn("Failed to release distributed lock (will expire via TTL)",
			"app_id", appID,
			"err", err,
		)
	}
}
