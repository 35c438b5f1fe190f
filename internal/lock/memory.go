package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker with the same semantics as RedisLocker.
// It only serializes callers within one process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memoryEntry), now: time.Now}
}

// WithClock replaces the time source, used by tests to expire leases.
func (l *MemoryLocker) WithClock(now func() time.Time) *MemoryLocker {
	l.now = now
	return l
}

func (l *MemoryLocker) Acquire(_ context.Context, resource string, ttl time.Duration) (Lease, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.locks[resource]; ok && now.Before(cur.expiresAt) {
		return Lease{Resource: resource}, nil
	}

	entry := memoryEntry{token: newToken(now), expiresAt: now.Add(ttl)}
	l.locks[resource] = entry
	return Lease{Resource: resource, Token: entry.token, Acquired: true, ExpiresAt: entry.expiresAt}, nil
}

func (l *MemoryLocker) Release(_ context.Context, lease Lease) (bool, error) {
	if !lease.Acquired || lease.Token == "" {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.locks[lease.Resource]
	if !ok || cur.token != lease.Token {
		return false, nil
	}
	delete(l.locks, lease.Resource)
	if !l.now().Before(cur.expiresAt) {
		// expired already; nobody else took it, so report it as gone
		return false, nil
	}
	return true, nil
}

var _ Locker = (*MemoryLocker)(nil)
