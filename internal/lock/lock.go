// Package lock provides named, TTL-bound mutual exclusion with ownership-checked release.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 10 * time.Second

// Lease describes the outcome of an acquire attempt. Token proves ownership
// and must be handed back on Release.
type Lease struct {
	Resource  string
	Token     string
	Acquired  bool
	ExpiresAt time.Time
}

// Locker is implemented by RedisLocker and MemoryLocker.
type Locker interface {
	// Acquire creates the lock for resource if it does not exist yet. A store
	// failure yields a non-acquired lease together with the error.
	Acquire(ctx context.Context, resource string, ttl time.Duration) (Lease, error)
	// Release deletes the lock only if it is still owned by lease.Token.
	// It reports false when the token did not match or the lock was gone.
	Release(ctx context.Context, lease Lease) (bool, error)
}

// ErrNotAcquired is returned by AcquireWithRetry when every attempt found the lock held.
var ErrNotAcquired = errors.New("lock not acquired")

func newToken(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString())
}

// RetryPolicy bounds how many times AcquireWithRetry tries before giving up.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// AcquireWithRetry calls Acquire up to policy.Attempts times, sleeping a linearly
// growing backoff between tries. Competing callers are not queued; whoever retries
// first after a release wins. Store errors abort immediately.
func AcquireWithRetry(ctx context.Context, l Locker, resource string, ttl time.Duration, policy RetryPolicy) (Lease, error) {
	attempts := max(policy.Attempts, 1)
	for i := 0; i < attempts; i++ {
		lease, err := l.Acquire(ctx, resource, ttl)
		if err != nil {
			return Lease{Resource: resource}, err
		}
		if lease.Acquired {
			return lease, nil
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(time.Duration(i+1) * policy.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Lease{Resource: resource}, ctx.Err()
		case <-timer.C:
		}
	}
	return Lease{Resource: resource}, fmt.Errorf("%w: %s", ErrNotAcquired, resource)
}
