package lock

import (
	"context"
	"time"

	"github.com/Domenick1991/aircargo/internal/logger"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

type RedisLocker struct {
	client redis.UniversalClient
	log    *logger.Logger
	now    func() time.Time
}

func NewRedisLocker(client redis.UniversalClient, log *logger.Logger) *RedisLocker {
	return &RedisLocker{client: client, log: log, now: time.Now}
}

func (l *RedisLocker) Acquire(ctx context.Context, resource string, ttl time.Duration) (Lease, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := l.now()
	token := newToken(now)

	ok, err := l.client.SetNX(ctx, lockKey(resource), token, ttl).Result()
	if err != nil {
		l.log.Error("Error acquiring lock", "resource", resource, "error", err)
		return Lease{Resource: resource}, err
	}
	if !ok {
		l.log.Debug("Lock is held by another owner", "resource", resource)
		return Lease{Resource: resource}, nil
	}

	l.log.Info("Lock acquired", "resource", resource)
	return Lease{Resource: resource, Token: token, Acquired: true, ExpiresAt: now.Add(ttl)}, nil
}

func (l *RedisLocker) Release(ctx context.Context, lease Lease) (bool, error) {
	if !lease.Acquired || lease.Token == "" {
		return false, nil
	}

	deleted, err := releaseScript.Run(ctx, l.client, []string{lockKey(lease.Resource)}, lease.Token).Int64()
	if err != nil {
		l.log.Error("Error releasing lock", "resource", lease.Resource, "error", err)
		return false, err
	}
	if deleted != 1 {
		l.log.Warn("Lock was not released: token mismatch or expired", "resource", lease.Resource)
		return false, nil
	}

	l.log.Info("Lock released", "resource", lease.Resource)
	return true, nil
}

func lockKey(resource string) string {
	return keyPrefix + resource
}

var _ Locker = (*RedisLocker)(nil)
