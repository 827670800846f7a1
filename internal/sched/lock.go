// Package sched coordinates the periodic cleanup sweep across replicas.
package sched

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker gates a sweep run. Implementations must be safe for concurrent use.
type Locker interface {
	TryAcquire(ctx context.Context) bool
}

// RedisLock is a best-effort lease: SET NX with a TTL. The holder does not
// renew or release; the lease simply outlives the sweep and expires before
// the next tick. Losing the race means another replica is sweeping.
type RedisLock struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

func NewRedisLock(addr string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Key:    "ridemate:cleanup:lease",
		TTL:    ttl,
	}
}

func (l *RedisLock) TryAcquire(ctx context.Context) bool {
	ok, err := l.Client.SetNX(ctx, l.Key, "1", l.TTL).Result()
	if err != nil {
		// Redis being down must not stop cleanup on a single node.
		return true
	}
	return ok
}
