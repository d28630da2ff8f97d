// pkg/nonce/redis.go
package nonce

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "redhio:nonce:"

// consumeScript deletes the key regardless of outcome so a second consumer
// can never succeed, and reports whether the presented value matched.
var consumeScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then return 0 end
redis.call('DEL', KEYS[1])
if cur == ARGV[1] then return 1 end
return 0
`)

type redisTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTracker stores pending handshakes in Redis, surviving restarts
// and shared across replicas. Expiry is enforced by the key TTL.
func NewRedisTracker(rdb *redis.Client, ttl time.Duration) Tracker {
	return &redisTracker{rdb: rdb, ttl: ttl}
}

func (t *redisTracker) Issue(ctx context.Context, shop string) (string, error) {
	n, err := generate()
	if err != nil {
		return "", err
	}
	if err := t.rdb.Set(ctx, redisKeyPrefix+shop, n, t.ttl).Err(); err != nil {
		return "", err
	}
	return n, nil
}

func (t *redisTracker) Consume(ctx context.Context, shop, presented string) error {
	res, err := consumeScript.Run(ctx, t.rdb, []string{redisKeyPrefix + shop}, presented).Int()
	if err != nil {
		return err
	}
	if res != 1 {
		return ErrMismatch
	}
	return nil
}
