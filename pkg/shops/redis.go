// pkg/shops/redis.go
package shops

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "redhio:shop:"

// redisStore implements Store on Redis. SET NX is the atomic
// insert-if-absent primitive; tokens never expire (no refresh in scope).
type redisStore struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func NewRedisStore(rdb *redis.Client, log *zap.SugaredLogger) Store {
	return &redisStore{rdb: rdb, log: log}
}

func (s *redisStore) Put(ctx context.Context, shop, accessToken string) (string, error) {
	ok, err := s.rdb.SetNX(ctx, redisKeyPrefix+shop, accessToken, 0).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return accessToken, nil
	}
	s.log.Debugw("duplicate install ignored", "shop", shop)
	return s.Get(ctx, shop)
}

func (s *redisStore) Get(ctx context.Context, shop string) (string, error) {
	tok, err := s.rdb.Get(ctx, redisKeyPrefix+shop).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return tok, nil
}
