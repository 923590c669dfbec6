package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// VerifyCache remembers identities of tokens that already verified.
// Implementations must treat every failure as a miss.
type VerifyCache interface {
	Get(ctx context.Context, key string) (Identity, bool)
	Set(ctx context.Context, key string, id Identity, ttl time.Duration)
}

const redisKeyPrefix = "mediconnect:token:"

type RedisCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisCache(client *redis.Client, log *zap.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Identity, bool) {
	b, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("token cache get", zap.Error(err))
		}
		return Identity{}, false
	}
	var id Identity
	if err := json.Unmarshal(b, &id); err != nil || !id.Role.Valid() {
		return Identity{}, false
	}
	return id, true
}

func (c *RedisCache) Set(ctx context.Context, key string, id Identity, ttl time.Duration) {
	b, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, b, ttl).Err(); err != nil {
		c.log.Warn("token cache set", zap.Error(err))
	}
}
