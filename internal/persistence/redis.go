package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-compliance-service/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// PayloadCache stores serialized response payloads with a TTL. The dashboard
// query is the only consumer; misses are never an error.
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
}

type redisPayloadCache struct {
	redis  *Redis
	logger *zap.Logger
}

// NewPayloadCache builds a redis-backed payload cache. With no reachable
// redis the cache degrades to a pass-through.
func NewPayloadCache(r *Redis, logger *zap.Logger) PayloadCache {
	return &redisPayloadCache{redis: r, logger: logger}
}

func (c *redisPayloadCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	payload, err := c.redis.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("payload cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

func (c *redisPayloadCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Debug("payload cache write failed", zap.String("key", key), zap.Error(err))
	}
}
