package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/config"
	"github.com/spec-kit/ticket-client/internal/persistence"
)

// RedisKV reads session fields from Redis, for shared kiosk devices whose
// sign-in happens elsewhere.
type RedisKV struct {
	conn   *persistence.Redis
	client *redis.Client
	prefix string
}

// NewRedisKV connects using the provided configuration. An unreachable
// server is only logged; reads will then fail and sessions load as absent.
func NewRedisKV(cfg config.RedisConfig, prefix string, logger *zap.Logger) *RedisKV {
	conn := persistence.NewRedis(cfg, logger)
	return &RedisKV{conn: conn, client: conn.Client, prefix: prefix}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Ping verifies Redis connectivity.
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// Close closes the client.
func (r *RedisKV) Close() error {
	if r == nil {
		return nil
	}
	return r.conn.Close()
}
