package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/config"
	"github.com/spec-kit/ticket-client/internal/observability"
)

const redisProbeTimeout = 2 * time.Second

// Redis wraps the go-redis client shared by the session backend and the
// development service's OTP store.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client for cfg. An unreachable server is only logged;
// callers see the failure on their first command.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	logger = observability.OrNop(logger)
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisProbeTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
