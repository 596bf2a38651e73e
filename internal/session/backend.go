package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/config"
)

// Backend is a KeyValue that the login flow can also write to.
type Backend interface {
	KeyValue
	Writer
	Close() error
}

type memoryBackend struct{ *MemoryKV }

func (memoryBackend) Close() error { return nil }

// OpenBackend builds the backend selected by cfg.Session.Backend.
func OpenBackend(cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return memoryBackend{NewMemoryKV()}, nil
	case config.SessionBackendRedis:
		return NewRedisKV(cfg.Redis, cfg.Session.KeyPrefix, logger), nil
	case config.SessionBackendSQLite, "":
		kv, err := NewSQLiteKV(cfg.Session.SQLitePath)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
