package cache

import (
	"context"
	"fmt"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store selected by idempotency.backend.
// Outside production a Redis connection failure falls back to memory.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if cfg.Idempotency.Backend != "redis" {
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, cfg.Redis)
	if err == nil {
		logger.Info("using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return store, nil
	}
	if cfg.App.Env == "production" {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}
