package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/internal/config"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

const redisPingTimeout = 3 * time.Second

// NewRedisClient connects the store used by the login rate limiter so that
// every API replica counts against the same keys.
func NewRedisClient(cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DialTimeout:  redisPingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cannot reach redis at %s: %w", cfg.Redis.Addr, err)
	}

	log.Info("Connected Redis for rate limiting", zap.String("addr", cfg.Redis.Addr))
	return rdb, nil
}
