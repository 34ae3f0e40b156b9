// Package redis provides the go-redis client plus the cache and lock
// primitives built on it.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

const pingTimeout = 5 * time.Second

// NewClient opens and verifies a redis client from configuration.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "redis: verifying connection")
	}

	logger.Info("connected to redis",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB))
	return client, nil
}
