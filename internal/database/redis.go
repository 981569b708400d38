package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"collab-board/internal/config"
)

// NewRedis connects to Redis. A redis:// URL takes precedence over host and
// port. It returns nil without error when Redis is not configured.
func NewRedis(cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled() {
		log.Info("Redis not configured, using in-process locks and event fan-out")
		return nil, nil
	}

	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("Redis connection established successfully",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB))
	return client, nil
}
