package db

import (
	"context"
	"fmt"

	"CatalogAPI/internal/config"
	"CatalogAPI/internal/logger"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// InitRedis creates the client used by the catalog store and pings it.
func InitRedis(ctx context.Context, cfg config.RedisConfig) error {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
		logger.Warn("redis_default_addr", map[string]any{"addr": addr})
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis %s: %w", addr, err)
	}
	RDB = client
	logger.Info("redis_connected", map[string]any{"addr": addr, "db": cfg.DB})
	return nil
}

func CloseRedis() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}
