package main

import (
	"context"
	"fmt"

	"github.com/gastwerk/ragcache/cache"
	"github.com/gastwerk/ragcache/config"
)

// openStore constructs the configured store backend. The caller owns the
// store and must Close it.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		return cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
	case "sqlite":
		return cache.NewSQLiteStore(cfg.Store.SQLite.Path)
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// loadConfig loads the file at path, or defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
