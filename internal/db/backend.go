package db

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/repo/memory"
	"github.com/geocoder89/learnhub/internal/repo/postgres"
	"github.com/geocoder89/learnhub/internal/repo/redisclient"
	"github.com/geocoder89/learnhub/internal/store"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// OpenBackend builds the record store backend named by cfg.StoreBackend and
// checks it is reachable.
func OpenBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case BackendMemory, "":
		return memory.NewBackend(), nil

	case BackendPostgres:
		pool, err := NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		b := postgres.NewBackend(pool)

		schemaCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := b.EnsureSchema(schemaCtx); err != nil {
			pool.Close()
			return nil, err
		}
		return b, nil

	case BackendRedis:
		c := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := c.Ping(pingCtx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
