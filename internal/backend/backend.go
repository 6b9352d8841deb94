// Package backend opens the snapshot backend selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/config"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/database"
	redisclient "github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/redis"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/storage"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/store"
)

// Open connects to the backend named by cfg.StoreBackend. The returned
// close function releases any connection it holds and is never nil.
func Open(ctx context.Context, cfg *config.Config) (store.Backend, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.BackendFile:
		return store.NewFileBackend(cfg.StorePath), noop, nil

	case config.BackendMemory:
		return store.NewMemoryBackend(), noop, nil

	case config.BackendRedis:
		rdb, err := redisclient.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("redis: %w", err)
		}
		return rdb.SnapshotBackend(cfg.RedisKey), func() { _ = rdb.Close() }, nil

	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres: %w", err)
		}
		return database.NewSnapshotRepository(pool, database.DefaultSnapshotName), pool.Close, nil

	case config.BackendMinIO:
		mc, err := storage.NewMinIOClient(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket)
		if err != nil {
			return nil, noop, fmt.Errorf("minio: %w", err)
		}
		return mc, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
