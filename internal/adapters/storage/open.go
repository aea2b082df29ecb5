// Package storage picks the key-value backend named by the config.
package storage

import (
	"context"
	"fmt"

	"authform/internal/adapters/memory"
	"authform/internal/adapters/postgres"
	"authform/internal/adapters/redis"
	"authform/internal/adapters/sqlite"
	"authform/internal/config"
	"authform/internal/domain"
	"authform/internal/logger"
)

func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (domain.KVStore, error) {
	switch cfg.StorageDriver {
	case "", "memory":
		log.Warn("storage: using in-memory store, login state will not survive a restart")
		return memory.NewKVStore(), nil

	case "sqlite":
		db, err := sqlite.NewSqliteDB(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		if err := sqlite.MigrateUp(db); err != nil {
			db.Close()
			return nil, err
		}
		return sqlite.NewKVStore(db), nil

	case "redis":
		client, err := redis.Init(ctx, &redis.ClientOptions{
			Address:  cfg.RedisAddress,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		log.Info("redis connected", "address", cfg.RedisAddress)
		return redis.NewKVStore(client), nil

	case "postgres":
		pool, err := postgres.InitDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		kv, err := postgres.NewKVStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return kv, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStorageDriver, cfg.StorageDriver)
	}
}
