// Package kv opens the durable key-value store selected by configuration.
package kv

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/contas/internal/config"
	"github.com/MrJamesThe3rd/contas/internal/database"
	"github.com/MrJamesThe3rd/contas/internal/kv/memory"
	"github.com/MrJamesThe3rd/contas/internal/kv/postgres"
	"github.com/MrJamesThe3rd/contas/internal/kv/redis"
	"github.com/MrJamesThe3rd/contas/internal/kv/sqlite"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}

		return postgres.New(db), nil
	case config.BackendSQLite:
		db, err := database.NewSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}

		return sqlite.New(db), nil
	case config.BackendRedis:
		s, err := redis.New(ctx, redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			Prefix:      cfg.Redis.Prefix,
			DialTimeout: cfg.Redis.DialTimeout,
			Timeout:     cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening redis store: %w", err)
		}

		return s, nil
	}

	return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
}
