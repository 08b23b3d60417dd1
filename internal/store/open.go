package store

import (
	"context"
	"fmt"

	"rollbook/internal/config"
)

// Open selects the KV backend named by cfg.StoreBackend. The returned close
// func releases the backend's connections.
func Open(ctx context.Context, cfg config.App) (KV, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return NewMemory(), func() error { return nil }, nil
	case config.StoreSQLite:
		db, err := NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.StorePostgres:
		db, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.StoreRedis:
		r := NewRedis(cfg.RedisAddr, cfg.RedisPrefix)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, nil, fmt.Errorf("redis store: %w", err)
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
