package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/barangay_portal/internal/config"
	"github.com/Skotchmaster/barangay_portal/internal/db"
	"github.com/Skotchmaster/barangay_portal/internal/session"
	"github.com/Skotchmaster/barangay_portal/internal/storage"
)

func openDB(ctx context.Context, cfg config.Config) (*gorm.DB, func() error, error) {
	gdb, err := db.Open(ctx, db.Options{DatabaseURL: cfg.DatabaseURL, SQLitePath: cfg.SQLitePath})
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, err
	}
	return gdb, sqlDB.Close, nil
}

func openRedis(ctx context.Context, cfg config.Config) (*storage.Redis, func() error, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return storage.NewRedis(client, cfg.StorageOrigin), client.Close, nil
}

// openStore opens the persisted storage origin: Redis when REDIS_URL is
// set, the SQL database otherwise.
func openStore(ctx context.Context, cfg config.Config) (session.Storage, func() error, error) {
	if cfg.RedisURL != "" {
		return openRedis(ctx, cfg)
	}

	gdb, closeDB, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.Migrate(gdb); err != nil {
		_ = closeDB()
		return nil, nil, err
	}
	return storage.NewSQL(gdb, cfg.StorageOrigin), closeDB, nil
}
