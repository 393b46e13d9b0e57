// Package store opens the configured metadata backend.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/user-registry/internal/adapters/secondary/postgres"
	"github.com/lorrc/user-registry/internal/adapters/secondary/sqlite"
	"github.com/lorrc/user-registry/internal/config"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Driver  string
	Users   ports.UserRepository
	Avatars ports.AvatarRepository
	Ping    func(ctx context.Context) error
	Close   func()
}

// Open connects to the backend named by cfg.Driver, migrating first when
// cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Stores, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.AutoMigrate {
			if err := postgres.Migrate(cfg.URL, cfg.MigrationsPath); err != nil {
				return nil, err
			}
			logger.Info("database migrations applied", "path", cfg.MigrationsPath)
		}

		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			URL:             cfg.URL,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established", "driver", cfg.Driver)

		return &Stores{
			Driver:  cfg.Driver,
			Users:   postgres.NewUserRepository(pool),
			Avatars: postgres.NewAvatarRepository(pool),
			Ping:    pool.Ping,
			Close:   pool.Close,
		}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established", "driver", cfg.Driver, "path", cfg.SQLitePath)

		return &Stores{
			Driver:  cfg.Driver,
			Users:   db,
			Avatars: db,
			Ping:    db.Ping,
			Close: func() {
				if err := db.Close(); err != nil {
					logger.Error("sqlite close failed", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
