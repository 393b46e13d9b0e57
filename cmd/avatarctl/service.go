package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorrc/user-registry/internal/adapters/secondary/filestore"
	"github.com/lorrc/user-registry/internal/adapters/secondary/origin"
	"github.com/lorrc/user-registry/internal/adapters/secondary/redis"
	"github.com/lorrc/user-registry/internal/config"
	"github.com/lorrc/user-registry/internal/core/domain"
	"github.com/lorrc/user-registry/internal/core/ports"
	"github.com/lorrc/user-registry/internal/core/services"
	"github.com/lorrc/user-registry/internal/infrastructure/keylock"
	"github.com/lorrc/user-registry/internal/infrastructure/logging"
	"github.com/lorrc/user-registry/internal/infrastructure/store"
)

// avatarService is the part of the avatar service the CLI drives.
type avatarService interface {
	Inspect(ctx context.Context, userID string) (*domain.AvatarInspection, error)
	DeleteAvatar(ctx context.Context, userID string) error
}

// withAvatarService opens the configured store and blob directory for the
// duration of fn. With REDIS_URL set, locks are shared with running servers.
func withAvatarService(cmd *cobra.Command, cfg *config.Config, fn func(avatarService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "avatarctl",
		Environment: string(cfg.Environment()),
	})

	cfg.Database.AutoMigrate = false
	stores, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	blobs, err := filestore.New(cfg.Avatar.StorageDir)
	if err != nil {
		return err
	}

	var locker ports.KeyedLocker = keylock.New()
	if cfg.Redis.URL != "" {
		rdb, err := redis.New(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = redis.NewLocker(rdb, cfg.Avatar.LockTTL, logger)
	}

	svc := services.NewAvatarService(
		stores.Avatars,
		blobs,
		origin.NewHTTPFetcher(cfg.Avatar.DownloadTimeout, cfg.Avatar.MaxBytes),
		locker,
		logger.With(slog.String("command", cmd.Name())),
	)
	return fn(svc)
}
