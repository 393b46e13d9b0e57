package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/lorrc/user-registry/internal/adapters/primary/http"
	mw "github.com/lorrc/user-registry/internal/adapters/primary/http/middleware"
	"github.com/lorrc/user-registry/internal/adapters/secondary/email"
	"github.com/lorrc/user-registry/internal/adapters/secondary/filestore"
	"github.com/lorrc/user-registry/internal/adapters/secondary/origin"
	"github.com/lorrc/user-registry/internal/adapters/secondary/rabbitmq"
	"github.com/lorrc/user-registry/internal/adapters/secondary/redis"
	"github.com/lorrc/user-registry/internal/adapters/secondary/reqres"
	"github.com/lorrc/user-registry/internal/config"
	"github.com/lorrc/user-registry/internal/core/ports"
	"github.com/lorrc/user-registry/internal/core/services"
	"github.com/lorrc/user-registry/internal/infrastructure/keylock"
	"github.com/lorrc/user-registry/internal/infrastructure/logging"
	"github.com/lorrc/user-registry/internal/infrastructure/store"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: string(cfg.Environment()),
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.Environment(),
		"config", cfg.String(),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// 3. Metadata store
	stores, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	// 4. Avatar storage and per-user locking
	blobs, err := filestore.New(cfg.Avatar.StorageDir)
	if err != nil {
		return err
	}
	logger.Info("avatar storage ready", "root", blobs.Root())

	fetcher := origin.NewHTTPFetcher(cfg.Avatar.DownloadTimeout, cfg.Avatar.MaxBytes)

	healthChecks := map[string]httpAdapter.HealthChecker{
		"database": httpAdapter.HealthCheckerFunc(stores.Ping),
	}

	var locker ports.KeyedLocker = keylock.New()
	if cfg.Redis.URL != "" {
		rdb, err := redis.New(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("redis close failed", "error", err)
			}
		}()
		locker = redis.NewLocker(rdb, cfg.Avatar.LockTTL, logger)
		healthChecks["redis"] = rdb
		logger.Info("using redis avatar locks")
	}

	// 5. Notification senders
	senders, closeSenders, err := buildSenders(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSenders()
	if p, ok := senders.Broker.(*rabbitmq.Publisher); ok {
		healthChecks["rabbitmq"] = p
	}

	selector := services.NewSenderSelector(senders, services.SenderSet{
		Email:  email.NewFakeSender(logger),
		Broker: rabbitmq.NewFakePublisher(logger),
	})

	// 6. Dependency Injection (Wiring the Hexagon)
	userService := services.NewUserService(stores.Users, selector, cfg.Environment(), logger)
	profileService := services.NewProfileService(
		reqres.NewClient(cfg.Profile.BaseURL, cfg.Profile.APIKey, cfg.Profile.Timeout),
	)
	avatarService := services.NewAvatarService(stores.Avatars, blobs, fetcher, locker, logger)

	errorHandler := httpAdapter.NewErrorHandler(logger)
	userHandler := httpAdapter.NewUserHandler(userService, profileService, avatarService, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(healthChecks, cfg.App.Version)

	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer rateLimiter.Stop()
	}

	// 7. Setup Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:         logger,
		Users:          userHandler,
		Health:         healthHandler,
		RateLimiter:    rateLimiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildSenders builds the production transports. Outside production no
// connection is opened and the returned set is empty.
func buildSenders(cfg *config.Config, logger *slog.Logger) (services.SenderSet, func(), error) {
	if !cfg.IsProduction() {
		return services.SenderSet{}, func() {}, nil
	}

	smtp, err := email.NewSMTPSender(smtpConfig(cfg.Email), logger)
	if err != nil {
		return services.SenderSet{}, nil, err
	}

	publisher, err := rabbitmq.Dial(rabbitmq.Config{
		Host:        cfg.RabbitMQ.Host,
		Port:        cfg.RabbitMQ.Port,
		Username:    cfg.RabbitMQ.Username,
		Password:    cfg.RabbitMQ.Password,
		VHost:       cfg.RabbitMQ.VHost,
		Queue:       cfg.RabbitMQ.Queue,
		DialTimeout: cfg.RabbitMQ.DialTimeout,
	}, logger)
	if err != nil {
		return services.SenderSet{}, nil, err
	}

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			logger.Error("rabbitmq close failed", "error", err)
		}
	}
	return services.SenderSet{Email: smtp, Broker: publisher}, closeFn, nil
}

func smtpConfig(cfg config.EmailConfig) email.SMTPConfig {
	return email.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		Subject:  cfg.Subject,
		Timeout:  cfg.Timeout,
	}
}
