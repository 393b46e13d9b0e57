package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/user-registry/internal/adapters/primary/http/middleware"
)

// RouterConfig collects what the router mounts.
type RouterConfig struct {
	Logger         *slog.Logger
	Users          *UserHandler
	Health         *HealthHandler
	RateLimiter    *mw.RateLimiter // nil disables rate limiting
	AllowedOrigins []string
}

// NewRouter builds the application's HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.AllowedOrigins))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", cfg.Users.RegisterRoutes)
	})

	return r
}
