package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/lorrc/user-registry/internal/core/domain"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Avatar    AvatarConfig
	Email     EmailConfig
	RabbitMQ  RabbitMQConfig
	Redis     RedisConfig
	Profile   ProfileConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	App       AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig holds metadata store configuration
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL             string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"user-registry.db"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

// AvatarConfig holds blob storage and download configuration
type AvatarConfig struct {
	StorageDir      string        `env:"AVATAR_STORAGE_DIR" envDefault:"avatars"`
	DownloadTimeout time.Duration `env:"AVATAR_DOWNLOAD_TIMEOUT" envDefault:"30s"`
	MaxBytes        int64         `env:"AVATAR_MAX_BYTES" envDefault:"5242880"`
	LockTTL         time.Duration `env:"AVATAR_LOCK_TTL" envDefault:"1m"`
}

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	Host     string        `env:"EMAIL_HOST"`
	Port     int           `env:"EMAIL_PORT" envDefault:"587"`
	Username string        `env:"EMAIL_USER"`
	Password string        `env:"EMAIL_PASS"`
	From     string        `env:"EMAIL_FROM" envDefault:"\"MyApp Support\" <support@myapp.com>"`
	Subject  string        `env:"EMAIL_SUBJECT" envDefault:"Welcome to MyApp"`
	Timeout  time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
}

// RabbitMQConfig holds broker configuration
type RabbitMQConfig struct {
	Host        string        `env:"RABBITMQ_HOST"`
	Port        int           `env:"RABBITMQ_PORT" envDefault:"5672"`
	Username    string        `env:"RABBITMQ_USER" envDefault:"guest"`
	Password    string        `env:"RABBITMQ_PASS" envDefault:"guest"`
	VHost       string        `env:"RABBITMQ_VHOST" envDefault:"/"`
	Queue       string        `env:"RABBITMQ_QUEUE" envDefault:"user_notifications"`
	DialTimeout time.Duration `env:"RABBITMQ_DIAL_TIMEOUT" envDefault:"5s"`
}

// RedisConfig holds the optional distributed lock backend
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// ProfileConfig holds the upstream user directory configuration
type ProfileConfig struct {
	BaseURL string        `env:"PROFILE_API_URL" envDefault:"https://reqres.in"`
	APIKey  string        `env:"PROFILE_API_KEY"`
	Timeout time.Duration `env:"PROFILE_API_TIMEOUT" envDefault:"10s"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	BurstSize         int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`   // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"user-registry"`
	Version     string `env:"APP_VERSION" envDefault:"dev"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	env domain.Environment
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads the environment into a Config without validating it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	parsed, err := domain.ParseEnvironment(c.App.Environment)
	if err != nil {
		errs = append(errs, fmt.Sprintf("APP_ENV %q is not one of development, production", c.App.Environment))
	} else {
		c.App.env = parsed
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if strings.TrimSpace(c.Database.SQLitePath) == "" {
			errs = append(errs, "SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER %q must be postgres or sqlite", c.Database.Driver))
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	}

	if strings.TrimSpace(c.Avatar.StorageDir) == "" {
		errs = append(errs, "AVATAR_STORAGE_DIR is required")
	}
	if c.Avatar.DownloadTimeout <= 0 {
		errs = append(errs, "AVATAR_DOWNLOAD_TIMEOUT must be positive")
	}
	if c.Avatar.MaxBytes <= 0 {
		errs = append(errs, "AVATAR_MAX_BYTES must be positive")
	}
	if c.Avatar.LockTTL <= c.Avatar.DownloadTimeout {
		errs = append(errs, "AVATAR_LOCK_TTL must be greater than AVATAR_DOWNLOAD_TIMEOUT")
	}

	if _, err := url.ParseRequestURI(c.Profile.BaseURL); err != nil {
		errs = append(errs, "PROFILE_API_URL must be an absolute URL")
	}

	if parsed == domain.Production {
		if c.Email.Host == "" {
			errs = append(errs, "EMAIL_HOST is required in production")
		}
		if c.RabbitMQ.Host == "" {
			errs = append(errs, "RABBITMQ_HOST is required in production")
		}
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// Environment returns the environment resolved by Validate.
func (c *Config) Environment() domain.Environment {
	if c.App.env == "" {
		if parsed, err := domain.ParseEnvironment(c.App.Environment); err == nil {
			return parsed
		}
		return domain.Development
	}
	return c.App.env
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment() == domain.Production
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, DB: %s %s, Redis: %s, SMTP: %s, RabbitMQ: %s, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.Database.Driver,
		redactURL(c.Database.URL),
		redactURL(c.Redis.URL),
		c.Email.Host,
		c.RabbitMQ.Host,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL strips credentials from a connection URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	if idx := strings.LastIndex(raw, "@"); idx > 0 {
		return "[REDACTED]" + raw[idx:]
	}
	return "[REDACTED]"
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
