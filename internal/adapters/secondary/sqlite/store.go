// Package sqlite provides a single-file storage backend for users and avatar
// records, used when no PostgreSQL URL is configured.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

//go:embed schema.sql
var schema string

// Store persists users and avatar records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var (
	_ ports.UserRepository   = (*Store)(nil)
	_ ports.AvatarRepository = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID.String(), user.Name, user.Email, user.PasswordHash, toMillis(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	created := *user
	created.CreatedAt = fromMillis(toMillis(user.CreatedAt))
	return &created, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var (
		u         domain.User
		id        string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", id, err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

func (s *Store) FindByUserID(ctx context.Context, userID string) (*domain.AvatarRecord, error) {
	rec := domain.AvatarRecord{UserID: userID}
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT digest, created_at FROM avatars WHERE user_id = ?`, userID,
	).Scan(&rec.Digest, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("find avatar: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	return &rec, nil
}

func (s *Store) Save(ctx context.Context, record *domain.AvatarRecord) (*domain.AvatarRecord, error) {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO avatars (user_id, digest, created_at) VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET digest = excluded.digest, created_at = excluded.created_at`,
		record.UserID, record.Digest, toMillis(record.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	saved := *record
	saved.CreatedAt = fromMillis(toMillis(record.CreatedAt))
	return &saved, nil
}

func (s *Store) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM avatars WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
