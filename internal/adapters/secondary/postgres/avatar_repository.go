package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

type AvatarRepository struct {
	db DBTX
}

var _ ports.AvatarRepository = (*AvatarRepository)(nil)

func NewAvatarRepository(db DBTX) *AvatarRepository {
	return &AvatarRepository{db: db}
}

const findAvatarSQL = `
SELECT user_id, digest, created_at
FROM avatars
WHERE user_id = $1`

// Re-creating a record after deletion replaces it wholesale.
const saveAvatarSQL = `
INSERT INTO avatars (user_id, digest, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET digest = EXCLUDED.digest, created_at = EXCLUDED.created_at
RETURNING user_id, digest, created_at`

const deleteAvatarSQL = `DELETE FROM avatars WHERE user_id = $1`

func scanAvatar(row pgx.Row) (*domain.AvatarRecord, error) {
	var rec domain.AvatarRecord
	if err := row.Scan(&rec.UserID, &rec.Digest, &rec.CreatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AvatarRepository) FindByUserID(ctx context.Context, userID string) (*domain.AvatarRecord, error) {
	rec, err := scanAvatar(r.db.QueryRow(ctx, findAvatarSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("find avatar: %w", err)
	}
	return rec, nil
}

func (r *AvatarRepository) Save(ctx context.Context, record *domain.AvatarRecord) (*domain.AvatarRecord, error) {
	saved, err := scanAvatar(r.db.QueryRow(ctx, saveAvatarSQL, record.UserID, record.Digest, record.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}
	return saved, nil
}

func (r *AvatarRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, deleteAvatarSQL, userID); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}
