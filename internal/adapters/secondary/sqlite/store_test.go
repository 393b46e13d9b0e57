package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Save(ctx, &domain.AvatarRecord{UserID: "42", Digest: strings.Repeat("a", 128), CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	rec, err := store.FindByUserID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 128), rec.Digest)
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	created, err := store.Create(ctx, user)
	require.NoError(t, err)

	found, err := store.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "Test User", found.Name)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))

	dup := *user
	dup.ID = uuid.New()
	_, err = store.Create(ctx, &dup)
	assert.ErrorIs(t, err, apperrors.ErrUserExists)

	_, err = store.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestStore_Avatars(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.FindByUserID(ctx, "42")
	assert.ErrorIs(t, err, apperrors.ErrAvatarNotFound)

	_, err = store.Save(ctx, &domain.AvatarRecord{UserID: "42", Digest: strings.Repeat("a", 128), CreatedAt: time.Now()})
	require.NoError(t, err)
	_, err = store.Save(ctx, &domain.AvatarRecord{UserID: "42", Digest: strings.Repeat("b", 128), CreatedAt: time.Now()})
	require.NoError(t, err)

	rec, err := store.FindByUserID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("b", 128), rec.Digest)

	require.NoError(t, store.DeleteByUserID(ctx, "42"))
	_, err = store.FindByUserID(ctx, "42")
	assert.ErrorIs(t, err, apperrors.ErrAvatarNotFound)
	assert.NoError(t, store.DeleteByUserID(ctx, "42"))

	_, err = store.Save(ctx, &domain.AvatarRecord{UserID: "43", Digest: "short", CreatedAt: time.Now()})
	assert.Error(t, err)
}

func TestStore_Ping(t *testing.T) {
	assert.NoError(t, openTestStore(t).Ping(context.Background()))
}
