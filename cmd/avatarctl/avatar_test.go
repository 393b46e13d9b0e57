package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/user-registry/internal/adapters/secondary/filestore"
	"github.com/lorrc/user-registry/internal/adapters/secondary/sqlite"
	"github.com/lorrc/user-registry/internal/config"
	"github.com/lorrc/user-registry/internal/core/digest"
	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(dir, "registry.db"),
		},
		Avatar: config.AvatarConfig{
			StorageDir:      filepath.Join(dir, "avatars"),
			DownloadTimeout: time.Second,
			MaxBytes:        1 << 20,
		},
		Logging: config.LoggingConfig{Level: "error"},
	}
}

// seedAvatar records content as the trusted avatar of userID and caches stored.
func seedAvatar(t *testing.T, cfg *config.Config, userID string, content, stored []byte) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(cfg.Database.SQLitePath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Save(ctx, &domain.AvatarRecord{UserID: userID, Digest: digest.Bytes(content), CreatedAt: time.Now()})
	require.NoError(t, err)

	blobs, err := filestore.New(cfg.Avatar.StorageDir)
	require.NoError(t, err)
	_, err = blobs.Write(ctx, userID, bytes.NewReader(stored))
	require.NoError(t, err)
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDigestCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte("png bytes"), 0o600))

	out, err := execute(t, testConfig(t), "digest", path)
	require.NoError(t, err)
	assert.Equal(t, digest.Bytes([]byte("png bytes"))+"\n", out)

	out, err = execute(t, testConfig(t), "--json", "digest", path)
	require.NoError(t, err)
	var payload digestOutput
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "sha512", payload.Algorithm)
	assert.Equal(t, digest.Bytes([]byte("png bytes")), payload.Digest)
}

func TestDigestCmd_MissingFile(t *testing.T) {
	_, err := execute(t, testConfig(t), "digest", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, apperrors.ErrIO)
}

func TestPathCmd(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, cfg, "path", "42")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Avatar.StorageDir, "42.jpg")+"\n", out)

	_, err = execute(t, cfg, "path", "../42")
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserID)

	_, err = execute(t, cfg, "path")
	assert.EqualError(t, err, "user id is required")
}

func TestVerifyCmd(t *testing.T) {
	t.Run("matching blob", func(t *testing.T) {
		cfg := testConfig(t)
		seedAvatar(t, cfg, "42", []byte("original"), []byte("original"))

		out, err := execute(t, cfg, "--json", "verify", "42")
		require.NoError(t, err)

		var payload verifyOutput
		require.NoError(t, json.Unmarshal([]byte(out), &payload))
		assert.True(t, payload.Verified)
		assert.True(t, payload.BlobPresent)
		assert.Equal(t, digest.Bytes([]byte("original")), payload.ActualDigest)
	})

	t.Run("tampered blob", func(t *testing.T) {
		cfg := testConfig(t)
		seedAvatar(t, cfg, "42", []byte("original"), []byte("tampered"))

		out, err := execute(t, cfg, "verify", "42")
		assert.ErrorIs(t, err, errVerifyFailed)
		assert.Contains(t, out, "verified: false")
	})

	t.Run("no record", func(t *testing.T) {
		_, err := execute(t, testConfig(t), "verify", "42")
		assert.ErrorIs(t, err, apperrors.ErrAvatarNotFound)
	})
}

func TestDeleteCmd(t *testing.T) {
	cfg := testConfig(t)
	seedAvatar(t, cfg, "42", []byte("original"), []byte("original"))

	out, err := execute(t, cfg, "delete", "42")
	require.NoError(t, err)
	assert.Equal(t, "deleted avatar for 42\n", out)

	assert.NoFileExists(t, filepath.Join(cfg.Avatar.StorageDir, "42.jpg"))
	_, err = execute(t, cfg, "verify", "42")
	assert.ErrorIs(t, err, apperrors.ErrAvatarNotFound)

	// deleting a user with no avatar is a no-op
	_, err = execute(t, cfg, "delete", "42")
	assert.NoError(t, err)
}

func TestFormatCLIError(t *testing.T) {
	assert.Nil(t, formatCLIError(nil))
	assert.Len(t, formatCLIError(errVerifyFailed), 2)
	assert.Len(t, formatCLIError(apperrors.ErrInvalidUserID), 2)
	assert.Len(t, formatCLIError(assert.AnError), 1)
}
