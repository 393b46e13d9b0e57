package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lorrc/user-registry/internal/core/digest"
	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// flightTimeout bounds a shared GetAvatar execution, which outlives any
// single caller's context.
const flightTimeout = 2 * time.Minute

// AvatarService is a read-through avatar cache with tamper detection.
// The first successfully downloaded copy is trusted; afterwards any
// divergence between the cached blob and its record is reported as
// corruption and never repaired.
type AvatarService struct {
	avatars ports.AvatarRepository
	blobs   ports.BlobStore
	origin  ports.OriginFetcher
	locker  ports.KeyedLocker
	flight  singleflight.Group
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.AvatarService = (*AvatarService)(nil)

// NewAvatarService creates a new avatar service.
func NewAvatarService(
	avatars ports.AvatarRepository,
	blobs ports.BlobStore,
	origin ports.OriginFetcher,
	locker ports.KeyedLocker,
	logger *slog.Logger,
) *AvatarService {
	return &AvatarService{
		avatars: avatars,
		blobs:   blobs,
		origin:  origin,
		locker:  locker,
		logger:  logger.With("component", "avatar_service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetAvatar returns the user's verified avatar as base64, downloading it from
// originURL when nothing is cached yet. Concurrent calls for the same user in
// this process share one execution, which keeps running when the caller that
// started it goes away.
func (s *AvatarService) GetAvatar(ctx context.Context, userID, originURL string) (domain.AvatarResult, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return domain.AvatarResult{}, err
	}

	ch := s.flight.DoChan(userID, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return s.getAvatar(flightCtx, userID, originURL)
	})

	select {
	case <-ctx.Done():
		return domain.AvatarResult{}, fmt.Errorf("%w: waiting for avatar of %s: %w", apperrors.ErrTimeout, userID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.AvatarResult{}, res.Err
		}
		return res.Val.(domain.AvatarResult), nil
	}
}

func (s *AvatarService) getAvatar(ctx context.Context, userID, originURL string) (domain.AvatarResult, error) {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return domain.AvatarResult{}, err
	}
	defer unlock()

	record, err := s.avatars.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		return s.readRecorded(ctx, record, originURL)
	case errors.Is(err, apperrors.ErrAvatarNotFound):
		return s.acquire(ctx, userID, originURL)
	default:
		return domain.AvatarResult{}, err
	}
}

// readRecorded serves a user that already has a trusted digest.
func (s *AvatarService) readRecorded(ctx context.Context, record *domain.AvatarRecord, originURL string) (domain.AvatarResult, error) {
	exists, err := s.blobs.Exists(ctx, record.UserID)
	if err != nil {
		return domain.AvatarResult{}, err
	}
	if !exists {
		s.logger.InfoContext(ctx, "cached avatar missing, downloading again", "user_id", record.UserID)
		if err := s.storeAvatar(ctx, record.UserID, originURL); err != nil {
			return domain.AvatarResult{}, err
		}
	}

	actual, content, err := s.readBlob(ctx, record.UserID)
	if err != nil {
		return domain.AvatarResult{}, err
	}
	if actual != record.Digest {
		s.logger.WarnContext(ctx, "avatar digest mismatch",
			"user_id", record.UserID,
			"expected_digest", record.Digest,
			"actual_digest", actual,
		)
		return domain.UnverifiedAvatar(), nil
	}

	return domain.AvatarResult{Verified: true, Content: content}, nil
}

// acquire downloads an avatar for a user with no record and trusts it.
func (s *AvatarService) acquire(ctx context.Context, userID, originURL string) (domain.AvatarResult, error) {
	if err := s.storeAvatar(ctx, userID, originURL); err != nil {
		return domain.AvatarResult{}, err
	}

	sum, content, err := s.readBlob(ctx, userID)
	if err != nil {
		return domain.AvatarResult{}, err
	}

	if _, err := s.avatars.Save(ctx, &domain.AvatarRecord{
		UserID:    userID,
		Digest:    sum,
		CreatedAt: s.now(),
	}); err != nil {
		return domain.AvatarResult{}, err
	}

	s.logger.InfoContext(ctx, "avatar acquired", "user_id", userID, "digest", sum)
	return domain.AvatarResult{Verified: true, Content: content}, nil
}

// StoreAvatar downloads originURL into the user's blob location, replacing
// whatever was cached. A failed download leaves no blob behind.
func (s *AvatarService) StoreAvatar(ctx context.Context, userID, originURL string) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.storeAvatar(ctx, userID, originURL)
}

func (s *AvatarService) storeAvatar(ctx context.Context, userID, originURL string) error {
	if strings.TrimSpace(originURL) == "" {
		return fmt.Errorf("%w: no origin url for user %s", apperrors.ErrNetwork, userID)
	}

	body, err := s.origin.Fetch(ctx, originURL)
	if err != nil {
		s.logger.ErrorContext(ctx, "avatar download failed", "user_id", userID, "error", err)
		return err
	}
	defer body.Close()

	n, err := s.blobs.Write(ctx, userID, body)
	if err != nil {
		s.logger.ErrorContext(ctx, "avatar download failed", "user_id", userID, "error", err)
		return err
	}

	s.logger.DebugContext(ctx, "avatar stored", "user_id", userID, "bytes", n)
	return nil
}

// readBlob hashes and base64-encodes the cached blob in a single pass.
func (s *AvatarService) readBlob(ctx context.Context, userID string) (string, string, error) {
	rc, err := s.blobs.Open(ctx, userID)
	if err != nil {
		return "", "", err
	}
	defer rc.Close()

	var encoded strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &encoded)
	sum, err := digest.Reader(io.TeeReader(rc, enc))
	if err != nil {
		return "", "", err
	}
	if err := enc.Close(); err != nil {
		return "", "", fmt.Errorf("%w: encoding avatar: %w", apperrors.ErrIO, err)
	}

	return sum, encoded.String(), nil
}

// DeleteAvatar removes the cached blob and then the record. Without a record
// it does nothing. If the blob cannot be removed the record is kept.
func (s *AvatarService) DeleteAvatar(ctx context.Context, userID string) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.avatars.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrAvatarNotFound) {
			return nil
		}
		return err
	}

	if err := s.blobs.Remove(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "avatar blob removal failed, keeping record", "user_id", userID, "error", err)
		return err
	}

	if err := s.avatars.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "avatar deleted", "user_id", userID)
	return nil
}

// FilePath returns the storage location of a user's cached avatar.
func (s *AvatarService) FilePath(userID string) (string, error) {
	return s.blobs.Path(userID)
}

// Inspect compares the cached blob against its record without contacting the origin.
func (s *AvatarService) Inspect(ctx context.Context, userID string) (*domain.AvatarInspection, error) {
	path, err := s.blobs.Path(userID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	record, err := s.avatars.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	inspection := &domain.AvatarInspection{
		UserID:         userID,
		Path:           path,
		ExpectedDigest: record.Digest,
	}

	exists, err := s.blobs.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return inspection, nil
	}

	rc, err := s.blobs.Open(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	inspection.BlobPresent = true
	if inspection.ActualDigest, err = digest.Reader(rc); err != nil {
		return nil, err
	}
	return inspection, nil
}
