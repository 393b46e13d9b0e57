package ports

import (
	"context"
	"io"

	"github.com/lorrc/user-registry/internal/core/domain"
)

// UserRepository persists registered users.
type UserRepository interface {
	// Create fails with ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AvatarRepository persists the last-known-good digest per user.
type AvatarRepository interface {
	// FindByUserID fails with ErrAvatarNotFound when no record exists.
	FindByUserID(ctx context.Context, userID string) (*domain.AvatarRecord, error)
	Save(ctx context.Context, record *domain.AvatarRecord) (*domain.AvatarRecord, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// BlobStore holds one cached avatar per user in a directory it exclusively owns.
type BlobStore interface {
	// Path maps a user ID to its storage location, rejecting unsafe IDs.
	Path(userID string) (string, error)
	Exists(ctx context.Context, userID string) (bool, error)
	// Write replaces the blob with the full contents of r. On error no
	// partially written blob is left behind.
	Write(ctx context.Context, userID string, r io.Reader) (int64, error)
	Open(ctx context.Context, userID string) (io.ReadCloser, error)
	// Remove deletes the blob; a missing blob is not an error.
	Remove(ctx context.Context, userID string) error
}

// OriginFetcher downloads avatar bytes from their origin URL.
type OriginFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// ProfileClient reads user profiles from the upstream user directory.
type ProfileClient interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// KeyedLocker serializes work per key. The returned unlock func is safe to call more than once.
type KeyedLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
