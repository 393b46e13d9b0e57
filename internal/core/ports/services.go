package ports

import (
	"context"

	"github.com/lorrc/user-registry/internal/core/domain"
)

// AvatarService defines the avatar acquisition and integrity operations.
type AvatarService interface {
	GetAvatar(ctx context.Context, userID, originURL string) (domain.AvatarResult, error)
	DeleteAvatar(ctx context.Context, userID string) error
	FilePath(userID string) (string, error)
	Inspect(ctx context.Context, userID string) (*domain.AvatarInspection, error)
}

// UserService defines the port for user registration.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
}

// ProfileService defines the port for upstream profile lookups.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// Sender dispatches a notification message to a recipient over one transport.
type Sender interface {
	Send(ctx context.Context, message, recipient string) error
}

// SenderSelector resolves the sender for an environment and channel.
type SenderSelector interface {
	Sender(env domain.Environment, channel domain.Channel) (Sender, error)
}
