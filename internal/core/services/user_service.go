package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// UserService implements user registration.
type UserService struct {
	userRepo ports.UserRepository
	senders  ports.SenderSelector
	env      domain.Environment
	logger   *slog.Logger
}

var _ ports.UserService = (*UserService)(nil)

// NewUserService creates a new user service. Notifications go out through
// the senders selected for env.
func NewUserService(
	userRepo ports.UserRepository,
	senders ports.SenderSelector,
	env domain.Environment,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		senders:  senders,
		env:      env,
		logger:   logger.With("component", "user_service"),
	}
}

// Register creates a new user account and announces it on every channel.
// Notification failures are logged and do not undo the registration.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	params := domain.UserRegistrationParams{
		Name:     name,
		Email:    email,
		Password: password,
	}
	params.Normalize()

	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err == nil {
		return nil, apperrors.ErrUserExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	user, err := domain.NewUser(params)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, domain.ChannelEmail, domain.WelcomeMessage, created.Email)
	s.notify(ctx, domain.ChannelBroker, domain.UserCreatedMessage, created.Email)

	return created, nil
}

func (s *UserService) notify(ctx context.Context, channel domain.Channel, message, recipient string) {
	sender, err := s.senders.Sender(s.env, channel)
	if err != nil {
		s.logger.ErrorContext(ctx, "no sender for channel", "channel", channel, "environment", s.env, "error", err)
		return
	}
	if err := sender.Send(ctx, message, recipient); err != nil {
		s.logger.ErrorContext(ctx, "notification failed", "channel", channel, "recipient", recipient, "error", err)
	}
}
