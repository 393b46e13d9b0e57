package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/mocks"
	"github.com/lorrc/user-registry/internal/core/services"
)

type userFixture struct {
	repo   *mocks.MockUserRepository
	email  *mocks.MockSender
	broker *mocks.MockSender
	svc    *services.UserService
}

func newUserFixture(env domain.Environment) *userFixture {
	f := &userFixture{
		repo:   mocks.NewMockUserRepository(),
		email:  mocks.NewMockSender(),
		broker: mocks.NewMockSender(),
	}
	set := services.SenderSet{Email: f.email, Broker: f.broker}
	selector := services.NewSenderSelector(set, set)
	f.svc = services.NewUserService(f.repo, selector, env, discardLogger())
	return f
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newUserFixture(domain.Development)

		f.repo.On("GetByEmail", ctx, "newuser@example.com").
			Return(nil, apperrors.ErrUserNotFound)
		f.repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Return(&domain.User{
				ID:        uuid.New(),
				Name:      "New User",
				Email:     "newuser@example.com",
				CreatedAt: time.Now(),
			}, nil)
		f.email.On("Send", ctx, domain.WelcomeMessage, "newuser@example.com").Return(nil)
		f.broker.On("Send", ctx, domain.UserCreatedMessage, "newuser@example.com").Return(nil)

		user, err := f.svc.Register(ctx, " New User ", "NewUser@Example.com", "Password123")

		require.NoError(t, err)
		assert.Equal(t, "New User", user.Name)
		assert.Equal(t, "newuser@example.com", user.Email)

		f.repo.AssertExpectations(t)
		f.email.AssertExpectations(t)
		f.broker.AssertExpectations(t)
	})

	t.Run("stores a hashed password", func(t *testing.T) {
		f := newUserFixture(domain.Development)

		f.repo.On("GetByEmail", ctx, "user@example.com").Return(nil, apperrors.ErrUserNotFound)
		f.repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.PasswordHash != "Password123" && u.CheckPassword("Password123")
		})).Return(&domain.User{ID: uuid.New(), Name: "User", Email: "user@example.com"}, nil)
		f.email.On("Send", ctx, mock.Anything, mock.Anything).Return(nil)
		f.broker.On("Send", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.Register(ctx, "User", "user@example.com", "Password123")
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("notification failure does not fail registration", func(t *testing.T) {
		f := newUserFixture(domain.Production)

		f.repo.On("GetByEmail", ctx, "user@example.com").Return(nil, apperrors.ErrUserNotFound)
		f.repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Return(&domain.User{ID: uuid.New(), Name: "User", Email: "user@example.com"}, nil)
		f.email.On("Send", ctx, domain.WelcomeMessage, "user@example.com").Return(apperrors.ErrSend)
		f.broker.On("Send", ctx, domain.UserCreatedMessage, "user@example.com").Return(nil)

		user, err := f.svc.Register(ctx, "User", "user@example.com", "Password123")
		require.NoError(t, err)
		assert.NotNil(t, user)
		f.broker.AssertExpectations(t)
	})

	t.Run("user already exists", func(t *testing.T) {
		f := newUserFixture(domain.Development)

		f.repo.On("GetByEmail", ctx, "existing@example.com").
			Return(&domain.User{ID: uuid.New(), Email: "existing@example.com"}, nil)

		user, err := f.svc.Register(ctx, "User", "existing@example.com", "Password123")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrUserExists)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lookup error propagates", func(t *testing.T) {
		f := newUserFixture(domain.Development)
		dbErr := errors.New("connection refused")

		f.repo.On("GetByEmail", ctx, "user@example.com").Return(nil, dbErr)

		_, err := f.svc.Register(ctx, "User", "user@example.com", "Password123")
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("weak password", func(t *testing.T) {
		f := newUserFixture(domain.Development)

		user, err := f.svc.Register(ctx, "User", "user@example.com", "weak")

		assert.Nil(t, user)
		var validationErr *apperrors.ValidationErrors
		assert.ErrorAs(t, err, &validationErr)
		f.repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newUserFixture(domain.Development)

		user, err := f.svc.Register(ctx, "User", "invalid-email", "Password123")

		assert.Nil(t, user)
		assert.Error(t, err)
		f.repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("empty name", func(t *testing.T) {
		f := newUserFixture(domain.Development)

		user, err := f.svc.Register(ctx, "   ", "user@example.com", "Password123")

		assert.Nil(t, user)
		assert.Error(t, err)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProfileService_GetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the client", func(t *testing.T) {
		client := mocks.NewMockProfileClient()
		svc := services.NewProfileService(client)
		profile := &domain.UserProfile{ID: 2, Email: "janet.weaver@reqres.in", Avatar: "https://reqres.in/img/faces/2-image.jpg"}
		client.On("GetProfile", ctx, "2").Return(profile, nil)

		got, err := svc.GetProfile(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
	})

	t.Run("rejects unsafe ids", func(t *testing.T) {
		client := mocks.NewMockProfileClient()
		svc := services.NewProfileService(client)

		_, err := svc.GetProfile(ctx, "../2")
		assert.ErrorIs(t, err, apperrors.ErrInvalidUserID)
		client.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})
}

func TestUserService_Register_NoSenderForChannel(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockUserRepository()
	selector := mocks.NewMockSenderSelector()
	broker := mocks.NewMockSender()
	svc := services.NewUserService(repo, selector, domain.Production, discardLogger())

	repo.On("GetByEmail", ctx, "user@example.com").Return(nil, apperrors.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(&domain.User{ID: uuid.New(), Name: "User", Email: "user@example.com"}, nil)
	selector.On("Sender", domain.Production, domain.ChannelEmail).
		Return(nil, apperrors.ErrSenderUnavailable)
	selector.On("Sender", domain.Production, domain.ChannelBroker).
		Return(broker, nil)
	broker.On("Send", ctx, domain.UserCreatedMessage, "user@example.com").Return(nil)

	user, err := svc.Register(ctx, "User", "user@example.com", "Password123")

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	selector.AssertExpectations(t)
	broker.AssertExpectations(t)
}
