package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectValid bool
	}{
		{"valid password", "Password1", true},
		{"valid with special char", "Password1!", true},
		{"exactly 8 chars valid", "Passwor1", true},
		{"exactly 72 chars valid", strings.Repeat("P", 35) + strings.Repeat("a", 35) + "12", true},

		{"too short", "Pass1", false},
		{"no uppercase", "password1", false},
		{"no lowercase", "PASSWORD1", false},
		{"no number", "Password", false},
		{"too long for bcrypt", strings.Repeat("Pa1", 25), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := domain.ValidatePassword(tt.password)
			if tt.expectValid {
				assert.Empty(t, errors, "expected password to be valid, got errors: %v", errors)
			} else {
				assert.NotEmpty(t, errors, "expected password to be invalid")
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	t.Run("valid password", func(t *testing.T) {
		hash, err := domain.HashPassword("Password1")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "Password1", hash)
	})

	t.Run("weak password fails", func(t *testing.T) {
		hash, err := domain.HashPassword("weak")
		assert.ErrorIs(t, err, apperrors.ErrPasswordTooWeak)
		assert.Empty(t, hash)
	})
}

func TestUser_CheckPassword(t *testing.T) {
	hash, err := domain.HashPassword("Password1")
	require.NoError(t, err)

	user := &domain.User{ID: uuid.New(), PasswordHash: hash}

	assert.True(t, user.CheckPassword("Password1"))
	assert.False(t, user.CheckPassword("WrongPassword1"))
	assert.False(t, user.CheckPassword(""))
}

func TestUserRegistrationParams_Normalize(t *testing.T) {
	params := domain.UserRegistrationParams{
		Name:  "John Doe  ",
		Email: " JOHN@EXamplE.cOm  ",
	}

	params.Normalize()

	assert.Equal(t, "John Doe", params.Name)
	assert.Equal(t, "john@example.com", params.Email)
}

func TestUserRegistrationParams_Validate(t *testing.T) {
	tests := []struct {
		name        string
		params      domain.UserRegistrationParams
		errorFields []string
	}{
		{
			name:   "valid params",
			params: domain.UserRegistrationParams{Name: "John Doe", Email: "john@example.com", Password: "Password1"},
		},
		{
			name:        "empty name",
			params:      domain.UserRegistrationParams{Email: "john@example.com", Password: "Password1"},
			errorFields: []string{"name"},
		},
		{
			name:        "name too long",
			params:      domain.UserRegistrationParams{Name: strings.Repeat("a", 256), Email: "john@example.com", Password: "Password1"},
			errorFields: []string{"name"},
		},
		{
			name:        "empty email",
			params:      domain.UserRegistrationParams{Name: "John Doe", Password: "Password1"},
			errorFields: []string{"email"},
		},
		{
			name:        "invalid email format",
			params:      domain.UserRegistrationParams{Name: "John Doe", Email: "john", Password: "Password1"},
			errorFields: []string{"email"},
		},
		{
			name:        "display name form is rejected",
			params:      domain.UserRegistrationParams{Name: "John Doe", Email: "John <john@example.com>", Password: "Password1"},
			errorFields: []string{"email"},
		},
		{
			name:        "missing password",
			params:      domain.UserRegistrationParams{Name: "John Doe", Email: "john@example.com"},
			errorFields: []string{"password"},
		},
		{
			name:        "multiple errors",
			params:      domain.UserRegistrationParams{Email: "invalid", Password: "weak"},
			errorFields: []string{"name", "email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()

			if len(tt.errorFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var validationErr *apperrors.ValidationErrors
			require.ErrorAs(t, err, &validationErr)
			for _, field := range tt.errorFields {
				assert.Contains(t, validationErr.Errors, field, "expected error for field %q", field)
			}
		})
	}
}

func TestNewUser(t *testing.T) {
	t.Run("valid user creation", func(t *testing.T) {
		params := domain.UserRegistrationParams{
			Name:     " John Doe ",
			Email:    "John@Example.com",
			Password: "Password1",
		}

		user, err := domain.NewUser(params)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "John Doe", user.Name)
		assert.Equal(t, "john@example.com", user.Email)
		assert.NotEqual(t, params.Password, user.PasswordHash)
		assert.True(t, user.CheckPassword("Password1"))
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("invalid params", func(t *testing.T) {
		user, err := domain.NewUser(domain.UserRegistrationParams{Email: "invalid", Password: "weak"})
		assert.Error(t, err)
		assert.Nil(t, user)
	})
}
