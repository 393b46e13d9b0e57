package services

import (
	"context"

	"github.com/lorrc/user-registry/internal/core/domain"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// ProfileService looks up public profiles in the upstream user directory.
type ProfileService struct {
	client ports.ProfileClient
}

var _ ports.ProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService.
func NewProfileService(client ports.ProfileClient) *ProfileService {
	return &ProfileService{client: client}
}

// GetProfile returns the upstream profile for userID.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	return s.client.GetProfile(ctx, userID)
}
