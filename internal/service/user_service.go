package service

import (
	"context"
	"errors"
	"fmt"

	"self-analysis/internal/dto"
	"self-analysis/internal/repository"
	"self-analysis/internal/repository/models"
)

var ErrUserProfileNotFound = errors.New("user profile not found")

// UserService exposes account-level reads. Answer history lives on
// AnswerService; this stays profile-only.
type UserService interface {
	GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
}

type userServiceImpl struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id from repository: %w", err)
	}
	if user == nil {
		return nil, ErrUserProfileNotFound
	}
	return profileOf(user), nil
}

// profileOf flattens the nullable DB columns into the response shape.
func profileOf(user *models.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name.String,
		ProfilePictureURL: user.ProfilePictureURL.String,
	}
}
