package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID      uint
	DisplayName string
	Bio         string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// IsAdmin reports whether the user holds the admin role.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// UpdateProfile applies a partial profile update. Only the submitted columns
// are written; a wholesale Save here would clobber the password hash whenever
// the user came out of the cache, where the hash is never stored.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	const maxBioLen = 500
	const maxDisplayNameLen = 50

	fields := map[string]interface{}{}
	if in.DisplayName != "" {
		if len(in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 50 characters)")
		}
		fields["display_name"] = in.DisplayName
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		fields["bio"] = in.Bio
	}

	if len(fields) == 0 {
		return s.userRepo.GetByID(ctx, in.UserID)
	}

	if err := s.userRepo.UpdateFields(ctx, in.UserID, fields); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, in.UserID)
}

func (s *UserService) SetAdmin(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	err := s.userRepo.UpdateFields(ctx, targetID, map[string]interface{}{"is_admin": isAdmin})
	if err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, targetID)
}
