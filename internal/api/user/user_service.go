package user

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/assinadoc/assinadoc-api/internal/types"
)

var _ UserService = (*UserServiceImpl)(nil)

// UserService exposes the dashboard profile operations.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.UserProfile, error)
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{logger: logger, repo: repo}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	l := s.logger.With(slog.String("method", "GetProfile"), slog.String("userID", userID.String()))

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch profile", slog.Any("error", err))
		return nil, err
	}
	return profile, nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.UserProfile, error) {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	profile, err := s.repo.UpdateProfile(ctx, userID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		return nil, err
	}
	l.InfoContext(ctx, "Profile updated")
	return profile, nil
}
