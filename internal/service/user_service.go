package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/dto"
	"collab-board/internal/repository"
	"collab-board/internal/response"
)

// UserService exposes the profiles boards can be shared with
type UserService interface {
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	UpsertProfile(ctx context.Context, req *dto.UpsertProfileRequest) (*dto.UserResponse, error)
}

type userServiceImpl struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, logger: logger}
}

// ListUsers returns every known user except the caller
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAllExcept(ctx, actor)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch users", err.Error())
	}
	return dto.NewUserResponses(users), nil
}

// UpsertProfile stores the caller's display name and email
func (s *userServiceImpl) UpsertProfile(ctx context.Context, req *dto.UpsertProfileRequest) (*dto.UserResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	name, err := domain.NormalizeTitle("name", req.Name)
	if err != nil {
		return nil, response.FromDomain(err, "Invalid profile")
	}

	user := &domain.User{ID: actor, Name: name, Email: strings.ToLower(strings.TrimSpace(req.Email))}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to save profile", err.Error())
	}
	s.logger.Debug("Profile saved", zap.String("user_id", actor.String()))
	return &dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}
