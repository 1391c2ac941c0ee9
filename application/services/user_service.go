package services

import (
	"context"

	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/authorization"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/domain/events"
	pkgerrors "clubhub-backend/pkg/errors"
)

// UserService manages local profiles of authenticated identities
type UserService struct {
	users     ports.UserRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users ports.UserRepository, publisher ports.EventPublisher, logger *zap.Logger) *UserService {
	return &UserService{
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// EnsureUser returns the profile of identity, creating it on first access
func (s *UserService) EnsureUser(ctx context.Context, identity authorization.Identity) (*entities.User, error) {
	if !identity.Valid() {
		return nil, pkgerrors.NewUnauthorizedError("authentication required")
	}

	existing, err := s.users.GetUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user, err := s.users.CreateUser(ctx, entities.CreateUserInput{
		ID:          identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		SystemRole:  identity.SystemRole,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User created on first access", zap.String("userID", user.ID))
	publish(ctx, s.publisher, s.logger, events.NewUserCreated(*user))
	return user, nil
}

// GetProfile returns the caller's profile
func (s *UserService) GetProfile(ctx context.Context, identity authorization.Identity) (*entities.User, error) {
	return s.EnsureUser(ctx, identity)
}

// UpdateProfile changes the caller's own display fields. The stored system
// role is not updatable here.
func (s *UserService) UpdateProfile(ctx context.Context, identity authorization.Identity, input entities.UpdateUserInput) (*entities.User, error) {
	if _, err := s.EnsureUser(ctx, identity); err != nil {
		return nil, err
	}
	return s.users.UpdateUser(ctx, identity.UserID, input)
}
