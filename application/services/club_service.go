package services

import (
	"context"

	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/authorization"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/domain/events"
	"clubhub-backend/pkg/common"
	pkgerrors "clubhub-backend/pkg/errors"
)

// ClubService orchestrates club lifecycle operations
type ClubService struct {
	clubs     ports.ClubRepository
	authz     *AuthorizationService
	clubAuthz *ClubAuthorizationService
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewClubService creates a new ClubService
func NewClubService(
	clubs ports.ClubRepository,
	authz *AuthorizationService,
	clubAuthz *ClubAuthorizationService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ClubService {
	return &ClubService{
		clubs:     clubs,
		authz:     authz,
		clubAuthz: clubAuthz,
		publisher: publisher,
		logger:    logger,
	}
}

func nameTaken(name string) error {
	return pkgerrors.NewConflictError("club name is already taken").
		WithCode(pkgerrors.CodeClubNameTaken).
		WithDetail("name", name)
}

// CreateClub stores a new club and makes the caller its active owner
func (s *ClubService) CreateClub(ctx context.Context, identity authorization.Identity, input entities.CreateClubInput) (*entities.Club, error) {
	if !identity.Valid() {
		return nil, pkgerrors.NewUnauthorizedError("authentication required")
	}
	// Validate before touching storage.
	if _, err := entities.NewClub(input); err != nil {
		return nil, err
	}

	unique, err := s.clubs.IsClubNameUnique(ctx, input.Name, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, nameTaken(input.Name)
	}

	club, owner, err := s.clubs.CreateClubWithOwner(ctx, input, identity.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Club created", zap.String("clubID", club.ID), zap.String("ownerID", identity.UserID))
	publish(ctx, s.publisher, s.logger,
		events.NewClubCreated(*club, identity.UserID),
		events.NewMembershipCreated(*owner, identity.UserID))
	return club, nil
}

// GetClub returns a club. Active clubs are public; others need
// VIEW_CLUB_DETAILS in the club.
func (s *ClubService) GetClub(ctx context.Context, identity authorization.Identity, clubID string) (*entities.Club, error) {
	club, err := s.clubs.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, pkgerrors.NewNotFoundError("club")
	}
	if !club.IsActive() {
		if err := s.clubAuthz.RequireClubCapability(ctx, identity, clubID, authorization.CapabilityViewClubDetails); err != nil {
			// Hide non-public clubs from outsiders.
			if pkgerrors.IsForbidden(err) || pkgerrors.IsUnauthorized(err) {
				return nil, pkgerrors.NewNotFoundError("club")
			}
			return nil, err
		}
	}
	return club, nil
}

// ListClubs lists active clubs. Other statuses need MANAGE_ALL_CLUBS.
func (s *ClubService) ListClubs(ctx context.Context, identity authorization.Identity, opts ports.ListClubsOptions) (common.Page[entities.Club], error) {
	if opts.Status == "" {
		opts.Status = entities.ClubStatusActive
	}
	if !opts.Status.IsValid() {
		return common.Page[entities.Club]{}, pkgerrors.NewFieldError("status", "status must be one of: active suspended archived")
	}
	if opts.Status != entities.ClubStatusActive {
		result := s.authz.Authorize(identity, authorization.CapabilityManageAllClubs, "clubs")
		if !result.Granted {
			return common.Page[entities.Club]{}, pkgerrors.NewAuthorizationError(string(result.Capability), identity.UserID, result.Resource)
		}
	}
	return s.clubs.ListClubs(ctx, opts)
}

// UpdateClub applies a partial update. Details need EDIT_CLUB_DETAILS,
// archival needs ARCHIVE_CLUB and suspension or reactivation needs MANAGE_ALL_CLUBS.
func (s *ClubService) UpdateClub(ctx context.Context, identity authorization.Identity, clubID string, input entities.UpdateClubInput) (*entities.Club, error) {
	if err := s.clubAuthz.RequireClubCapability(ctx, identity, clubID, authorization.CapabilityEditClubDetails); err != nil {
		return nil, err
	}

	before, err := s.clubs.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, pkgerrors.NewNotFoundError("club")
	}
	if input.IsEmpty() {
		return before, nil
	}

	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.NewFieldError("status", "status must be one of: active suspended archived")
	}
	if input.Status != nil && *input.Status != before.Status {
		if err := s.authorizeStatusChange(ctx, identity, clubID, *input.Status); err != nil {
			return nil, err
		}
	}
	if input.Name != nil {
		unique, err := s.clubs.IsClubNameUnique(ctx, *input.Name, clubID)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, nameTaken(*input.Name)
		}
	}

	after, err := s.clubs.UpdateClub(ctx, clubID, input)
	if err != nil {
		return nil, err
	}

	var evts []events.DomainEvent
	if after.Status != before.Status {
		evts = append(evts, events.NewClubStatusChanged(*before, *after, identity.UserID))
	}
	if detailsChanged(*before, *after) {
		evts = append(evts, events.NewClubUpdated(*before, *after, identity.UserID))
	}
	publish(ctx, s.publisher, s.logger, evts...)
	return after, nil
}

func (s *ClubService) authorizeStatusChange(ctx context.Context, identity authorization.Identity, clubID string, to entities.ClubStatus) error {
	if to == entities.ClubStatusArchived {
		return s.clubAuthz.RequireClubCapability(ctx, identity, clubID, authorization.CapabilityArchiveClub)
	}
	result := s.authz.Authorize(identity, authorization.CapabilityManageAllClubs, authorization.ClubResource(clubID))
	if !result.Granted {
		return pkgerrors.NewAuthorizationError(string(result.Capability), identity.UserID, result.Resource)
	}
	return nil
}

func detailsChanged(before, after entities.Club) bool {
	return before.Name != after.Name ||
		before.Description != after.Description ||
		before.City != after.City ||
		before.LogoURL != after.LogoURL
}
