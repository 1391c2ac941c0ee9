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

// MembershipService orchestrates joining, moderation and role changes
type MembershipService struct {
	clubs       ports.ClubRepository
	memberships ports.MembershipRepository
	clubAuthz   *ClubAuthorizationService
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	clubs ports.ClubRepository,
	memberships ports.MembershipRepository,
	clubAuthz *ClubAuthorizationService,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		clubs:       clubs,
		memberships: memberships,
		clubAuthz:   clubAuthz,
		publisher:   publisher,
		logger:      logger,
	}
}

// JoinClub files a pending membership request for the caller
func (s *MembershipService) JoinClub(ctx context.Context, identity authorization.Identity, clubID string, input entities.CreateMembershipInput) (*entities.Membership, error) {
	if !identity.Valid() {
		return nil, pkgerrors.NewUnauthorizedError("authentication required")
	}
	club, err := s.clubs.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, pkgerrors.NewNotFoundError("club")
	}
	if !club.IsActive() {
		return nil, pkgerrors.NewValidationError("club is not accepting members").
			WithDetail("status", string(club.Status))
	}

	existing, err := s.memberships.GetMembershipByClubAndUser(ctx, clubID, identity.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("membership already exists").
			WithCode(pkgerrors.CodeMembershipExists).
			WithDetail("status", string(existing.Status))
	}

	input.InvitedBy = ""
	m, err := s.memberships.CreateMembership(ctx, clubID, identity.UserID, input, entities.RoleMember, entities.MembershipStatusPending)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, s.logger, events.NewMembershipCreated(*m, identity.UserID))
	return m, nil
}

// ApproveMembership activates a pending request
func (s *MembershipService) ApproveMembership(ctx context.Context, identity authorization.Identity, clubID, userID string) (*entities.Membership, error) {
	return s.decideRequest(ctx, identity, clubID, userID, entities.MembershipStatusActive, "")
}

// RejectMembership removes a pending request
func (s *MembershipService) RejectMembership(ctx context.Context, identity authorization.Identity, clubID, userID, reason string) (*entities.Membership, error) {
	return s.decideRequest(ctx, identity, clubID, userID, entities.MembershipStatusRemoved, reason)
}

func (s *MembershipService) decideRequest(ctx context.Context, identity authorization.Identity, clubID, userID string, to entities.MembershipStatus, reason string) (*entities.Membership, error) {
	if err := s.clubAuthz.RequireClubCapability(ctx, identity, clubID, authorization.CapabilityApproveJoinRequests); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if !current.IsPending() {
		return nil, pkgerrors.NewInvalidTransitionError("membership status", string(current.Status), string(to))
	}
	return s.changeStatus(ctx, identity, *current, to, reason)
}

// SuspendMember suspends an active member
func (s *MembershipService) SuspendMember(ctx context.Context, identity authorization.Identity, clubID, userID, reason string) (*entities.Membership, error) {
	return s.moderate(ctx, identity, clubID, userID, entities.MembershipStatusSuspended, reason)
}

// ReactivateMember lifts a suspension
func (s *MembershipService) ReactivateMember(ctx context.Context, identity authorization.Identity, clubID, userID string) (*entities.Membership, error) {
	return s.moderate(ctx, identity, clubID, userID, entities.MembershipStatusActive, "")
}

// RemoveMember ends a membership
func (s *MembershipService) RemoveMember(ctx context.Context, identity authorization.Identity, clubID, userID, reason string) (*entities.Membership, error) {
	return s.moderate(ctx, identity, clubID, userID, entities.MembershipStatusRemoved, reason)
}

// UpdateMemberStatus dispatches an arbitrary status change to the matching operation
func (s *MembershipService) UpdateMemberStatus(ctx context.Context, identity authorization.Identity, clubID, userID string, to entities.MembershipStatus, reason string) (*entities.Membership, error) {
	if !to.IsValid() {
		return nil, pkgerrors.NewFieldError("status", "status must be one of: pending active suspended removed")
	}
	current, err := s.load(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if current.IsPending() {
		return s.decideRequest(ctx, identity, clubID, userID, to, reason)
	}
	return s.moderate(ctx, identity, clubID, userID, to, reason)
}

func (s *MembershipService) moderate(ctx context.Context, identity authorization.Identity, clubID, userID string, to entities.MembershipStatus, reason string) (*entities.Membership, error) {
	current, err := s.load(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, identity, clubID, current.Role); err != nil {
		return nil, err
	}
	return s.changeStatus(ctx, identity, *current, to, reason)
}

// ChangeMemberRole assigns a new non-owner role to a member
func (s *MembershipService) ChangeMemberRole(ctx context.Context, identity authorization.Identity, clubID, userID string, role entities.MembershipRole) (*entities.Membership, error) {
	if err := s.clubAuthz.ValidateRoleAssignment(ctx, identity, clubID, role); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, identity, clubID, current.Role); err != nil {
		return nil, err
	}

	after, err := s.memberships.UpdateMembershipRoleByClubAndUser(ctx, clubID, userID, role, identity.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Member role changed",
		zap.String("clubID", clubID),
		zap.String("userID", userID),
		zap.String("from", string(current.Role)),
		zap.String("to", string(after.Role)),
		zap.String("by", identity.UserID))
	publish(ctx, s.publisher, s.logger, events.NewMembershipRoleChanged(*current, *after))
	return after, nil
}

// LeaveClub removes the caller's own membership. Owners must transfer
// ownership first.
func (s *MembershipService) LeaveClub(ctx context.Context, identity authorization.Identity, clubID string) (*entities.Membership, error) {
	if err := s.clubAuthz.RequireClubCapability(ctx, identity, clubID, authorization.CapabilityLeaveClub); err != nil {
		// A pending requester may withdraw without the capability.
		m, loadErr := s.memberships.GetMembershipByClubAndUser(ctx, clubID, identity.UserID)
		if loadErr != nil || m == nil || !m.IsPending() {
			return nil, err
		}
	}
	current, err := s.load(ctx, clubID, identity.UserID)
	if err != nil {
		return nil, err
	}
	return s.changeStatus(ctx, identity, *current, entities.MembershipStatusRemoved, "left the club")
}

// ListClubMembers pages through a club's members with profile data
func (s *MembershipService) ListClubMembers(ctx context.Context, identity authorization.Identity, clubID string, opts ports.ListMembersOptions) (common.Page[ports.ClubMember], error) {
	if err := s.clubAuthz.RequireClubCapability(ctx, identity, clubID, authorization.CapabilityViewClubMembers); err != nil {
		return common.Page[ports.ClubMember]{}, err
	}
	return s.memberships.ListClubMembers(ctx, clubID, opts)
}

// GetMember returns one member of the club
func (s *MembershipService) GetMember(ctx context.Context, identity authorization.Identity, clubID, userID string) (*entities.Membership, error) {
	if identity.UserID != userID {
		if err := s.clubAuthz.RequireClubCapability(ctx, identity, clubID, authorization.CapabilityViewClubMembers); err != nil {
			return nil, err
		}
	}
	return s.load(ctx, clubID, userID)
}

// ListMyMemberships lists the caller's memberships, optionally by status
func (s *MembershipService) ListMyMemberships(ctx context.Context, identity authorization.Identity, status entities.MembershipStatus) ([]entities.Membership, error) {
	if !identity.Valid() {
		return nil, pkgerrors.NewUnauthorizedError("authentication required")
	}
	return s.memberships.ListUserMemberships(ctx, identity.UserID, status)
}

func (s *MembershipService) load(ctx context.Context, clubID, userID string) (*entities.Membership, error) {
	m, err := s.memberships.GetMembershipByClubAndUser(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, pkgerrors.NewNotFoundError("membership")
	}
	return m, nil
}

func (s *MembershipService) requireManage(ctx context.Context, identity authorization.Identity, clubID string, targetRole entities.MembershipRole) error {
	ok, err := s.clubAuthz.CanManageMember(ctx, identity, clubID, targetRole)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.NewAuthorizationError(string(authorization.CapabilityManageClubMembers), identity.UserID, authorization.ClubResource(clubID)).
			WithDetail("targetRole", string(targetRole))
	}
	return nil
}

func (s *MembershipService) changeStatus(ctx context.Context, identity authorization.Identity, current entities.Membership, to entities.MembershipStatus, reason string) (*entities.Membership, error) {
	after, err := s.memberships.UpdateMembershipStatusByClubAndUser(ctx, current.ClubID, current.UserID, to, identity.UserID, reason)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Membership status changed",
		zap.String("clubID", current.ClubID),
		zap.String("userID", current.UserID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(after.Status)),
		zap.String("by", identity.UserID))
	publish(ctx, s.publisher, s.logger, events.NewMembershipStatusChanged(current, *after))
	return after, nil
}
