package services

import (
	"context"

	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/authorization"
	"clubhub-backend/domain/core/entities"
	pkgerrors "clubhub-backend/pkg/errors"
)

// ClubAuthorizationService decides club-scoped capabilities. Membership is
// always read live; only the platform override goes through the cache.
type ClubAuthorizationService struct {
	system      *AuthorizationService
	memberships ports.MembershipRepository
	logger      *zap.Logger
}

// NewClubAuthorizationService creates a new ClubAuthorizationService
func NewClubAuthorizationService(system *AuthorizationService, memberships ports.MembershipRepository, logger *zap.Logger) *ClubAuthorizationService {
	return &ClubAuthorizationService{
		system:      system,
		memberships: memberships,
		logger:      logger,
	}
}

func (s *ClubAuthorizationService) hasOverride(identity authorization.Identity) bool {
	return s.system.HasSystemCapability(identity, authorization.CapabilityManageAllClubs)
}

// activeRole returns the caller's role when their membership is active, or "".
func (s *ClubAuthorizationService) activeRole(ctx context.Context, identity authorization.Identity, clubID string) (entities.MembershipRole, error) {
	m, err := s.memberships.GetMembershipByClubAndUser(ctx, clubID, identity.UserID)
	if err != nil {
		return "", err
	}
	if m == nil || !m.IsActive() {
		return "", nil
	}
	return m.Role, nil
}

// RequireClubCapability returns nil when the caller holds capability in the
// club, and a structured authorization error otherwise. Storage failures are
// returned as is and never grant access.
func (s *ClubAuthorizationService) RequireClubCapability(ctx context.Context, identity authorization.Identity, clubID string, capability authorization.Capability) error {
	resource := authorization.ClubResource(clubID)
	if !identity.Valid() {
		return pkgerrors.NewUnauthorizedError("authentication required")
	}
	if s.hasOverride(identity) {
		s.system.audit(AuthorizationResult{
			Granted:    true,
			Reason:     "platform override " + string(authorization.CapabilityManageAllClubs),
			Capability: capability,
			UserID:     identity.UserID,
			Resource:   resource,
			Timestamp:  s.system.clock.Now().UTC(),
		})
		return nil
	}

	role, err := s.activeRole(ctx, identity, clubID)
	if err != nil {
		s.logger.Error("Club authorization failed closed",
			zap.String("userID", identity.UserID),
			zap.String("clubID", clubID),
			zap.String("capability", string(capability)),
			zap.Error(err))
		return err
	}

	result := AuthorizationResult{
		Capability: capability,
		UserID:     identity.UserID,
		Resource:   resource,
		Timestamp:  s.system.clock.Now().UTC(),
	}
	switch {
	case role == "":
		result.Reason = "no active membership"
	case authorization.RoleHasClubCapability(role, capability):
		result.Granted = true
		result.Reason = "granted by club role " + string(role)
	default:
		result.Reason = "club role " + string(role) + " lacks " + string(capability)
	}
	s.system.audit(result)

	if !result.Granted {
		return pkgerrors.NewAuthorizationError(string(capability), identity.UserID, resource)
	}
	return nil
}

// HasClubCapability is the boolean form of RequireClubCapability. Denials
// are false with a nil error; storage failures are returned.
func (s *ClubAuthorizationService) HasClubCapability(ctx context.Context, identity authorization.Identity, clubID string, capability authorization.Capability) (bool, error) {
	err := s.RequireClubCapability(ctx, identity, clubID, capability)
	switch {
	case err == nil:
		return true, nil
	case pkgerrors.IsForbidden(err), pkgerrors.IsUnauthorized(err):
		return false, nil
	default:
		return false, err
	}
}

// CanManageMember reports whether the caller may act on a member holding targetRole.
// Owners are never manageable; others need MANAGE_CLUB_MEMBERS and a role at
// least as high as the target's.
func (s *ClubAuthorizationService) CanManageMember(ctx context.Context, identity authorization.Identity, clubID string, targetRole entities.MembershipRole) (bool, error) {
	if !identity.Valid() {
		return false, nil
	}
	if s.hasOverride(identity) {
		return true, nil
	}
	if targetRole == entities.RoleOwner {
		return false, nil
	}

	role, err := s.activeRole(ctx, identity, clubID)
	if err != nil {
		return false, err
	}
	if role == "" || !authorization.RoleHasClubCapability(role, authorization.CapabilityManageClubMembers) {
		return false, nil
	}
	return role.Level() >= targetRole.Level(), nil
}

// ValidateRoleAssignment checks that the caller may assign targetRole in the club.
// Owner is never assignable. Admin needs an owner; member and captain need an
// admin or owner. The platform override may assign any other role.
func (s *ClubAuthorizationService) ValidateRoleAssignment(ctx context.Context, identity authorization.Identity, clubID string, targetRole entities.MembershipRole) error {
	if !targetRole.IsValid() {
		return pkgerrors.NewFieldError("role", "role must be one of: member captain admin owner")
	}
	if targetRole == entities.RoleOwner {
		return pkgerrors.NewValidationError("owner role cannot be assigned; use ownership transfer instead").
			WithCode(pkgerrors.CodeOwnerProtected)
	}
	if !identity.Valid() {
		return pkgerrors.NewUnauthorizedError("authentication required")
	}
	if s.hasOverride(identity) {
		return nil
	}

	role, err := s.activeRole(ctx, identity, clubID)
	if err != nil {
		return err
	}
	resource := authorization.ClubResource(clubID)

	var allowed bool
	switch targetRole {
	case entities.RoleAdmin:
		allowed = role == entities.RoleOwner
	default:
		allowed = role == entities.RoleOwner || role == entities.RoleAdmin
	}
	if !allowed {
		return pkgerrors.NewAuthorizationError(string(authorization.CapabilityManageClubMembers), identity.UserID, resource).
			WithDetail("targetRole", string(targetRole))
	}
	return nil
}
