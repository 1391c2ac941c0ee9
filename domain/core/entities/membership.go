package entities

import (
	"fmt"
	"time"

	"clubhub-backend/domain/core/valueobjects"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/utils"
)

// MembershipRole is a member's role inside a club
type MembershipRole string

const (
	RoleMember  MembershipRole = "member"
	RoleCaptain MembershipRole = "captain"
	RoleAdmin   MembershipRole = "admin"
	RoleOwner   MembershipRole = "owner"
)

// Level orders roles: member < captain < admin < owner. Unknown roles are 0.
func (r MembershipRole) Level() int {
	switch r {
	case RoleMember:
		return 1
	case RoleCaptain:
		return 2
	case RoleAdmin:
		return 3
	case RoleOwner:
		return 4
	}
	return 0
}

// IsValid reports whether r is a known role
func (r MembershipRole) IsValid() bool {
	return r.Level() > 0
}

// MembershipStatus is the lifecycle state of a membership
type MembershipStatus string

const (
	MembershipStatusPending   MembershipStatus = "pending"
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusSuspended MembershipStatus = "suspended"
	MembershipStatusRemoved   MembershipStatus = "removed"
)

// IsValid reports whether s is a known membership status
func (s MembershipStatus) IsValid() bool {
	switch s {
	case MembershipStatusPending, MembershipStatusActive, MembershipStatusSuspended, MembershipStatusRemoved:
		return true
	}
	return false
}

var membershipTransitions = map[MembershipStatus][]MembershipStatus{
	MembershipStatusPending:   {MembershipStatusActive, MembershipStatusRemoved},
	MembershipStatusActive:    {MembershipStatusSuspended, MembershipStatusRemoved},
	MembershipStatusSuspended: {MembershipStatusActive, MembershipStatusRemoved},
	MembershipStatusRemoved:   {},
}

// IsValidMembershipStatusTransition reports whether a membership may move
// between two statuses. Removed is terminal.
func IsValidMembershipStatusTransition(from, to MembershipStatus) bool {
	for _, next := range membershipTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidRoleTransition allows any change among member, captain and admin.
// Owner is never a source or a target.
func IsValidRoleTransition(from, to MembershipRole) bool {
	if from == to || from == RoleOwner || to == RoleOwner {
		return false
	}
	return from.IsValid() && to.IsValid()
}

// Membership links a user to a club. One exists per (ClubID, UserID).
type Membership struct {
	MembershipID string           `json:"membershipId" validate:"required"`
	ClubID       string           `json:"clubId" validate:"required"`
	UserID       string           `json:"userId" validate:"required"`
	Role         MembershipRole   `json:"role" validate:"required,oneof=member captain admin owner"`
	Status       MembershipStatus `json:"status" validate:"required,oneof=pending active suspended removed"`
	JoinedAt     time.Time        `json:"joinedAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	JoinMessage  string           `json:"joinMessage,omitempty" validate:"max=500"`
	InvitedBy    string           `json:"invitedBy,omitempty"`
	ProcessedBy  string           `json:"processedBy,omitempty"`
	ProcessedAt  *time.Time       `json:"processedAt,omitempty"`
	Reason       string           `json:"reason,omitempty" validate:"max=500"`
}

// CreateMembershipInput carries optional fields of a new membership
type CreateMembershipInput struct {
	JoinMessage string `json:"joinMessage,omitempty"`
	InvitedBy   string `json:"invitedBy,omitempty"`
}

// NewMembership validates and builds a membership in the given role and status.
func NewMembership(clubID, userID string, input CreateMembershipInput, role MembershipRole, status MembershipStatus) (Membership, error) {
	if !valueobjects.IsValidID(clubID) {
		return Membership{}, pkgerrors.NewFieldError("clubId", "clubId is invalid")
	}
	if !valueobjects.IsValidID(userID) {
		return Membership{}, pkgerrors.NewFieldError("userId", "userId is invalid")
	}
	now := utils.Now()
	m := Membership{
		MembershipID: valueobjects.NewID(),
		ClubID:       clubID,
		UserID:       userID,
		Role:         role,
		Status:       status,
		JoinedAt:     now,
		UpdatedAt:    now,
		JoinMessage:  input.JoinMessage,
		InvitedBy:    input.InvitedBy,
	}
	if err := m.Validate(); err != nil {
		return Membership{}, err
	}
	return m, nil
}

// Validate checks every field constraint of the membership
func (m Membership) Validate() error {
	return utils.ValidateStruct(m)
}

func (m Membership) IsActive() bool  { return m.Status == MembershipStatusActive }
func (m Membership) IsPending() bool { return m.Status == MembershipStatusPending }
func (m Membership) IsOwner() bool   { return m.Role == RoleOwner }

func ownerProtected(action string) error {
	return pkgerrors.NewValidationError(fmt.Sprintf("owner membership cannot be %s; use ownership transfer instead", action)).
		WithCode(pkgerrors.CodeOwnerProtected)
}

// TransitionStatus moves the membership to a new status, recording who
// processed it and when. Owner memberships are rejected.
func (m Membership) TransitionStatus(to MembershipStatus, processedBy, reason string) (Membership, error) {
	if m.IsOwner() {
		return Membership{}, ownerProtected(statusVerb(to))
	}
	if !to.IsValid() {
		return Membership{}, pkgerrors.NewFieldError("status", "status must be one of: pending active suspended removed")
	}
	if !IsValidMembershipStatusTransition(m.Status, to) {
		return Membership{}, pkgerrors.NewInvalidTransitionError("membership status", string(m.Status), string(to))
	}

	now := utils.Now()
	next := m
	next.Status = to
	next.ProcessedBy = processedBy
	next.ProcessedAt = &now
	next.UpdatedAt = now
	if reason != "" {
		next.Reason = reason
	}
	if err := next.Validate(); err != nil {
		return Membership{}, err
	}
	return next, nil
}

// Activate approves a pending request or lifts a suspension.
func (m Membership) Activate(processedBy string) (Membership, error) {
	return m.TransitionStatus(MembershipStatusActive, processedBy, "")
}

// Suspend moves an active membership to suspended.
func (m Membership) Suspend(processedBy, reason string) (Membership, error) {
	return m.TransitionStatus(MembershipStatusSuspended, processedBy, reason)
}

// Remove ends the membership. Removal is terminal.
func (m Membership) Remove(processedBy, reason string) (Membership, error) {
	return m.TransitionStatus(MembershipStatusRemoved, processedBy, reason)
}

// ChangeRole assigns a new non-owner role to a pending, active or suspended membership.
func (m Membership) ChangeRole(to MembershipRole, processedBy string) (Membership, error) {
	if m.IsOwner() {
		return Membership{}, ownerProtected("demoted")
	}
	if to == RoleOwner {
		return Membership{}, ownerProtected("assigned directly")
	}
	if m.Status == MembershipStatusRemoved {
		return Membership{}, pkgerrors.NewValidationError("cannot change the role of a removed membership").
			WithCode(pkgerrors.CodeInvalidTransition)
	}
	if !IsValidRoleTransition(m.Role, to) {
		return Membership{}, pkgerrors.NewInvalidTransitionError("role", string(m.Role), string(to))
	}

	now := utils.Now()
	next := m
	next.Role = to
	next.ProcessedBy = processedBy
	next.ProcessedAt = &now
	next.UpdatedAt = now
	return next, nil
}

func statusVerb(s MembershipStatus) string {
	switch s {
	case MembershipStatusSuspended:
		return "suspended"
	case MembershipStatusRemoved:
		return "removed"
	}
	return "changed to " + string(s)
}
