// Package authorization holds the static role to capability matrices and
// the identity record supplied by the upstream authenticator.
package authorization

import "clubhub-backend/domain/core/entities"

// Capability is a named permission granted by a role.
type Capability string

// System capabilities.
const (
	CapabilityManagePlatform Capability = "MANAGE_PLATFORM"
	CapabilityManageAllClubs Capability = "MANAGE_ALL_CLUBS"
)

// Club capabilities.
const (
	CapabilityViewClubDetails     Capability = "VIEW_CLUB_DETAILS"
	CapabilityViewClubMembers     Capability = "VIEW_CLUB_MEMBERS"
	CapabilityLeaveClub           Capability = "LEAVE_CLUB"
	CapabilityInviteMembers       Capability = "INVITE_MEMBERS"
	CapabilityManageClubMembers   Capability = "MANAGE_CLUB_MEMBERS"
	CapabilityApproveJoinRequests Capability = "APPROVE_JOIN_REQUESTS"
	CapabilityEditClubDetails     Capability = "EDIT_CLUB_DETAILS"
	CapabilityManageClubSettings  Capability = "MANAGE_CLUB_SETTINGS"
	CapabilityArchiveClub         Capability = "ARCHIVE_CLUB"
	CapabilityTransferOwnership   Capability = "TRANSFER_OWNERSHIP"
)

var systemCapabilityMatrix = map[entities.SystemRole][]Capability{
	entities.SystemRoleUser:      {},
	entities.SystemRoleSiteAdmin: {CapabilityManagePlatform, CapabilityManageAllClubs},
}

var (
	memberCapabilities  = []Capability{CapabilityViewClubDetails, CapabilityViewClubMembers, CapabilityLeaveClub}
	captainCapabilities = append(append([]Capability{}, memberCapabilities...), CapabilityInviteMembers)
	adminCapabilities   = append(append([]Capability{}, captainCapabilities...),
		CapabilityManageClubMembers, CapabilityApproveJoinRequests, CapabilityEditClubDetails)
	ownerCapabilities = append(append([]Capability{}, adminCapabilities...),
		CapabilityManageClubSettings, CapabilityArchiveClub, CapabilityTransferOwnership)
)

var clubCapabilityMatrix = map[entities.MembershipRole][]Capability{
	entities.RoleMember:  memberCapabilities,
	entities.RoleCaptain: captainCapabilities,
	entities.RoleAdmin:   adminCapabilities,
	entities.RoleOwner:   ownerCapabilities,
}

// DeriveCapabilities returns a copy of the system capabilities of role.
// Unknown roles, and any internal failure, yield an empty set.
func DeriveCapabilities(role entities.SystemRole) (caps []Capability) {
	defer func() {
		if recover() != nil {
			caps = []Capability{}
		}
	}()
	granted, ok := systemCapabilityMatrix[role]
	if !ok {
		return []Capability{}
	}
	return append([]Capability{}, granted...)
}

// ClubCapabilities returns a copy of the club capabilities of role.
func ClubCapabilities(role entities.MembershipRole) []Capability {
	return append([]Capability{}, clubCapabilityMatrix[role]...)
}

// RoleHasClubCapability reports whether role grants capability within a club.
func RoleHasClubCapability(role entities.MembershipRole, capability Capability) bool {
	return Contains(clubCapabilityMatrix[role], capability)
}

// Contains reports whether capability is in caps.
func Contains(caps []Capability, capability Capability) bool {
	for _, c := range caps {
		if c == capability {
			return true
		}
	}
	return false
}
