package ports

import (
	"context"

	"clubhub-backend/domain/core/entities"
	"clubhub-backend/domain/events"
	"clubhub-backend/pkg/common"
)

// ListClubsOptions filters and pages the club listing
type ListClubsOptions struct {
	common.PageRequest
	Status entities.ClubStatus
}

// ListMembersOptions filters and pages a club's member listing.
// Role narrows the key condition; Status is applied as a filter.
type ListMembersOptions struct {
	common.PageRequest
	Role   entities.MembershipRole
	Status entities.MembershipStatus
}

// ClubMember is a membership enriched with the member's profile
type ClubMember struct {
	entities.Membership
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// ClubRepository defines the interface for club persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type ClubRepository interface {
	// GetClubByID returns nil when the club does not exist
	GetClubByID(ctx context.Context, id string) (*entities.Club, error)

	// ListClubs pages through clubs ordered by name
	ListClubs(ctx context.Context, opts ListClubsOptions) (common.Page[entities.Club], error)

	// CreateClub stores the club and its name index entry atomically
	CreateClub(ctx context.Context, input entities.CreateClubInput) (*entities.Club, error)

	// CreateClubWithOwner stores the club, its name index entry and an active
	// owner membership for ownerID atomically
	CreateClubWithOwner(ctx context.Context, input entities.CreateClubInput, ownerID string) (*entities.Club, *entities.Membership, error)

	// UpdateClub merges input into the stored club
	UpdateClub(ctx context.Context, id string, input entities.UpdateClubInput) (*entities.Club, error)

	// IsClubNameUnique reports whether no other club uses the name, ignoring excludeID
	IsClubNameUnique(ctx context.Context, name string, excludeID string) (bool, error)
}

// MembershipRepository defines the interface for membership persistence.
// Every role or status change rewrites all projections of the membership.
type MembershipRepository interface {
	// GetMembershipByClubAndUser returns nil when absent. Always a fresh read.
	GetMembershipByClubAndUser(ctx context.Context, clubID, userID string) (*entities.Membership, error)

	ListClubMembers(ctx context.Context, clubID string, opts ListMembersOptions) (common.Page[ClubMember], error)
	ListUserMemberships(ctx context.Context, userID string, status entities.MembershipStatus) ([]entities.Membership, error)

	CreateMembership(ctx context.Context, clubID, userID string, input entities.CreateMembershipInput, role entities.MembershipRole, status entities.MembershipStatus) (*entities.Membership, error)
	UpdateMembershipStatusByClubAndUser(ctx context.Context, clubID, userID string, status entities.MembershipStatus, processedBy, reason string) (*entities.Membership, error)
	UpdateMembershipRoleByClubAndUser(ctx context.Context, clubID, userID string, role entities.MembershipRole, processedBy string) (*entities.Membership, error)

	// ID-only access is not supported by the key layout; these always fail.
	GetMembershipByID(ctx context.Context, membershipID string) (*entities.Membership, error)
	UpdateMembershipRole(ctx context.Context, membershipID string, role entities.MembershipRole) (*entities.Membership, error)
	UpdateMembershipStatus(ctx context.Context, membershipID string, status entities.MembershipStatus) (*entities.Membership, error)

	IsUserMember(ctx context.Context, clubID, userID string) (bool, error)
	GetUserRoleInClub(ctx context.Context, clubID, userID string) (entities.MembershipRole, error)
	CountClubMembers(ctx context.Context, clubID string) (int, error)
	GetClubOwner(ctx context.Context, clubID string) (*ClubMember, error)
	GetClubAdmins(ctx context.Context, clubID string) ([]ClubMember, error)
	HasPendingMembershipRequest(ctx context.Context, clubID, userID string) (bool, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// GetUserByID returns nil when absent
	GetUserByID(ctx context.Context, id string) (*entities.User, error)

	// CreateUser is idempotent: an existing user with the same ID is returned as is
	CreateUser(ctx context.Context, input entities.CreateUserInput) (*entities.User, error)

	UpdateUser(ctx context.Context, id string, input entities.UpdateUserInput) (*entities.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// EventPublisher delivers domain events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
