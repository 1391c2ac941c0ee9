// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/domain/events"
	"clubhub-backend/pkg/common"
)

// MockClubRepository is a mock of ports.ClubRepository
type MockClubRepository struct {
	mock.Mock
}

func (m *MockClubRepository) GetClubByID(ctx context.Context, id string) (*entities.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Club), args.Error(1)
}

func (m *MockClubRepository) ListClubs(ctx context.Context, opts ports.ListClubsOptions) (common.Page[entities.Club], error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(common.Page[entities.Club]), args.Error(1)
}

func (m *MockClubRepository) CreateClub(ctx context.Context, input entities.CreateClubInput) (*entities.Club, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Club), args.Error(1)
}

func (m *MockClubRepository) CreateClubWithOwner(ctx context.Context, input entities.CreateClubInput, ownerID string) (*entities.Club, *entities.Membership, error) {
	args := m.Called(ctx, input, ownerID)
	var (
		club  *entities.Club
		owner *entities.Membership
	)
	if v := args.Get(0); v != nil {
		club = v.(*entities.Club)
	}
	if v := args.Get(1); v != nil {
		owner = v.(*entities.Membership)
	}
	return club, owner, args.Error(2)
}

func (m *MockClubRepository) UpdateClub(ctx context.Context, id string, input entities.UpdateClubInput) (*entities.Club, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Club), args.Error(1)
}

func (m *MockClubRepository) IsClubNameUnique(ctx context.Context, name string, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockMembershipRepository is a mock of ports.MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) membership(args mock.Arguments) (*entities.Membership, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Membership), args.Error(1)
}

func (m *MockMembershipRepository) GetMembershipByClubAndUser(ctx context.Context, clubID, userID string) (*entities.Membership, error) {
	return m.membership(m.Called(ctx, clubID, userID))
}

func (m *MockMembershipRepository) ListClubMembers(ctx context.Context, clubID string, opts ports.ListMembersOptions) (common.Page[ports.ClubMember], error) {
	args := m.Called(ctx, clubID, opts)
	return args.Get(0).(common.Page[ports.ClubMember]), args.Error(1)
}

func (m *MockMembershipRepository) ListUserMemberships(ctx context.Context, userID string, status entities.MembershipStatus) ([]entities.Membership, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Membership), args.Error(1)
}

func (m *MockMembershipRepository) CreateMembership(ctx context.Context, clubID, userID string, input entities.CreateMembershipInput, role entities.MembershipRole, status entities.MembershipStatus) (*entities.Membership, error) {
	return m.membership(m.Called(ctx, clubID, userID, input, role, status))
}

func (m *MockMembershipRepository) UpdateMembershipStatusByClubAndUser(ctx context.Context, clubID, userID string, status entities.MembershipStatus, processedBy, reason string) (*entities.Membership, error) {
	return m.membership(m.Called(ctx, clubID, userID, status, processedBy, reason))
}

func (m *MockMembershipRepository) UpdateMembershipRoleByClubAndUser(ctx context.Context, clubID, userID string, role entities.MembershipRole, processedBy string) (*entities.Membership, error) {
	return m.membership(m.Called(ctx, clubID, userID, role, processedBy))
}

func (m *MockMembershipRepository) GetMembershipByID(ctx context.Context, membershipID string) (*entities.Membership, error) {
	return m.membership(m.Called(ctx, membershipID))
}

func (m *MockMembershipRepository) UpdateMembershipRole(ctx context.Context, membershipID string, role entities.MembershipRole) (*entities.Membership, error) {
	return m.membership(m.Called(ctx, membershipID, role))
}

func (m *MockMembershipRepository) UpdateMembershipStatus(ctx context.Context, membershipID string, status entities.MembershipStatus) (*entities.Membership, error) {
	return m.membership(m.Called(ctx, membershipID, status))
}

func (m *MockMembershipRepository) IsUserMember(ctx context.Context, clubID, userID string) (bool, error) {
	args := m.Called(ctx, clubID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) GetUserRoleInClub(ctx context.Context, clubID, userID string) (entities.MembershipRole, error) {
	args := m.Called(ctx, clubID, userID)
	return args.Get(0).(entities.MembershipRole), args.Error(1)
}

func (m *MockMembershipRepository) CountClubMembers(ctx context.Context, clubID string) (int, error) {
	args := m.Called(ctx, clubID)
	return args.Int(0), args.Error(1)
}

func (m *MockMembershipRepository) GetClubOwner(ctx context.Context, clubID string) (*ports.ClubMember, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ClubMember), args.Error(1)
}

func (m *MockMembershipRepository) GetClubAdmins(ctx context.Context, clubID string) ([]ports.ClubMember, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ClubMember), args.Error(1)
}

func (m *MockMembershipRepository) HasPendingMembershipRequest(ctx context.Context, clubID, userID string) (bool, error) {
	args := m.Called(ctx, clubID, userID)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, input entities.CreateUserInput) (*entities.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, id string, input entities.UpdateUserInput) (*entities.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UserExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

var (
	_ ports.ClubRepository       = (*MockClubRepository)(nil)
	_ ports.MembershipRepository = (*MockMembershipRepository)(nil)
	_ ports.UserRepository       = (*MockUserRepository)(nil)
	_ ports.EventPublisher       = (*MockEventPublisher)(nil)
)
