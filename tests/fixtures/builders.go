// Package fixtures builds domain values with sensible defaults for tests.
package fixtures

import (
	"time"

	"github.com/google/uuid"

	"clubhub-backend/domain/authorization"
	"clubhub-backend/domain/core/entities"
)

var fixedTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// ClubBuilder helps create test clubs
type ClubBuilder struct {
	club entities.Club
}

func NewClubBuilder() *ClubBuilder {
	return &ClubBuilder{club: entities.Club{
		ID:        uuid.New().String(),
		Name:      "Test Club",
		Status:    entities.ClubStatusActive,
		City:      "Lisbon",
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}}
}

func (b *ClubBuilder) WithID(id string) *ClubBuilder {
	b.club.ID = id
	return b
}

func (b *ClubBuilder) WithName(name string) *ClubBuilder {
	b.club.Name = name
	return b
}

func (b *ClubBuilder) WithStatus(status entities.ClubStatus) *ClubBuilder {
	b.club.Status = status
	return b
}

func (b *ClubBuilder) Build() *entities.Club {
	c := b.club
	return &c
}

// MembershipBuilder helps create test memberships
type MembershipBuilder struct {
	m entities.Membership
}

func NewMembershipBuilder() *MembershipBuilder {
	return &MembershipBuilder{m: entities.Membership{
		MembershipID: uuid.New().String(),
		ClubID:       "club-1",
		UserID:       "user-1",
		Role:         entities.RoleMember,
		Status:       entities.MembershipStatusActive,
		JoinedAt:     fixedTime,
		UpdatedAt:    fixedTime,
	}}
}

func (b *MembershipBuilder) WithClubID(clubID string) *MembershipBuilder {
	b.m.ClubID = clubID
	return b
}

func (b *MembershipBuilder) WithUserID(userID string) *MembershipBuilder {
	b.m.UserID = userID
	return b
}

func (b *MembershipBuilder) WithRole(role entities.MembershipRole) *MembershipBuilder {
	b.m.Role = role
	return b
}

func (b *MembershipBuilder) WithStatus(status entities.MembershipStatus) *MembershipBuilder {
	b.m.Status = status
	return b
}

func (b *MembershipBuilder) Build() *entities.Membership {
	m := b.m
	return &m
}

// UserBuilder helps create test users
type UserBuilder struct {
	u entities.User
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{u: entities.User{
		ID:          "user-1",
		Email:       "user1@example.com",
		DisplayName: "User One",
		SystemRole:  entities.SystemRoleUser,
		CreatedAt:   fixedTime,
		UpdatedAt:   fixedTime,
	}}
}

func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.u.ID = id
	return b
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.u.DisplayName = name
	return b
}

func (b *UserBuilder) AsSiteAdmin() *UserBuilder {
	b.u.SystemRole = entities.SystemRoleSiteAdmin
	return b
}

func (b *UserBuilder) Build() *entities.User {
	u := b.u
	return &u
}

// Identity returns an authenticated identity with the User system role
func Identity(userID string) authorization.Identity {
	return authorization.Identity{
		UserID:          userID,
		Email:           userID + "@example.com",
		SystemRole:      entities.SystemRoleUser,
		IsAuthenticated: true,
	}
}

// SiteAdmin returns an authenticated identity with the SiteAdmin system role
func SiteAdmin(userID string) authorization.Identity {
	id := Identity(userID)
	id.SystemRole = entities.SystemRoleSiteAdmin
	return id
}
