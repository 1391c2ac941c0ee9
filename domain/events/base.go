package events

import (
	"time"

	"clubhub-backend/domain/core/entities"
)

// Event types published to the bus.
const (
	TypeClubCreated             = "club.created"
	TypeClubUpdated             = "club.updated"
	TypeClubStatusChanged       = "club.status_changed"
	TypeMembershipRequested     = "membership.requested"
	TypeMembershipCreated       = "membership.created"
	TypeMembershipStatusChanged = "membership.status_changed"
	TypeMembershipRoleChanged   = "membership.role_changed"
	TypeUserCreated             = "user.created"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
	GetActorID() string
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
	ActorID     string    `json:"actor_id,omitempty"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }
func (e BaseEvent) GetActorID() string      { return e.ActorID }

func newBase(aggregateID, eventType, actorID string, at time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   at,
		Version:     1,
		ActorID:     actorID,
	}
}

// Club Events

// ClubCreated is raised when a club and its owner membership are stored
type ClubCreated struct {
	BaseEvent
	ClubID  string `json:"club_id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

func NewClubCreated(club entities.Club, ownerID string) ClubCreated {
	return ClubCreated{
		BaseEvent: newBase(club.ID, TypeClubCreated, ownerID, club.CreatedAt),
		ClubID:    club.ID,
		Name:      club.Name,
		OwnerID:   ownerID,
	}
}

// ClubUpdated is raised when club details change
type ClubUpdated struct {
	BaseEvent
	ClubID  string `json:"club_id"`
	Name    string `json:"name"`
	OldName string `json:"old_name,omitempty"`
}

func NewClubUpdated(before, after entities.Club, actorID string) ClubUpdated {
	e := ClubUpdated{
		BaseEvent: newBase(after.ID, TypeClubUpdated, actorID, after.UpdatedAt),
		ClubID:    after.ID,
		Name:      after.Name,
	}
	if before.Name != after.Name {
		e.OldName = before.Name
	}
	return e
}

// ClubStatusChanged is raised on suspension, reactivation or archival
type ClubStatusChanged struct {
	BaseEvent
	ClubID    string              `json:"club_id"`
	OldStatus entities.ClubStatus `json:"old_status"`
	NewStatus entities.ClubStatus `json:"new_status"`
}

func NewClubStatusChanged(before, after entities.Club, actorID string) ClubStatusChanged {
	return ClubStatusChanged{
		BaseEvent: newBase(after.ID, TypeClubStatusChanged, actorID, after.UpdatedAt),
		ClubID:    after.ID,
		OldStatus: before.Status,
		NewStatus: after.Status,
	}
}

// Membership Events

// MembershipCreated is raised for join requests and direct additions.
// Invitation delivery consumes it.
type MembershipCreated struct {
	BaseEvent
	MembershipID string                    `json:"membership_id"`
	ClubID       string                    `json:"club_id"`
	UserID       string                    `json:"user_id"`
	Role         entities.MembershipRole   `json:"role"`
	Status       entities.MembershipStatus `json:"status"`
	InvitedBy    string                    `json:"invited_by,omitempty"`
}

func NewMembershipCreated(m entities.Membership, actorID string) MembershipCreated {
	eventType := TypeMembershipCreated
	if m.IsPending() {
		eventType = TypeMembershipRequested
	}
	return MembershipCreated{
		BaseEvent:    newBase(m.MembershipID, eventType, actorID, m.JoinedAt),
		MembershipID: m.MembershipID,
		ClubID:       m.ClubID,
		UserID:       m.UserID,
		Role:         m.Role,
		Status:       m.Status,
		InvitedBy:    m.InvitedBy,
	}
}

// MembershipStatusChanged is raised on approval, suspension, removal or reactivation
type MembershipStatusChanged struct {
	BaseEvent
	ClubID    string                    `json:"club_id"`
	UserID    string                    `json:"user_id"`
	OldStatus entities.MembershipStatus `json:"old_status"`
	NewStatus entities.MembershipStatus `json:"new_status"`
	Reason    string                    `json:"reason,omitempty"`
}

func NewMembershipStatusChanged(before, after entities.Membership) MembershipStatusChanged {
	return MembershipStatusChanged{
		BaseEvent: newBase(after.MembershipID, TypeMembershipStatusChanged, after.ProcessedBy, after.UpdatedAt),
		ClubID:    after.ClubID,
		UserID:    after.UserID,
		OldStatus: before.Status,
		NewStatus: after.Status,
		Reason:    after.Reason,
	}
}

// MembershipRoleChanged is raised when a member is promoted or demoted
type MembershipRoleChanged struct {
	BaseEvent
	ClubID  string                  `json:"club_id"`
	UserID  string                  `json:"user_id"`
	OldRole entities.MembershipRole `json:"old_role"`
	NewRole entities.MembershipRole `json:"new_role"`
}

func NewMembershipRoleChanged(before, after entities.Membership) MembershipRoleChanged {
	return MembershipRoleChanged{
		BaseEvent: newBase(after.MembershipID, TypeMembershipRoleChanged, after.ProcessedBy, after.UpdatedAt),
		ClubID:    after.ClubID,
		UserID:    after.UserID,
		OldRole:   before.Role,
		NewRole:   after.Role,
	}
}

// User Events

// UserCreated is raised the first time an identity is seen
type UserCreated struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func NewUserCreated(u entities.User) UserCreated {
	return UserCreated{
		BaseEvent: newBase(u.ID, TypeUserCreated, u.ID, u.CreatedAt),
		UserID:    u.ID,
		Email:     u.Email,
	}
}
