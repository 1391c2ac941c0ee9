package entities

import (
	"time"

	"clubhub-backend/domain/core/valueobjects"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/utils"
)

// ClubStatus is the lifecycle state of a club
type ClubStatus string

const (
	ClubStatusActive    ClubStatus = "active"
	ClubStatusSuspended ClubStatus = "suspended"
	ClubStatusArchived  ClubStatus = "archived"
)

// IsValid reports whether s is a known club status
func (s ClubStatus) IsValid() bool {
	switch s {
	case ClubStatusActive, ClubStatusSuspended, ClubStatusArchived:
		return true
	}
	return false
}

// clubTransitions lists the allowed next states; archived is terminal.
var clubTransitions = map[ClubStatus][]ClubStatus{
	ClubStatusActive:    {ClubStatusSuspended, ClubStatusArchived},
	ClubStatusSuspended: {ClubStatusActive, ClubStatusArchived},
	ClubStatusArchived:  {},
}

// IsValidClubStatusTransition reports whether a club may move from one status to another.
func IsValidClubStatusTransition(from, to ClubStatus) bool {
	for _, next := range clubTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Club is a tenant of the platform. Values are immutable; mutators return copies.
type Club struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required,min=1,max=100"`
	Description string     `json:"description,omitempty" validate:"max=500"`
	Status      ClubStatus `json:"status" validate:"required,oneof=active suspended archived"`
	City        string     `json:"city,omitempty" validate:"max=50"`
	LogoURL     string     `json:"logoUrl,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateClubInput carries the caller-supplied fields of a new club
type CreateClubInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	City        string `json:"city,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// UpdateClubInput is a partial update; nil fields are left unchanged.
type UpdateClubInput struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	City        *string     `json:"city,omitempty"`
	LogoURL     *string     `json:"logoUrl,omitempty"`
	Status      *ClubStatus `json:"status,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (in UpdateClubInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.City == nil && in.LogoURL == nil && in.Status == nil
}

// NewClub validates input and returns an active club with a fresh ID.
func NewClub(input CreateClubInput) (Club, error) {
	now := utils.Now()
	club := Club{
		ID:          valueobjects.NewID(),
		Name:        valueobjects.NormalizeName(input.Name),
		Description: input.Description,
		Status:      ClubStatusActive,
		City:        input.City,
		LogoURL:     input.LogoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := club.Validate(); err != nil {
		return Club{}, err
	}
	return club, nil
}

// Validate checks every field constraint of the club
func (c Club) Validate() error {
	return utils.ValidateStruct(c)
}

// NameKey is the lower-cased, trimmed name used by the name index.
func (c Club) NameKey() string {
	return valueobjects.NameKey(c.Name)
}

// IsActive reports whether the club accepts activity
func (c Club) IsActive() bool {
	return c.Status == ClubStatusActive
}

// Apply merges a partial update and re-validates the whole club. A status
// change must follow the lifecycle graph; repeating the current status is a no-op.
func (c Club) Apply(in UpdateClubInput) (Club, error) {
	next := c
	if in.Name != nil {
		next.Name = valueobjects.NormalizeName(*in.Name)
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.City != nil {
		next.City = *in.City
	}
	if in.LogoURL != nil {
		next.LogoURL = *in.LogoURL
	}
	if in.Status != nil && *in.Status != c.Status {
		if !in.Status.IsValid() {
			return Club{}, pkgerrors.NewFieldError("status", "status must be one of: active suspended archived")
		}
		if !IsValidClubStatusTransition(c.Status, *in.Status) {
			return Club{}, pkgerrors.NewInvalidTransitionError("club status", string(c.Status), string(*in.Status))
		}
		next.Status = *in.Status
	}
	if err := next.Validate(); err != nil {
		return Club{}, err
	}
	next.UpdatedAt = utils.Now()
	return next, nil
}
