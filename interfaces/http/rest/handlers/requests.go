package handlers

import (
	"net/http"

	"clubhub-backend/domain/core/entities"
)

// CreateClubRequest represents the request body for creating a club
type CreateClubRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	City        string `json:"city,omitempty" validate:"max=50"`
	LogoURL     string `json:"logoUrl,omitempty" validate:"omitempty,url"`
}

func (r CreateClubRequest) toInput() entities.CreateClubInput {
	return entities.CreateClubInput{
		Name:        r.Name,
		Description: r.Description,
		City:        r.City,
		LogoURL:     r.LogoURL,
	}
}

// UpdateClubRequest represents a partial club update
type UpdateClubRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=50"`
	LogoURL     *string `json:"logoUrl,omitempty" validate:"omitempty,url"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active suspended archived"`
}

func (r UpdateClubRequest) toInput() entities.UpdateClubInput {
	in := entities.UpdateClubInput{
		Name:        r.Name,
		Description: r.Description,
		City:        r.City,
		LogoURL:     r.LogoURL,
	}
	if r.Status != nil {
		s := entities.ClubStatus(*r.Status)
		in.Status = &s
	}
	return in
}

// JoinClubRequest represents an optional join message
type JoinClubRequest struct {
	JoinMessage string `json:"joinMessage,omitempty" validate:"max=500"`
}

// ReasonRequest carries an optional moderation reason
type ReasonRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// UpdateMemberStatusRequest represents a membership status change
type UpdateMemberStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active suspended removed"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// ChangeRoleRequest represents a role assignment
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member captain admin owner"`
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

func (r UpdateProfileRequest) toInput() entities.UpdateUserInput {
	return entities.UpdateUserInput{
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
	}
}

// hasBody reports whether the request carries a body worth decoding
func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}
