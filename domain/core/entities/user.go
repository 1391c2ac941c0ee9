package entities

import (
	"strings"
	"time"

	"clubhub-backend/domain/core/valueobjects"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/utils"
)

// SystemRole is a platform-wide role independent of any club
type SystemRole string

const (
	SystemRoleUser      SystemRole = "User"
	SystemRoleSiteAdmin SystemRole = "SiteAdmin"
)

// IsValid reports whether r is a known system role
func (r SystemRole) IsValid() bool {
	return r == SystemRoleUser || r == SystemRoleSiteAdmin
}

// User is the local profile of an identity-provider subject. SystemRole is
// copied from the token claims on first access and is informational;
// authorization reads the role from the caller's claims.
type User struct {
	ID          string     `json:"id" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	DisplayName string     `json:"displayName" validate:"required,min=1,max=100"`
	AvatarURL   string     `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	SystemRole  SystemRole `json:"systemRole" validate:"required,oneof=User SiteAdmin"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateUserInput describes a user created on first authenticated access
type CreateUserInput struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	SystemRole  SystemRole `json:"systemRole,omitempty"`
}

// UpdateUserInput is a partial profile update. Email is not updatable.
type UpdateUserInput struct {
	DisplayName *string `json:"displayName,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (in UpdateUserInput) IsEmpty() bool {
	return in.DisplayName == nil && in.AvatarURL == nil
}

// Validate checks the provided fields only
func (in UpdateUserInput) Validate() error {
	errs := pkgerrors.NewValidationErrors()
	if in.DisplayName != nil {
		if err := utils.ValidateVar("displayName", strings.TrimSpace(*in.DisplayName), "required,min=1,max=100"); err != nil {
			errs.Add("displayName", pkgerrors.GetAppError(err).Message)
		}
	}
	if in.AvatarURL != nil {
		if err := utils.ValidateVar("avatarUrl", *in.AvatarURL, "omitempty,url"); err != nil {
			errs.Add("avatarUrl", pkgerrors.GetAppError(err).Message)
		}
	}
	return errs.AsAppError()
}

// NewUser builds a user. DisplayName defaults to the local part of the email
// and SystemRole defaults to User.
func NewUser(input CreateUserInput) (User, error) {
	if !valueobjects.IsValidID(input.ID) {
		return User{}, pkgerrors.NewFieldError("id", "id is invalid")
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(input.Email, "@", 2)[0]
	}
	role := input.SystemRole
	if role == "" {
		role = SystemRoleUser
	}

	now := utils.Now()
	u := User{
		ID:          input.ID,
		Email:       strings.TrimSpace(input.Email),
		DisplayName: displayName,
		AvatarURL:   input.AvatarURL,
		SystemRole:  role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Validate checks every field constraint of the user
func (u User) Validate() error {
	return utils.ValidateStruct(u)
}

// IsSiteAdmin reports whether the user holds the platform admin role
func (u User) IsSiteAdmin() bool {
	return u.SystemRole == SystemRoleSiteAdmin
}
