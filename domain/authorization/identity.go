package authorization

import "clubhub-backend/domain/core/entities"

// Identity is the authenticated caller as established upstream. Signatures
// are verified before the identity reaches this service.
type Identity struct {
	UserID          string
	Email           string
	DisplayName     string
	SystemRole      entities.SystemRole
	IsAuthenticated bool
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

// Valid reports whether the identity can be granted anything at all.
func (i Identity) Valid() bool {
	return i.IsAuthenticated && i.UserID != ""
}

// ClubResource formats the audit resource name of a club.
func ClubResource(clubID string) string {
	return "club:" + clubID
}
