package valueobjects

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random identifier for clubs and memberships.
func NewID() string {
	return uuid.New().String()
}

// IsValidID reports whether id is usable as a key segment. Identity-provider
// subjects are not UUIDs, so only emptiness and the key separator are checked.
func IsValidID(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.Contains(id, "#")
}
