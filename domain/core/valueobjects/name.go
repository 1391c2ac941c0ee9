package valueobjects

import "strings"

// NormalizeName trims surrounding whitespace from a display name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NameKey is the case-folded form used for ordering and uniqueness checks.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
