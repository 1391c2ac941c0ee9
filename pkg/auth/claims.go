package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"clubhub-backend/domain/authorization"
	"clubhub-backend/domain/core/entities"
)

// Claim names read from identity provider tokens
const (
	ClaimSubject    = "sub"
	ClaimEmail      = "email"
	ClaimName       = "name"
	ClaimUsername   = "cognito:username"
	ClaimSystemRole = "custom:system_role"
	ClaimGroups     = "cognito:groups"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrMalformedToken = errors.New("malformed token")
)

// IdentityFromClaims builds the caller identity from verified token claims.
// Claim values arrive as strings from the gateway authorizer.
func IdentityFromClaims(claims map[string]string) (authorization.Identity, error) {
	sub := strings.TrimSpace(claims[ClaimSubject])
	if sub == "" {
		return authorization.Anonymous, ErrMissingSubject
	}

	name := claims[ClaimName]
	if name == "" {
		name = claims[ClaimUsername]
	}

	return authorization.Identity{
		UserID:          sub,
		Email:           claims[ClaimEmail],
		DisplayName:     name,
		SystemRole:      systemRole(claims),
		IsAuthenticated: true,
	}, nil
}

func systemRole(claims map[string]string) entities.SystemRole {
	if role := entities.SystemRole(claims[ClaimSystemRole]); role.IsValid() {
		return role
	}
	// Gateway renders list claims as "[a b c]".
	groups := strings.Trim(claims[ClaimGroups], "[]")
	for _, g := range strings.FieldsFunc(groups, func(r rune) bool { return r == ' ' || r == ',' }) {
		if entities.SystemRole(g) == entities.SystemRoleSiteAdmin {
			return entities.SystemRoleSiteAdmin
		}
	}
	return entities.SystemRoleUser
}

// ParseUnverifiedClaims reads the claims of a bearer token without checking
// its signature. Only for setups where the token was verified upstream.
func ParseUnverifiedClaims(token string) (map[string]string, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	out := make(map[string]string, len(mc))
	for k, v := range mc {
		switch val := v.(type) {
		case string:
			out[k] = val
		case []interface{}:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			out[k] = "[" + strings.Join(parts, " ") + "]"
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}
