package auth

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub-backend/domain/core/entities"
)

func TestIdentityFromClaims(t *testing.T) {
	tests := []struct {
		name     string
		claims   map[string]string
		wantErr  error
		wantRole entities.SystemRole
		wantName string
	}{
		{
			name:    "missing subject",
			claims:  map[string]string{ClaimEmail: "a@example.com"},
			wantErr: ErrMissingSubject,
		},
		{
			name:     "plain user",
			claims:   map[string]string{ClaimSubject: "u1", ClaimName: "Ada"},
			wantRole: entities.SystemRoleUser,
			wantName: "Ada",
		},
		{
			name:     "explicit role claim",
			claims:   map[string]string{ClaimSubject: "u1", ClaimSystemRole: "SiteAdmin"},
			wantRole: entities.SystemRoleSiteAdmin,
		},
		{
			name:     "unknown role claim falls back to user",
			claims:   map[string]string{ClaimSubject: "u1", ClaimSystemRole: "Root"},
			wantRole: entities.SystemRoleUser,
		},
		{
			name:     "admin group",
			claims:   map[string]string{ClaimSubject: "u1", ClaimGroups: "[Editors SiteAdmin]", ClaimUsername: "ada"},
			wantRole: entities.SystemRoleSiteAdmin,
			wantName: "ada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := IdentityFromClaims(tt.claims)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, id.Valid())
				return
			}
			require.NoError(t, err)
			assert.True(t, id.Valid())
			assert.Equal(t, tt.wantRole, id.SystemRole)
			assert.Equal(t, tt.wantName, id.DisplayName)
		})
	}
}

func TestParseUnverifiedClaims(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            "user-1",
		"email":          "user-1@example.com",
		"cognito:groups": []string{"SiteAdmin"},
		"exp":            1700000000,
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	claims, err := ParseUnverifiedClaims(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims[ClaimSubject])
	assert.Equal(t, "[SiteAdmin]", claims[ClaimGroups])

	id, err := IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, entities.SystemRoleSiteAdmin, id.SystemRole)

	_, err = ParseUnverifiedClaims("not-a-token")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestSlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	l := NewSlidingWindowLimiter(2, time.Minute, clk)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "k")
	assert.False(t, ok, "third request inside the window")

	ok, _ = l.Allow(ctx, "other")
	assert.True(t, ok, "keys are independent")

	clk.Add(time.Minute)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok, "window slid past the first requests")

	require.NoError(t, l.Reset(ctx, "k"))
	clk.Add(2 * time.Minute)
	assert.Equal(t, 1, l.Sweep(), "only the idle key is swept")
}

func TestKeyedLimiter(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	ip := NewIPRateLimiter(1, clk)

	ok, _ := ip.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)
	ok, _ = ip.Allow(ctx, "10.0.0.1")
	assert.False(t, ok)

	require.NoError(t, ip.Reset(ctx, "10.0.0.1"))
	ok, _ = ip.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)
}
