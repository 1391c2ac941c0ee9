package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "clubhub-backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestNewClub(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateClubInput
		wantErr bool
		errMsg  string
	}{
		{name: "valid club", input: CreateClubInput{Name: "Velo Club", City: "Berlin"}},
		{name: "name trimmed", input: CreateClubInput{Name: "  Velo Club  "}},
		{name: "name at max length", input: CreateClubInput{Name: strings.Repeat("a", 100)}},
		{name: "empty name", input: CreateClubInput{Name: ""}, wantErr: true, errMsg: "name is required"},
		{name: "whitespace name", input: CreateClubInput{Name: "   "}, wantErr: true, errMsg: "name is required"},
		{name: "name too long", input: CreateClubInput{Name: strings.Repeat("a", 101)}, wantErr: true, errMsg: "name must be at most 100"},
		{name: "description too long", input: CreateClubInput{Name: "A", Description: strings.Repeat("d", 501)}, wantErr: true, errMsg: "description"},
		{name: "city too long", input: CreateClubInput{Name: "A", City: strings.Repeat("c", 51)}, wantErr: true, errMsg: "city"},
		{name: "bad logo url", input: CreateClubInput{Name: "A", LogoURL: "not a url"}, wantErr: true, errMsg: "logoUrl must be a valid URL"},
		{name: "good logo url", input: CreateClubInput{Name: "A", LogoURL: "https://cdn.example.com/logo.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			club, err := NewClub(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, club.ID)
			assert.Equal(t, ClubStatusActive, club.Status)
			assert.Equal(t, strings.TrimSpace(tt.input.Name), club.Name)
			assert.False(t, club.CreatedAt.IsZero())
		})
	}
}

func TestClub_NameKey(t *testing.T) {
	club, err := NewClub(CreateClubInput{Name: " Velo CLUB "})
	require.NoError(t, err)
	assert.Equal(t, "velo club", club.NameKey())
}

func TestIsValidClubStatusTransition(t *testing.T) {
	all := []ClubStatus{ClubStatusActive, ClubStatusSuspended, ClubStatusArchived}

	assert.True(t, IsValidClubStatusTransition(ClubStatusActive, ClubStatusSuspended))
	assert.True(t, IsValidClubStatusTransition(ClubStatusSuspended, ClubStatusActive))
	assert.True(t, IsValidClubStatusTransition(ClubStatusActive, ClubStatusArchived))
	assert.True(t, IsValidClubStatusTransition(ClubStatusSuspended, ClubStatusArchived))

	for _, to := range all {
		assert.False(t, IsValidClubStatusTransition(ClubStatusArchived, to), "archived -> %s", to)
		assert.False(t, IsValidClubStatusTransition(to, to), "%s -> %s", to, to)
	}
}

func TestClub_Apply(t *testing.T) {
	club, err := NewClub(CreateClubInput{Name: "Velo Club"})
	require.NoError(t, err)

	t.Run("merges fields", func(t *testing.T) {
		updated, err := club.Apply(UpdateClubInput{Name: strPtr("Velo Club Berlin"), City: strPtr("Berlin")})
		require.NoError(t, err)
		assert.Equal(t, "Velo Club Berlin", updated.Name)
		assert.Equal(t, "Berlin", updated.City)
		assert.Equal(t, "Velo Club", club.Name, "original is unchanged")
	})

	t.Run("revalidates", func(t *testing.T) {
		_, err := club.Apply(UpdateClubInput{Name: strPtr("")})
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("archived is terminal", func(t *testing.T) {
		archived := ClubStatusArchived
		out, err := club.Apply(UpdateClubInput{Status: &archived})
		require.NoError(t, err)

		active := ClubStatusActive
		_, err = out.Apply(UpdateClubInput{Status: &active})
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		active := ClubStatusActive
		out, err := club.Apply(UpdateClubInput{Status: &active})
		require.NoError(t, err)
		assert.Equal(t, ClubStatusActive, out.Status)
	})
}
