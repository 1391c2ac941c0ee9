package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "clubhub-backend/pkg/errors"
)

func TestPageRequest_EffectiveLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultPageSize},
		{-5, DefaultPageSize},
		{1, 1},
		{50, 50},
		{100, 100},
		{999, MaxPageSize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageRequest{Limit: tt.limit}.EffectiveLimit(), "limit %d", tt.limit)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	type clubCursor struct {
		NameLower string `json:"nameLower"`
		ClubID    string `json:"clubId"`
	}
	in := clubCursor{NameLower: "velo club", ClubID: "c-1"}

	encoded, err := EncodeCursor(in)
	require.NoError(t, err)

	var out clubCursor
	require.NoError(t, DecodeCursor(encoded, &out))
	assert.Equal(t, in, out)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	var out map[string]string

	err := DecodeCursor("%%%not-base64", &out)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidCursor))

	err = DecodeCursor("bm90LWpzb24=", &out) // "not-json"
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidCursor))
}

func TestExtractPageRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/clubs?limit=5&cursor=abc", nil)
	req := ExtractPageRequest(r)
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, "abc", req.Cursor)
}
