package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubhub-backend/application/services"
	"clubhub-backend/infrastructure/messaging"
	"clubhub-backend/infrastructure/persistence/dynamodb"
	"clubhub-backend/infrastructure/persistence/memory"
	"clubhub-backend/pkg/observability"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, opts Options) *chi.Mux {
	t.Helper()
	logger := zap.NewNop()
	clk := clock.NewMock()
	metrics := observability.NewCollector("clubhub_test")

	table := memory.NewTable()
	userRepo := dynamodb.NewUserRepository(table, logger, metrics)
	clubRepo := dynamodb.NewClubRepository(table, logger, metrics)
	membershipRepo := dynamodb.NewMembershipRepository(table, userRepo, logger, metrics)
	publisher := messaging.NewLoggingPublisher(logger, metrics)

	authz := services.NewAuthorizationService(services.AuthorizationConfig{}, clk, logger, metrics)
	clubAuthz := services.NewClubAuthorizationService(authz, membershipRepo, logger)

	opts.AllowUnverifiedTokens = true
	return NewRouter(opts,
		services.NewClubService(clubRepo, authz, clubAuthz, publisher, logger),
		services.NewMembershipService(clubRepo, membershipRepo, clubAuthz, publisher, logger),
		services.NewUserService(userRepo, publisher, logger),
		metrics, clk, logger,
	).Setup()
}

func token(t *testing.T, sub string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"name":  strings.ToUpper(sub[:1]) + sub[1:],
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, user))
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Authentication(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodGet, "/api/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous callers have no profile")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/me", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "alice", me.ID)
	assert.Equal(t, "Alice", me.DisplayName)
}

func TestRouter_UpdateProfileRejectsSystemRole(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPatch, "/api/v1/me", "alice", `{"systemRole":"SiteAdmin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPatch, "/api/v1/me", "alice", `{"displayName":"Al"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		DisplayName string `json:"displayName"`
		SystemRole  string `json:"systemRole"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "Al", me.DisplayName)
	assert.Equal(t, "User", me.SystemRole)
}

func TestRouter_ClubAndMembershipFlow(t *testing.T) {
	h := newTestRouter(t, Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/clubs", "alice", `{"name":"Harbour Rowing","city":"Bristol"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var club struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, rec, &club)
	assert.Equal(t, "active", club.Status)
	base := "/api/v1/clubs/" + club.ID

	rec = do(t, h, http.MethodPost, "/api/v1/clubs", "carol", `{"name":"  harbour rowing "}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "names are unique ignoring case and spacing")

	rec = do(t, h, http.MethodGet, "/api/v1/clubs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		HasMore bool `json:"hasMore"`
	}
	decode(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, club.ID, page.Items[0].ID)

	rec = do(t, h, http.MethodPost, base+"/join", "bob", `{"joinMessage":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, base+"/members", "bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "pending members cannot list")

	rec = do(t, h, http.MethodPost, base+"/members/bob/approve", "bob", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/members/bob/approve", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var m struct {
		Status string `json:"status"`
		Role   string `json:"role"`
	}
	decode(t, rec, &m)
	assert.Equal(t, "active", m.Status)

	rec = do(t, h, http.MethodGet, base+"/members", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var members struct {
		Items []struct {
			UserID      string `json:"userId"`
			DisplayName string `json:"displayName"`
		} `json:"items"`
	}
	decode(t, rec, &members)
	assert.Len(t, members.Items, 2)

	rec = do(t, h, http.MethodPatch, base+"/members/bob/role", "alice", `{"role":"captain"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &m)
	assert.Equal(t, "captain", m.Role)

	rec = do(t, h, http.MethodPatch, base+"/members/alice/role", "alice", `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code, "the owner cannot be demoted")

	rec = do(t, h, http.MethodGet, "/api/v1/me/memberships?status=active", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []struct {
		ClubID string `json:"clubId"`
	}
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, club.ID, mine[0].ClubID)

	rec = do(t, h, http.MethodPost, base+"/leave", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &m)
	assert.Equal(t, "removed", m.Status)
}

func TestRouter_RequestValidation(t *testing.T) {
	h := newTestRouter(t, Options{})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing name", "/api/v1/clubs", `{}`},
		{"bad logo", "/api/v1/clubs", `{"name":"A","logoUrl":"nope"}`},
		{"unknown field", "/api/v1/clubs", `{"name":"A","owner":"x"}`},
		{"malformed json", "/api/v1/clubs", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, "alice", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, h, http.MethodGet, "/api/v1/clubs?cursor=!!!!", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/me/memberships?status=bogus", "alice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	h := newTestRouter(t, Options{RequestsPerMinute: 2})

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/api/v1/clubs", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/v1/clubs", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health checks are not limited")
}
