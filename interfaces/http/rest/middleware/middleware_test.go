package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubhub-backend/domain/authorization"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/pkg/common"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/observability"
)

// captureIdentity records the identity seen by the next handler
func captureIdentity(out *authorization.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*out = common.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate_GatewayClaims(t *testing.T) {
	event := events.APIGatewayV2HTTPRequest{
		RawPath: "/api/v1/me",
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodGet, Path: "/api/v1/me"},
			Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
				JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
					Claims: map[string]string{
						"sub":                "user-9",
						"email":              "user-9@example.com",
						"custom:system_role": "SiteAdmin",
					},
				},
			},
		},
	}
	req, err := (&core.RequestAccessorV2{}).EventToRequestWithContext(context.Background(), event)
	require.NoError(t, err)

	var seen authorization.Identity
	h := Authenticate(AuthOptions{}, pkgerrors.NewErrorHandler(zap.NewNop(), false), zap.NewNop())(captureIdentity(&seen))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, seen.Valid())
	assert.Equal(t, "user-9", seen.UserID)
	assert.Equal(t, entities.SystemRoleSiteAdmin, seen.SystemRole)
}

func TestAuthenticate_LocalRequests(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		opts       AuthOptions
		wantStatus int
		wantValid  bool
	}{
		{"no credentials is anonymous", "", AuthOptions{}, http.StatusNoContent, false},
		{"non bearer scheme is anonymous", "Basic abc", AuthOptions{}, http.StatusNoContent, false},
		{"bearer without verification is rejected", "Bearer x.y.z", AuthOptions{}, http.StatusUnauthorized, false},
		{"malformed bearer is rejected", "Bearer nope", AuthOptions{AllowUnverifiedTokens: true}, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen authorization.Identity
			h := Authenticate(tt.opts, pkgerrors.NewErrorHandler(zap.NewNop(), false), zap.NewNop())(captureIdentity(&seen))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantValid, seen.Valid())
		})
	}
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func (s *stubLimiter) Reset(context.Context, string) error { return nil }

func TestRateLimit(t *testing.T) {
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("denied by address", func(t *testing.T) {
		h := RateLimit(&stubLimiter{allow: false}, &stubLimiter{allow: true}, errs, zap.NewNop())(ok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("user limit applies to authenticated callers", func(t *testing.T) {
		user := &stubLimiter{allow: false}
		h := RateLimit(&stubLimiter{allow: true}, user, errs, zap.NewNop())(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(common.WithIdentity(req.Context(), authorization.Identity{UserID: "u1", IsAuthenticated: true}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, []string{"u1"}, user.keys)
	})

	t.Run("limiter errors fail open", func(t *testing.T) {
		h := RateLimit(&stubLimiter{err: errors.New("boom")}, &stubLimiter{allow: true}, errs, zap.NewNop())(ok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogger_RecordsMetrics(t *testing.T) {
	metrics := observability.NewCollector("mw_test")
	h := Logger(zap.NewNop(), metrics)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/x", "418")))
}
