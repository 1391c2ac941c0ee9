package middleware

import (
	"net/http"
	"strings"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"go.uber.org/zap"

	"clubhub-backend/domain/authorization"
	"clubhub-backend/pkg/auth"
	"clubhub-backend/pkg/common"
	pkgerrors "clubhub-backend/pkg/errors"
)

// AuthOptions controls where the caller identity may come from
type AuthOptions struct {
	// AllowUnverifiedTokens reads bearer token claims without signature
	// checks. For local runs without a gateway authorizer only.
	AllowUnverifiedTokens bool
}

// Authenticate attaches the caller identity to the request context.
//
// Behind API Gateway the JWT authorizer has already verified the token and
// its claims are read from the gateway request context. Requests without
// credentials continue as anonymous; the services decide what anonymous
// callers may do.
func Authenticate(opts AuthOptions, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolveIdentity(r, opts)
			if err != nil {
				logger.Warn("Rejected credentials",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("ip", clientIP(r)))
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError("invalid credentials"))
				return
			}

			ctx := common.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(r *http.Request, opts AuthOptions) (authorization.Identity, error) {
	if gw, ok := core.GetAPIGatewayV2ContextFromContext(r.Context()); ok &&
		gw.Authorizer != nil && gw.Authorizer.JWT != nil {
		return auth.IdentityFromClaims(gw.Authorizer.JWT.Claims)
	}

	token := bearerToken(r)
	if token == "" {
		return authorization.Anonymous, nil
	}
	if !opts.AllowUnverifiedTokens {
		return authorization.Anonymous, auth.ErrMalformedToken
	}
	claims, err := auth.ParseUnverifiedClaims(token)
	if err != nil {
		return authorization.Anonymous, err
	}
	return auth.IdentityFromClaims(claims)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// clientIP extracts the client IP address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
