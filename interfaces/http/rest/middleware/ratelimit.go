package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"clubhub-backend/pkg/auth"
	"clubhub-backend/pkg/common"
	pkgerrors "clubhub-backend/pkg/errors"
)

// RateLimit rejects callers over their per-address or per-user budget.
// It must run after Authenticate so the user is known.
func RateLimit(ipLimiter, userLimiter auth.RateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r, ipLimiter, clientIP(r), logger) {
				errs.Handle(w, r, pkgerrors.NewRateLimitError("rate limit exceeded"))
				return
			}
			if userID, ok := common.GetUserID(r.Context()); ok && !allow(r, userLimiter, userID, logger) {
				errs.Handle(w, r, pkgerrors.NewRateLimitError("user rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allow(r *http.Request, limiter auth.RateLimiter, key string, logger *zap.Logger) bool {
	ok, err := limiter.Allow(r.Context(), key)
	if err != nil {
		// Fail open; limiting is best effort.
		logger.Error("Rate limiter error", zap.Error(err))
		return true
	}
	return ok
}
