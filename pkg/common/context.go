package common

import (
	"context"

	"clubhub-backend/domain/authorization"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyIdentity  ContextKey = "identity"
	ContextKeyRequestID ContextKey = "request_id"
)

// WithIdentity attaches the caller identity to ctx
func WithIdentity(ctx context.Context, identity authorization.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

// IdentityFromContext returns the caller identity, or Anonymous when none was attached
func IdentityFromContext(ctx context.Context) authorization.Identity {
	if id, ok := ctx.Value(ContextKeyIdentity).(authorization.Identity); ok {
		return id
	}
	return authorization.Anonymous
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	id := IdentityFromContext(ctx)
	return id.UserID, id.Valid()
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}
