package auth

import (
	"context"
	"fmt"
)

// contextKey keeps identity values collision-free in request contexts.
type contextKey string

const (
	userIDKey   contextKey = "user_id"
	identityKey contextKey = "caller_identity"
)

// WithIdentity attaches the authenticated user id and its opaque caller
// identity to the context.
func WithIdentity(ctx context.Context, userID int64) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, identityKey, fmt.Sprintf("user-%d", userID))
}

// UserIDFrom returns the authenticated user id, if any.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// IdentityFrom returns the opaque caller identity, or "" for anonymous
// requests.
func IdentityFrom(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}
