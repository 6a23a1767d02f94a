// Package auth turns identity-provider ID tokens into a trusted user id on the request context.
package auth

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userIDContextKey is the context key for the verified subject identifier.
	userIDContextKey contextKey = "user_id"
)

// ContextWithUserID adds the verified subject identifier to the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext retrieves the verified subject identifier from the context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// MustUserIDFromContext retrieves the user id from the context.
// Panics if not present (use only when auth middleware has run).
func MustUserIDFromContext(ctx context.Context) string {
	userID := UserIDFromContext(ctx)
	if userID == "" {
		panic("user id not found in context - ensure auth middleware is applied")
	}
	return userID
}
