// Package auth provides password hashing and session context helpers.
package auth

import (
	"context"

	"github.com/ledgerlite/ledgerlite/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for the authenticated user.
	sessionContextKey contextKey = "session_user"
)

// ContextWithUser adds the session user to the context.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, sessionContextKey, user)
}

// UserFromContext retrieves the session user from the context.
// Returns nil if not present.
func UserFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(sessionContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// MustUserFromContext retrieves the session user from the context.
// Panics if not present (use only when auth middleware has run).
func MustUserFromContext(ctx context.Context) *model.User {
	user := UserFromContext(ctx)
	if user == nil {
		panic("session user not found - ensure auth middleware is applied")
	}
	return user
}

// UserIDFromContext is a convenience function to get the user ID.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	user := UserFromContext(ctx)
	if user == nil {
		return ""
	}
	return user.ID
}
