// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"slices"
)

// AnonymousUser is the user code recorded when a request carries no identity.
const AnonymousUser = "anonymous"

// UserContext contains authenticated user information.
type UserContext struct {
	UserID      string
	UserCode    string // login, stored as created_by on ledger movements
	FullName    string
	Roles       []string
	Permissions []string
	IsAdmin     bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetUserCode returns the user code or AnonymousUser.
func GetUserCode(ctx context.Context) string {
	if u := GetUser(ctx); u != nil && u.UserCode != "" {
		return u.UserCode
	}
	return AnonymousUser
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// HasPermission checks a permission string; admins pass every check.
func HasPermission(ctx context.Context, permission string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	if u.IsAdmin {
		return true
	}
	return slices.Contains(u.Permissions, permission)
}
