package handlers

import (
	"context"

	"github.com/iudanet/blogauth/internal/models"
)

// contextKey is the type of request context keys set by this package
type contextKey string

const (
	// UserKey holds the *models.User resolved from the session cookie
	UserKey contextKey = "user"
	// RequestIDKey holds the request id string
	RequestIDKey contextKey = "request_id"
)

// ContextWithUser stores the authenticated user in ctx
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser returns the authenticated user, or nil for anonymous requests
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// ContextWithRequestID stores the request id in ctx
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID returns the request id, empty when none was assigned
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
