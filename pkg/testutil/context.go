package testutil

import (
	"context"
	"net/http"

	"hearth/internal/platform/middleware"
)

// WithAuth adds an authenticated user and role to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithAuth(req *http.Request, userID, role string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	}
	if role != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyRole, role)
	}
	return req.WithContext(ctx)
}
