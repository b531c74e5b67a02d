// shared/auth/auth.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Renan-Rosa/rally-scout/shared/api"
)

// ErrUnauthenticated is returned when no user identity can be resolved for a
// request. Every core operation is scoped to a user; without one, nothing may
// proceed.
var ErrUnauthenticated = errors.New("unauthenticated")

type contextKey struct{}

// Middleware resolves the caller's identity from the request and stores it in
// the request context. The services trust the edge proxy to have validated
// the session; here the identity arrives as the X-User-ID header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(api.UserIDHeader)
		if userID == "" {
			api.WriteUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}

// WithUser returns a context carrying the given user identity.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// CurrentUser returns the user identity stored in ctx, or ErrUnauthenticated
// if the request never passed through Middleware.
func CurrentUser(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKey{}).(string)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	return userID, nil
}
