package httputil

import (
	"context"
	"net/http"

	"ckryptbit/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const userKey contextKey = "user"

// WithUser attaches the resolved identity to the request context.
func WithUser(r *http.Request, user models.User) *http.Request {
	ctx := context.WithValue(r.Context(), userKey, user)
	return r.WithContext(ctx)
}

// GetUser retrieves the identity from context. ok is false on
// unauthenticated requests.
func GetUser(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(userKey).(models.User)
	return user, ok
}
