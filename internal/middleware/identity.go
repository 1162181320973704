package middleware

import (
	"net/http"
	"strings"

	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/httputil"
)

// Identity resolves the caller from the X-Username header. There are no
// credentials: the ID is derived from the lowercased username, and
// "admin" or "root" carry the admin flag. Requests without the header
// pass through anonymous; handlers that need an identity reject them.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := strings.TrimSpace(r.Header.Get("X-Username"))
			if username != "" {
				lower := strings.ToLower(username)
				r = httputil.WithUser(r, models.User{
					ID:       "user_" + lower,
					Username: username,
					IsAdmin:  lower == "admin" || lower == "root",
				})
			}
			next.ServeHTTP(w, r)
		})
	}
}
