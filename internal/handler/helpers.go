// Package handler exposes the HTTP surface: identity stub, chat turns,
// blueprint workspace, store, and task modes.
package handler

import (
	"errors"
	"net/http"

	"ckryptbit/internal/domain"
	"ckryptbit/internal/domain/models"
	"ckryptbit/internal/httputil"
	"ckryptbit/internal/provider"
)

// handleError converts domain and provider errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var provErr *provider.Error
	if errors.As(err, &provErr) {
		extras := map[string]interface{}{
			"provider": provErr.Provider,
			"kind":     provErr.Kind,
		}
		if provErr.RetryAfter > 0 {
			extras["retry_after_ms"] = provErr.RetryAfter.Milliseconds()
		}
		httputil.RespondErrorWithExtras(w, provErr.StatusCode(), provErr.Error(), extras)
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}

// requireUser rejects anonymous requests with 401.
func requireUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := httputil.GetUser(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "login required: set the X-Username header")
	}
	return user, ok
}

// requireAdmin rejects anonymous requests with 401 and non-admins with 403.
func requireAdmin(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return user, false
	}
	if !user.IsAdmin {
		httputil.RespondError(w, http.StatusForbidden, "admin access required")
		return user, false
	}
	return user, true
}
