package provider

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"ckryptbit/internal/domain/models"
)

// Error is the common shape of every provider failure: which backend
// failed, the kind of failure, and the original upstream message.
type Error struct {
	Provider models.ProviderID
	Kind     Kind
	Message  string
	// RetryAfter is set for KindModelLoading when the backend reported an
	// estimated warm-up time.
	RetryAfter time.Duration
	// HTTPStatus holds the upstream status code when the failure came from
	// an HTTP response, zero otherwise.
	HTTPStatus int
	cause      error
}

// Kind classifies a provider failure.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindAuth          Kind = "authentication"
	KindRateLimit     Kind = "rate_limit"
	KindModelLoading  Kind = "model_loading"
	KindNetwork       Kind = "network"
	KindUpstream      Kind = "upstream"
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Provider.DisplayName(), e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// StatusCode implements domain.HTTPError for the handler boundary.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindConfiguration:
		return http.StatusBadRequest
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindModelLoading:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// NewConfigError fails fast before any network call when endpoint or
// credential identification is missing.
func NewConfigError(id models.ProviderID, msg string) *Error {
	return &Error{Provider: id, Kind: KindConfiguration, Message: msg}
}

// NewError builds a classified provider error wrapping an upstream cause.
func NewError(id models.ProviderID, kind Kind, msg string, cause error) *Error {
	return &Error{Provider: id, Kind: kind, Message: msg, cause: cause}
}

// NewModelLoadingError reports a backend warm-up, with the estimated wait
// when the backend supplied one.
func NewModelLoadingError(id models.ProviderID, msg string, retryAfter time.Duration) *Error {
	return &Error{Provider: id, Kind: KindModelLoading, Message: msg, RetryAfter: retryAfter}
}

// ClassifyHTTP maps an HTTP status + body from a provider endpoint onto the
// taxonomy. Callers handle provider-specific shapes (e.g. the Hugging Face
// loading payload) before falling back to this.
func ClassifyHTTP(id models.ProviderID, status int, body string) *Error {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	var e *Error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e = NewError(id, KindAuth, fmt.Sprintf("request rejected (%d): %s", status, msg), nil)
	case status == http.StatusTooManyRequests:
		e = NewError(id, KindRateLimit, fmt.Sprintf("rate limited (%d): %s", status, msg), nil)
	case status >= 500:
		e = NewError(id, KindUpstream, fmt.Sprintf("server error (%d): %s", status, msg), nil)
	default:
		e = NewError(id, KindUpstream, fmt.Sprintf("request failed (%d): %s", status, msg), nil)
	}
	e.HTTPStatus = status
	return e
}

// ClassifyTransport wraps an error from the HTTP round trip or an SDK call.
// Pattern matching on message text mirrors what the backends actually
// return; SDK errors rarely expose structured codes.
func ClassifyTransport(id models.ProviderID, err error) *Error {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewError(id, KindNetwork, err.Error(), err)
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "API key") || strings.Contains(msg, "API_KEY") ||
		strings.Contains(lower, "permission denied") || strings.Contains(lower, "invalid authentication"):
		return NewError(id, KindAuth, msg, err)
	case strings.Contains(msg, "429") || strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit"):
		return NewError(id, KindRateLimit, msg, err)
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network"):
		return NewError(id, KindNetwork, msg, err)
	case strings.Contains(msg, "500") || strings.Contains(msg, "503") ||
		strings.Contains(lower, "rpc failed") || strings.Contains(lower, "internal error"):
		return NewError(id, KindUpstream, msg, err)
	default:
		return NewError(id, KindUpstream, msg, err)
	}
}

// IsAuth reports whether the error is an authentication failure, which
// invalidates any cached provider session.
func IsAuth(err error) bool {
	var provErr *Error
	return errors.As(err, &provErr) && provErr.Kind == KindAuth
}
