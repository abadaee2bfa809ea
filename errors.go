package authcore

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/authcore/store"
)

var (
	// ErrValidation is an exported constant or variable used by the account engine.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound is an exported constant or variable used by the account engine.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized is an exported constant or variable used by the account engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the account engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailUnverified is an exported constant or variable used by the account engine.
	ErrEmailUnverified = errors.New("email not verified")
	// ErrForbidden is an exported constant or variable used by the account engine.
	ErrForbidden = errors.New("forbidden")
	// ErrTokenExpired is an exported constant or variable used by the account engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is an exported constant or variable used by the account engine.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenInvalidated is an exported constant or variable used by the account engine.
	ErrTokenInvalidated = errors.New("token invalidated")
	// ErrRefreshMissing is an exported constant or variable used by the account engine.
	ErrRefreshMissing = errors.New("refresh token missing")
	// ErrSessionExpired is an exported constant or variable used by the account engine.
	ErrSessionExpired = errors.New("session expired or revoked")
	// ErrResetInvalid is an exported constant or variable used by the account engine.
	ErrResetInvalid = errors.New("reset secret invalid or expired")
	// ErrEngineNotReady is an exported constant or variable used by the account engine.
	ErrEngineNotReady = errors.New("engine not fully initialized")
)

// Envelope is the uniform response body shape of every HTTP endpoint.
// Status is "success" for 2xx, "fail" for 4xx, and "error" for 5xx. Data and
// Errors serialize as null when absent; Errors maps each offending field to
// the list of messages raised against it.
//
// Envelope instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Envelope struct {
	Status  string              `json:"status"`
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// StatusLabel maps an HTTP status code to the envelope status string.
//
// StatusLabel may return an error when input validation, dependency calls, or security checks fail.
// StatusLabel does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func StatusLabel(code int) string {
	switch {
	case code < http.StatusBadRequest:
		return "success"
	case code < http.StatusInternalServerError:
		return "fail"
	default:
		return "error"
	}
}

// StatusFor maps an engine error to its HTTP status code. Unknown errors map
// to 500 so backend failures never leak detail to clients.
//
// StatusFor may return an error when input validation, dependency calls, or security checks fail.
// StatusFor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func StatusFor(err error) int {
	var dup *store.DuplicateFieldError
	if errors.As(err, &dup) {
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrResetInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenInvalidated),
		errors.Is(err, ErrRefreshMissing),
		errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailUnverified), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
