package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	authcore "github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/store"
)

const (
	msgVerificationSent = "If the email exists, a verification link has been sent."
	msgResetSent        = "If the email exists, reset instructions have been sent."
)

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authcore.Envelope{
		Status:  authcore.StatusLabel(status),
		Success: status < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

func respondValidation(w http.ResponseWriter, fieldErrors map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(authcore.Envelope{
		Status:  authcore.StatusLabel(http.StatusBadRequest),
		Success: false,
		Message: "Validation failed",
		Errors:  fieldErrors,
	})
}

// respondError is the single translator from engine errors to HTTP responses.
func respondError(w http.ResponseWriter, err error) {
	status := authcore.StatusFor(err)

	var dup *store.DuplicateFieldError
	if errors.As(err, &dup) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(authcore.Envelope{
			Status:  authcore.StatusLabel(status),
			Success: false,
			Message: "Account already exists",
			Errors: map[string][]string{
				dup.Field: {dup.Field + " already exists"},
			},
		})
		return
	}

	respond(w, status, errorMessage(err, status), nil)
}

func errorMessage(err error, status int) string {
	switch {
	case errors.Is(err, authcore.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, authcore.ErrEmailUnverified):
		return "Please verify your email before logging in"
	case errors.Is(err, authcore.ErrForbidden):
		return "Forbidden"
	case errors.Is(err, authcore.ErrTokenExpired):
		return "Token has expired, please request a new one"
	case errors.Is(err, authcore.ErrTokenInvalid):
		return "Invalid token"
	case errors.Is(err, authcore.ErrTokenInvalidated):
		return "Session is no longer valid, please log in again"
	case errors.Is(err, authcore.ErrRefreshMissing):
		return "Refresh token missing"
	case errors.Is(err, authcore.ErrSessionExpired):
		return "Session expired or revoked, please log in again"
	case errors.Is(err, authcore.ErrResetInvalid):
		return "Reset code is invalid or has expired"
	case errors.Is(err, authcore.ErrValidation):
		return "Validation failed"
	case errors.Is(err, authcore.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, authcore.ErrUnauthorized):
		return "Unauthorized"
	case status >= http.StatusInternalServerError:
		return "Internal server error"
	default:
		return "Request failed"
	}
}
