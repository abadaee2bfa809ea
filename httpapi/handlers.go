package httpapi

import (
	"errors"
	"net/http"
	"time"

	authcore "github.com/MrEthical07/authcore"
	"github.com/go-playground/validator/v10"
)

// API holds the HTTP surface of the account engine.
//
// API instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type API struct {
	engine     *authcore.Engine
	validate   *validator.Validate
	refreshTTL time.Duration
	production bool
}

// Config carries HTTP-surface settings.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	RefreshTTL time.Duration
	Production bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(engine *authcore.Engine, cfg Config) *API {
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &API{
		engine:     engine,
		validate:   newValidator(),
		refreshTTL: cfg.RefreshTTL,
		production: cfg.Production,
	}
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := a.decodeValid(r, &req); err != nil {
		if fields := validationErrors(err); fields != nil {
			respondValidation(w, fields)
			return
		}
		respond(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	account, err := a.engine.Register(r.Context(), authcore.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusCreated,
		"Registration successful. Please check your email to verify your account.",
		map[string]any{"user": account})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decodeValid(r, &req); err != nil {
		if fields := validationErrors(err); fields != nil {
			respondValidation(w, fields)
			return
		}
		respond(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	ctx := authcore.WithClientHint(r.Context(), r.UserAgent())
	result, err := a.engine.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	a.setRefreshCookie(w, result.RefreshToken, a.refreshTTL)
	respond(w, http.StatusOK, "Login successful", map[string]any{
		"accessToken": result.AccessToken,
		"user":        result.Account,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromRequest(r)
	if refreshToken == "" {
		respondError(w, authcore.ErrRefreshMissing)
		return
	}

	ctx := authcore.WithClientHint(r.Context(), r.UserAgent())
	result, err := a.engine.Refresh(ctx, refreshToken)
	if err != nil {
		if isCredentialError(err) {
			a.clearRefreshCookie(w)
		}
		respondError(w, err)
		return
	}

	a.setRefreshCookie(w, result.RefreshToken, a.refreshTTL)
	respond(w, http.StatusOK, "Token refreshed", map[string]any{
		"accessToken": result.AccessToken,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromRequest(r)

	if err := a.engine.Logout(r.Context(), refreshToken); err != nil {
		respondError(w, err)
		return
	}

	a.clearRefreshCookie(w)
	respond(w, http.StatusOK, "Logged out successfully", nil)
}

func (a *API) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respond(w, http.StatusBadRequest, "Verification token missing", nil)
		return
	}

	account, err := a.engine.VerifyEmail(r.Context(), token)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Email verified successfully", map[string]any{"user": account})
}

func (a *API) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := a.decodeValid(r, &req); err != nil {
		if fields := validationErrors(err); fields != nil {
			respondValidation(w, fields)
			return
		}
		respond(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := a.engine.ResendVerification(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, msgVerificationSent, nil)
}

func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := a.decodeValid(r, &req); err != nil {
		if fields := validationErrors(err); fields != nil {
			respondValidation(w, fields)
			return
		}
		respond(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := a.engine.ForgotPassword(r.Context(), req.Email, req.Method); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, msgResetSent, nil)
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := a.decodeValid(r, &req); err != nil {
		if fields := validationErrors(err); fields != nil {
			respondValidation(w, fields)
			return
		}
		respond(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if (req.Token == "") == (req.OTP == "") {
		respondValidation(w, map[string][]string{
			"token": {"exactly one of token or otp is required"},
			"otp":   {"exactly one of token or otp is required"},
		})
		return
	}

	secret := req.Token
	if secret == "" {
		secret = req.OTP
	}

	if err := a.engine.ResetPassword(r.Context(), secret, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Password reset successful. Please log in with your new password.", nil)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.Ready(r.Context()); err != nil {
		respond(w, http.StatusServiceUnavailable, "Service unavailable", nil)
		return
	}
	respond(w, http.StatusOK, "OK", nil)
}

// isCredentialError reports whether the refresh failure means the cookie
// holds a dead token that should be discarded.
func isCredentialError(err error) bool {
	return errors.Is(err, authcore.ErrTokenExpired) ||
		errors.Is(err, authcore.ErrTokenInvalid) ||
		errors.Is(err, authcore.ErrTokenInvalidated) ||
		errors.Is(err, authcore.ErrSessionExpired) ||
		errors.Is(err, authcore.ErrUnauthorized)
}
