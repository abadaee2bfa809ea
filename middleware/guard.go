package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	authcore "github.com/MrEthical07/authcore"
)

type identityContextKey struct{}

// IdentityFromContext returns the authenticated identity injected by [Guard].
func IdentityFromContext(ctx context.Context) (*authcore.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*authcore.Identity)
	return id, ok
}

// Guard authenticates the request via the Authorization header (with an
// accessToken cookie fallback) and injects the resulting identity into the
// request context.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				reject(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token, ok := accessToken(r)
			if !ok {
				reject(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			identity, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				status := authcore.StatusFor(err)
				if status >= http.StatusInternalServerError {
					reject(w, status, "Internal server error")
					return
				}
				reject(w, status, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role does not match. It
// must run after [Guard].
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				reject(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if identity.Role != role {
				reject(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accessToken(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authcore.Envelope{
		Status:  authcore.StatusLabel(status),
		Success: false,
		Message: message,
	})
}
