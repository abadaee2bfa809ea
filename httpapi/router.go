package httpapi

import (
	"net/http"
	"time"

	authcore "github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/middleware"
	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gorilla/mux"
)

const authRatePerSecond = 10

// Router builds the full route table. Credential endpoints sit behind a
// per-IP rate limiter; account endpoints sit behind the auth guard.
//
// Router may return an error when input validation, dependency calls, or security checks fail.
// Router does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.StrictSlash(true)

	lmt := tollbooth.NewLimiter(authRatePerSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	lmt.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"status":429,"success":false,"message":"Too many requests, please try again later"}`)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.Handle("/register", tollbooth.LimitFuncHandler(lmt, a.handleRegister)).Methods(http.MethodPost)
	auth.Handle("/login", tollbooth.LimitFuncHandler(lmt, a.handleLogin)).Methods(http.MethodPost)
	auth.Handle("/refresh", tollbooth.LimitFuncHandler(lmt, a.handleRefresh)).Methods(http.MethodPost)
	auth.Handle("/logout", tollbooth.LimitFuncHandler(lmt, a.handleLogout)).Methods(http.MethodPost)
	auth.Handle("/verify-email", tollbooth.LimitFuncHandler(lmt, a.handleVerifyEmail)).Methods(http.MethodGet)
	auth.Handle("/resend-verification", tollbooth.LimitFuncHandler(lmt, a.handleResendVerification)).Methods(http.MethodPost)
	auth.Handle("/forgot-password", tollbooth.LimitFuncHandler(lmt, a.handleForgotPassword)).Methods(http.MethodPost)
	auth.Handle("/reset-password", tollbooth.LimitFuncHandler(lmt, a.handleResetPassword)).Methods(http.MethodPost)

	users := r.PathPrefix("/api/users").Subrouter()
	users.Use(middleware.Guard(a.engine))
	users.HandleFunc("/me", a.handleMe).Methods(http.MethodGet)
	users.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.Guard(a.engine), middleware.RequireRole(authcore.RoleAdmin))
	admin.HandleFunc("/dashboard", a.handleAdminDashboard).Methods(http.MethodGet)

	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)

	return r
}
