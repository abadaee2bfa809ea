package httpapi

import (
	"net/http"
	"strconv"

	authcore "github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/metrics/export/internaldefs"
	"github.com/MrEthical07/authcore/middleware"
)

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	account, err := a.engine.GetAccount(r.Context(), identity.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Profile retrieved", map[string]any{"user": account})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	stats, err := a.engine.GetAccountStats(r.Context(), identity.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, "Stats retrieved", map[string]any{"stats": stats})
}

func (a *API) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	accounts, err := a.engine.ListAccounts(r.Context(), adminAccountListLimit)
	if err != nil {
		respondError(w, err)
		return
	}

	snapshot := a.engine.MetricsSnapshot()
	counters := make(map[string]uint64, len(snapshot.Counters))
	for id, value := range snapshot.Counters {
		counters[metricName(id)] = value
	}

	respond(w, http.StatusOK, "Welcome to the admin dashboard", map[string]any{
		"admin":    identity.AccountID,
		"users":    accounts,
		"counters": counters,
	})
}

const adminAccountListLimit = 100

func metricName(id authcore.MetricID) string {
	for _, def := range internaldefs.CounterDefs {
		if def.ID == id {
			return def.Name
		}
	}
	return "metric_" + strconv.Itoa(int(id))
}
