package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of database, signer, and session denylist
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tenancysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	tenancysdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	denylist store.Denylist,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &tenancysdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
			Denylist: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		degrade := func(field *string, msg string) {
			*field = "error: " + msg
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			degrade(&checks.Database, err.Error())
		}

		// Check if JWT signer/verifier has keys loaded
		if !keys.IsReady() {
			degrade(&checks.Signer, "no keys loaded")
		}

		if denylist != nil {
			if err := denylist.Ping(r.Context()); err != nil {
				degrade(&checks.Denylist, err.Error())
			}
		}

		response := tenancysdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
