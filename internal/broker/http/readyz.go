package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/store"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and the state of the session store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	brokersdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	brokersdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, sessions store.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &brokersdk.HealthChecks{Store: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if _, err := sessions.List(r.Context()); err != nil {
			checks.Store = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
		checks.Sessions = sessions.Count()

		httpx.WriteJSON(w, statusCode, brokersdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
