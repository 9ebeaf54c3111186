package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
)

// RootHandler godoc
//
//	@Summary	Broker Banner
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	brokersdk.MessageResponse
//	@Router		/ [get].
func RootHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, brokersdk.MessageResponse{
		Message: "SMART on FHIR broker is running",
	})
}

// SmartConfigHandler probes an issuer's SMART configuration without
// creating a session.
type SmartConfigHandler struct {
	Discovery service.Discoverer
}

// ServeHTTP godoc
//
//	@Summary		Test SMART Configuration
//	@Description	Runs discovery against iss and reports the endpoints found. Discovery failures are reported with status "error" and a 200.
//	@Tags			Launch
//	@Produce		json
//	@Param			iss	query		string	true	"FHIR server base URL"
//	@Success		200	{object}	brokersdk.SmartConfigTest
//	@Failure		400	{object}	brokersdk.ErrorResponse	"Missing iss"
//	@Router			/test-smart-config [get].
func (h *SmartConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	iss := strings.TrimSpace(r.URL.Query().Get("iss"))
	if iss == "" {
		writeError(w, r, fmt.Errorf("%w: iss is required", service.ErrInvalidRequest))
		return
	}

	result := brokersdk.SmartConfigTest{
		SmartConfigURL: service.SmartConfigurationURL(iss),
	}

	cfg, err := h.Discovery.Discover(ctx, iss)
	if err != nil {
		slogx.FromContext(ctx).Info("smart configuration test failed", "iss", iss, "error", err)
		result.Status = "error"
		result.Error = err.Error()
		httpx.WriteJSON(w, http.StatusOK, result)
		return
	}

	result.Status = "success"
	result.AuthorizationEndpoint = cfg.AuthorizationEndpoint
	result.TokenEndpoint = cfg.TokenEndpoint
	result.Issuer = cfg.Issuer
	result.JWKSURI = cfg.JWKSURI
	result.ResponseTypesSupported = cfg.ResponseTypesSupported
	result.ScopesSupported = cfg.ScopesSupported
	httpx.WriteJSON(w, http.StatusOK, result)
}
