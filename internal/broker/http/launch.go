package http

import (
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
)

// LaunchHandler serves the two browser-facing legs of the EHR launch.
type LaunchHandler struct {
	AuthorizeService *service.AuthorizeService
	FrontendURL      string
}

// HandleLaunch godoc
//
//	@Summary		EHR Launch
//	@Description	Starts a SMART EHR launch. Discovers the issuer's endpoints, creates a session and redirects the browser to the authorization endpoint.
//	@Description	The session id is used as the OAuth state value.
//	@Tags			Launch
//	@Produce		json
//	@Param			launch	query	string	true	"Opaque launch context from the EHR"
//	@Param			iss		query	string	true	"FHIR server base URL"
//	@Success		302		"Redirect to the authorization endpoint"
//	@Failure		400		{object}	brokersdk.ErrorResponse	"Missing launch or iss"
//	@Failure		500		{object}	brokersdk.ErrorResponse	"SMART configuration discovery failed"
//	@Router			/launch [get].
func (h *LaunchHandler) HandleLaunch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	res, err := h.AuthorizeService.InitiateLaunch(ctx, q.Get("launch"), q.Get("iss"))
	if err != nil {
		slogx.FromContext(ctx).Warn("launch failed", "iss", q.Get("iss"), "error", err)
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		OAuth2 Redirect Endpoint
//	@Description	Completes the authorization code flow for the session named by state, then redirects the browser to the front-end with ?token=<session id>.
//	@Description	A state value is accepted once.
//	@Tags			Launch
//	@Produce		json
//	@Param			code				query	string	false	"Authorization code"
//	@Param			state				query	string	false	"Session id issued by /launch"
//	@Param			error				query	string	false	"Error reported by the authorization server"
//	@Param			error_description	query	string	false	"Error description reported by the authorization server"
//	@Success		302					"Redirect to the front-end"
//	@Failure		400					{object}	brokersdk.ErrorResponse	"Invalid state, missing code or authorization error"
//	@Failure		500					{object}	brokersdk.ErrorResponse	"Token exchange failed"
//	@Router			/callback [get].
func (h *LaunchHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	session, err := h.AuthorizeService.HandleCallback(ctx, service.CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := httpx.RedirectWithQuery(w, r, h.FrontendURL, url.Values{"token": {session.ID}}); err != nil {
		log.Error("invalid front-end url", "frontend_url", h.FrontendURL, "error", err)
		writeError(w, r, err)
	}
}
