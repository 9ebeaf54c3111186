package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/smartbroker/internal/broker/service"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
)

// errorStatus maps the service error taxonomy onto a status and error code.
func errorStatus(err error) (int, string) {
	var (
		authErr     *service.AuthorizationError
		discoErr    *service.DiscoveryError
		exchangeErr *service.TokenExchangeError
		resourceErr *service.ResourceError
		netErr      *service.NetworkError
	)

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, brokersdk.ErrorCodeSessionNotFound
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, brokersdk.ErrorCodeInvalidRequest
	case errors.Is(err, service.ErrInvalidSession):
		return http.StatusBadRequest, brokersdk.ErrorCodeInvalidSession
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusBadRequest, brokersdk.ErrorCodeNotAuthenticated
	case errors.Is(err, service.ErrReauthRequired):
		return http.StatusUnauthorized, brokersdk.ErrorCodeReauthRequired
	case errors.Is(err, service.ErrUnsupportedResource):
		return http.StatusBadRequest, brokersdk.ErrorCodeUnsupportedResource
	case errors.As(err, &authErr):
		return http.StatusBadRequest, brokersdk.ErrorCodeAuthorizationFailed
	case errors.As(err, &discoErr):
		return http.StatusInternalServerError, brokersdk.ErrorCodeDiscoveryFailed
	case errors.As(err, &exchangeErr):
		return http.StatusInternalServerError, brokersdk.ErrorCodeTokenExchangeFailed
	case errors.As(err, &resourceErr):
		// An unusable body behind a success status is still a failure.
		if resourceErr.Status < http.StatusBadRequest {
			return http.StatusBadGateway, brokersdk.ErrorCodeUpstreamError
		}
		return resourceErr.Status, brokersdk.ErrorCodeUpstreamError
	case errors.As(err, &netErr):
		if netErr.Kind == service.NetworkTimeout {
			return http.StatusGatewayTimeout, brokersdk.ErrorCodeUpstreamTimeout
		}
		return http.StatusBadGateway, brokersdk.ErrorCodeUpstreamUnreachable
	default:
		return http.StatusInternalServerError, brokersdk.ErrorCodeServerError
	}
}

// writeError writes err as an ErrorResponse. Unexpected errors are logged and
// their text is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)

	description := err.Error()
	if code == brokersdk.ErrorCodeServerError {
		slogx.FromContext(r.Context()).Error("unexpected error", "error", err)
		description = "Internal server error"
	}

	httpx.WriteJSON(w, status, brokersdk.ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

// writeFetchError is writeError for the resource endpoints, where a session
// that holds no token yet is unauthorized rather than a bad request.
func writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotAuthenticated) {
		httpx.WriteJSON(w, http.StatusUnauthorized, brokersdk.ErrorResponse{
			Error:            brokersdk.ErrorCodeNotAuthenticated,
			ErrorDescription: "No access token available",
		})
		return
	}
	writeError(w, r, err)
}
