package brokersdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidSession      = "invalid_session"
	ErrorCodeSessionNotFound     = "session_not_found"
	ErrorCodeNotAuthenticated    = "not_authenticated"
	ErrorCodeReauthRequired      = "reauth_required"
	ErrorCodeUnsupportedResource = "unsupported_resource"
	ErrorCodeAuthorizationFailed = "authorization_failed"
	ErrorCodeDiscoveryFailed     = "discovery_failed"
	ErrorCodeTokenExchangeFailed = "token_exchange_failed"
	ErrorCodeUpstreamError       = "upstream_error"
	ErrorCodeUpstreamTimeout     = "upstream_timeout"
	ErrorCodeUpstreamUnreachable = "upstream_unreachable"
	ErrorCodeServerError         = "server_error"
)

// APIError is a non-2xx response from the broker.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// IsReauthRequired reports whether the session must repeat the launch.
func IsReauthRequired(err error) bool {
	return IsCode(err, ErrorCodeReauthRequired)
}

// IsNotFound reports whether the session does not exist.
func IsNotFound(err error) bool {
	return IsCode(err, ErrorCodeSessionNotFound)
}

// parseErrorResponse turns a non-2xx response into an *APIError, falling back
// to the status text when the body is not an ErrorResponse.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
