package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidSession      = errors.New("invalid session")
	ErrSessionNotFound     = errors.New("session not found")
	ErrNotAuthenticated    = errors.New("session not authenticated")
	ErrReauthRequired      = errors.New("re-authentication required")
	ErrUnsupportedResource = errors.New("unsupported resource type")
)

// DiscoveryCause classifies why discovery failed.
type DiscoveryCause string

const (
	DiscoveryNetwork      DiscoveryCause = "network"
	DiscoveryTimeout      DiscoveryCause = "timeout"
	DiscoveryMalformed    DiscoveryCause = "malformed"
	DiscoveryMissingField DiscoveryCause = "missing-field"
)

// DiscoveryError is returned when an issuer's SMART configuration cannot be
// resolved. StatusCode is set when the issuer answered with a non-2xx status.
type DiscoveryError struct {
	Issuer     string
	Cause      DiscoveryCause
	StatusCode int
	Field      string
	Err        error
}

func (e *DiscoveryError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("discovery %s: %s: %q not present", e.Issuer, e.Cause, e.Field)
	case e.StatusCode != 0:
		return fmt.Sprintf("discovery %s: %s: unexpected status %d", e.Issuer, e.Cause, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("discovery %s: %s: %v", e.Issuer, e.Cause, e.Err)
	default:
		return fmt.Sprintf("discovery %s: %s", e.Issuer, e.Cause)
	}
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// AuthorizationError carries an error the authorization server reported on
// the redirect back to /callback.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return "authorization failed: " + e.Code
	}
	return fmt.Sprintf("authorization failed: %s: %s", e.Code, e.Description)
}

// TokenExchangeError is returned when the authorization code could not be
// traded for an access token.
type TokenExchangeError struct {
	StatusCode int    // upstream status, 0 for transport failures
	Code       string // OAuth error code when the token endpoint sent one
	Err        error
}

func (e *TokenExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// ResourceError is a non-200 answer from the FHIR server.
type ResourceError struct {
	Status int
	Body   string
}

const maxErrorBody = 512

func (e *ResourceError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, body)
}

// NetworkErrorKind separates timeouts from connection failures.
type NetworkErrorKind string

const (
	NetworkTimeout    NetworkErrorKind = "timeout"
	NetworkConnection NetworkErrorKind = "connection"
)

// NetworkError is a transport-level failure of an outbound call.
type NetworkError struct {
	Kind NetworkErrorKind
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Kind == NetworkTimeout {
		return "request timeout"
	}
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
