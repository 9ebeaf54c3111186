package brokersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running SMART broker.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the broker at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			// Bundle fetches make six upstream calls of up to 30s each.
			Timeout: 3 * time.Minute,
		},
	}
}

// LaunchURL returns the URL an EHR (or a test harness) opens to start a launch.
// The broker answers it with a redirect, so it is meant for a browser.
func (c *Client) LaunchURL(iss, launch string) string {
	q := url.Values{"iss": {iss}, "launch": {launch}}
	return c.url("/launch?" + q.Encode())
}

// GetLiveness checks if the broker is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.getJSON(ctx, "/livez", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the broker is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.getJSON(ctx, "/readyz", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetSessionStatus polls token validity and context for a session.
func (c *Client) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	var status SessionStatus
	if err := c.getJSON(ctx, sessionPath("/session/status/", sessionID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetPatientData fetches the aggregate patient bundle. A bundle whose
// metadata reports NeedsReauth is still returned without error.
func (c *Client) GetPatientData(ctx context.Context, sessionID string) (*PatientBundle, error) {
	var bundle PatientBundle
	if err := c.getJSON(ctx, sessionPath("/patient-data/", sessionID), &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// GetResource fetches one of the supported resource types.
func (c *Client) GetResource(ctx context.Context, sessionID, resourceType string) (*ResourceResponse, error) {
	path := sessionPath("/fhir-resource/", sessionID) + "/" + url.PathEscape(resourceType)

	var res ResourceResponse
	if err := c.getJSON(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Search runs an arbitrary FHIR search. query is a raw query string such as
// "category=vital-signs&_sort=-date".
func (c *Client) Search(ctx context.Context, sessionID, resourceType, query string) (*ResourceResponse, error) {
	q := url.Values{"resource_type": {resourceType}}
	if query != "" {
		q.Set("query", query)
	}

	var res ResourceResponse
	if err := c.getJSON(ctx, sessionPath("/fhir-search/", sessionID)+"?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetSession returns debug information about a session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.getJSON(ctx, sessionPath("/session/", sessionID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListSessions returns all sessions held by the broker.
func (c *Client) ListSessions(ctx context.Context) (*SessionList, error) {
	var list SessionList
	if err := c.getJSON(ctx, "/sessions", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, sessionPath("/session/", sessionID), nil, nil)
	if err != nil {
		return err
	}

	var ack MessageResponse
	return decodeJSON(resp, &ack, http.StatusOK)
}

// SetPatient sets the patient context of an authenticated session.
func (c *Client) SetPatient(ctx context.Context, sessionID, patientID string) (*SetPatientResponse, error) {
	body, err := json.Marshal(SetPatientRequest{PatientID: patientID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, sessionPath("/set-patient/", sessionID),
		bytes.NewReader(body), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, err
	}

	var ack SetPatientResponse
	if err := decodeJSON(resp, &ack, http.StatusOK); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ClearReauth resets the re-authentication flag of a session.
func (c *Client) ClearReauth(ctx context.Context, sessionID string) (*ClearReauthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, sessionPath("/clear-reauth/", sessionID), nil, nil)
	if err != nil {
		return nil, err
	}

	var ack ClearReauthResponse
	if err := decodeJSON(resp, &ack, http.StatusOK); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetReauthStatus reports whether a session must re-launch, and how.
func (c *Client) GetReauthStatus(ctx context.Context, sessionID string) (*ReauthStatus, error) {
	var status ReauthStatus
	if err := c.getJSON(ctx, sessionPath("/reauth-required/", sessionID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetContextDiscovery returns the launch context discovered for a session.
func (c *Client) GetContextDiscovery(ctx context.Context, sessionID string) (*ContextDiscovery, error) {
	var cd ContextDiscovery
	if err := c.getJSON(ctx, sessionPath("/context-discovery/", sessionID), &cd); err != nil {
		return nil, err
	}
	return &cd, nil
}

// GetPatientSelect returns patient selection guidance for a session.
func (c *Client) GetPatientSelect(ctx context.Context, sessionID string) (*PatientSelectResponse, error) {
	var ps PatientSelectResponse
	if err := c.getJSON(ctx, sessionPath("/patient-select/", sessionID), &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

// TestSmartConfig asks the broker to run discovery against iss. A discovery
// failure is reported in the result's Status and Error, not as an error.
func (c *Client) TestSmartConfig(ctx context.Context, iss string) (*SmartConfigTest, error) {
	var res SmartConfigTest
	if err := c.getJSON(ctx, "/test-smart-config?"+url.Values{"iss": {iss}}.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
