package brokersdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Common Types
// ============================================================================

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	// Error is a machine readable code (e.g. "session_not_found", "reauth_required")
	Error string `json:"error"`

	// ErrorDescription is a human readable description of the error
	ErrorDescription string `json:"error_description"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains individual component health checks (only in readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks contains health status for individual service components.
type HealthChecks struct {
	// Store is the session store status ("ok" or "error: ...")
	Store string `json:"store"`

	// Sessions is the number of sessions currently held
	Sessions int `json:"sessions"`
}

// ============================================================================
// Session Types
// ============================================================================

// TokenInfo describes the access token of a session without revealing it.
type TokenInfo struct {
	HasAccessToken  bool       `json:"has_access_token"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	ExpiresAt       *time.Time `json:"expires_at"`

	// TimeRemaining is the number of seconds until ExpiresAt, zero once the
	// token has expired.
	TimeRemaining float64 `json:"time_remaining"`

	ExpiresInMinutes float64 `json:"expires_in_minutes"`
}

// ClinicalContext holds the launch context ids discovered for a session.
type ClinicalContext struct {
	PatientID      string `json:"patient_id"`
	PractitionerID string `json:"practitioner_id"`
	EncounterID    string `json:"encounter_id"`
}

// StatusLinks point the front-end at the follow-up endpoints of a session.
type StatusLinks struct {
	PatientData      string `json:"patient_data"`
	SessionInfo      string `json:"session_info"`
	ContextDiscovery string `json:"context_discovery"`
	ReauthCheck      string `json:"reauth_check"`
	Frontend         string `json:"frontend"`
}

// SessionStatus is returned by GET /session/status/{id}.
type SessionStatus struct {
	SessionID     string          `json:"session_id"`
	Status        string          `json:"status"`
	Authenticated bool            `json:"authenticated"`
	NeedsReauth   bool            `json:"needs_reauth"`
	TokenValid    bool            `json:"token_valid"`
	TokenInfo     TokenInfo       `json:"token_info"`
	Context       ClinicalContext `json:"context"`
	FHIRServer    string          `json:"fhir_server"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAccessed  time.Time       `json:"last_accessed"`
	Links         StatusLinks     `json:"links"`
}

// SessionInfo is returned by GET /session/{id}. Tokens are never included.
type SessionInfo struct {
	SessionID       string     `json:"session_id"`
	FHIRBase        string     `json:"fhir_base"`
	AuthEndpoint    string     `json:"auth_endpoint"`
	TokenEndpoint   string     `json:"token_endpoint"`
	ClientID        string     `json:"client_id"`
	RedirectURI     string     `json:"redirect_uri"`
	Scope           string     `json:"scope"`
	PatientID       string     `json:"patient_id"`
	PractitionerID  string     `json:"practitioner_id"`
	EncounterID     string     `json:"encounter_id"`
	Status          string     `json:"status"`
	NeedsReauth     bool       `json:"needs_reauth"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAccessed    time.Time  `json:"last_accessed"`
	HasAccessToken  bool       `json:"has_access_token"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	ExpiresAt       *time.Time `json:"expires_at"`

	// AccessTokenFingerprint identifies the current access token for
	// correlation without exposing it.
	AccessTokenFingerprint string `json:"access_token_fingerprint,omitempty"`
}

// SessionSummary is one entry of SessionList.
type SessionSummary struct {
	SessionID      string    `json:"session_id"`
	FHIRBase       string    `json:"fhir_base"`
	Status         string    `json:"status"`
	PatientID      string    `json:"patient_id"`
	PractitionerID string    `json:"practitioner_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessed   time.Time `json:"last_accessed"`
	HasAccessToken bool      `json:"has_access_token"`
}

// SessionList is returned by GET /sessions.
type SessionList struct {
	TotalSessions int              `json:"total_sessions"`
	Sessions      []SessionSummary `json:"sessions"`
}

// ReauthStatus is returned by GET /reauth-required/{id}.
type ReauthStatus struct {
	SessionID   string `json:"session_id"`
	NeedsReauth bool   `json:"needs_reauth"`
	Message     string `json:"message"`

	// LaunchURL restarts the launch with the session's issuer and launch
	// context. Only set when NeedsReauth is true.
	LaunchURL string `json:"launch_url,omitempty"`

	FrontendURL string `json:"frontend_url"`
}

// ClearReauthResponse acknowledges POST /clear-reauth/{id}.
type ClearReauthResponse struct {
	Message     string `json:"message"`
	SessionID   string `json:"session_id"`
	NeedsReauth bool   `json:"needs_reauth"`
}

// SetPatientRequest is the optional JSON body of POST /set-patient/{id}.
// The patient_id query parameter is accepted as well.
type SetPatientRequest struct {
	PatientID string `json:"patient_id"`
}

// SetPatientResponse acknowledges POST /set-patient/{id}.
type SetPatientResponse struct {
	Message     string `json:"message"`
	SessionID   string `json:"session_id"`
	PatientID   string `json:"patient_id"`
	RedirectURL string `json:"redirect_url"`
}

// PatientSelectResponse is returned by GET /patient-select/{id}. With a
// patient already known only PatientID and RedirectURL are set; otherwise
// the selection instructions are.
type PatientSelectResponse struct {
	Message      string            `json:"message"`
	SessionID    string            `json:"session_id,omitempty"`
	PatientID    string            `json:"patient_id,omitempty"`
	RedirectURL  string            `json:"redirect_url,omitempty"`
	Instructions map[string]string `json:"instructions,omitempty"`
	APIEndpoint  string            `json:"api_endpoint,omitempty"`
	FrontendURL  string            `json:"frontend_url,omitempty"`
}

// LaunchContext is the launch request a session was created from.
type LaunchContext struct {
	Launch   string `json:"launch"`
	FHIRBase string `json:"fhir_base"`
}

// ContextDiscovery is returned by GET /context-discovery/{id}.
type ContextDiscovery struct {
	SessionID         string          `json:"session_id"`
	Status            string          `json:"status"`
	ContextDiscovered ClinicalContext `json:"context_discovered"`
	TokenInfo         TokenInfo       `json:"token_info"`
	LaunchContext     LaunchContext   `json:"launch_context"`
}

// SmartConfigTest is returned by GET /test-smart-config. Status is "success"
// or "error"; Error is only set for the latter.
type SmartConfigTest struct {
	Status                 string   `json:"status"`
	SmartConfigURL         string   `json:"smart_config_url"`
	AuthorizationEndpoint  string   `json:"authorization_endpoint,omitempty"`
	TokenEndpoint          string   `json:"token_endpoint,omitempty"`
	Issuer                 string   `json:"issuer,omitempty"`
	JWKSURI                string   `json:"jwks_uri,omitempty"`
	ResponseTypesSupported []string `json:"response_types_supported,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	Error                  string   `json:"error,omitempty"`
}

// ============================================================================
// Resource Types
// ============================================================================

// BundleTokenInfo is the token snapshot reported with a bundle.
type BundleTokenInfo struct {
	ExpiresAt     *time.Time `json:"expires_at"`
	TimeRemaining float64    `json:"time_remaining"`
}

// BundleMetadata describes a patient data bundle run.
type BundleMetadata struct {
	FetchID          string          `json:"fetch_id"`
	FHIRServer       string          `json:"fhir_server"`
	SessionID        string          `json:"session_id"`
	PatientID        string          `json:"patient_id"`
	PractitionerID   string          `json:"practitioner_id"`
	EncounterID      string          `json:"encounter_id"`
	FetchTimestamp   time.Time       `json:"fetch_timestamp"`
	ResourcesFetched []string        `json:"resources_fetched"`
	ResourcesFailed  []string        `json:"resources_failed"`
	Errors           []string        `json:"errors"`
	TokenInfo        BundleTokenInfo `json:"token_info"`
	NeedsReauth      bool            `json:"needs_reauth,omitempty"`
	ReauthMessage    string          `json:"reauth_message,omitempty"`
}

// PatientBundle is returned by GET /patient-data/{id}. A resource that was
// not fetched is null.
type PatientBundle struct {
	Patient           json.RawMessage `json:"patient"`
	Observations      json.RawMessage `json:"observations"`
	Encounters        json.RawMessage `json:"encounters"`
	Medications       json.RawMessage `json:"medications"`
	DiagnosticReports json.RawMessage `json:"diagnostic_reports"`
	Procedures        json.RawMessage `json:"procedures"`
	Metadata          BundleMetadata  `json:"metadata"`
}

// ResourceMetadata describes a single resource or search response.
type ResourceMetadata struct {
	FHIRServer   string `json:"fhir_server"`
	SessionID    string `json:"session_id"`
	TotalResults int    `json:"total_results"`
	EntryCount   int    `json:"entry_count"`
}

// ResourceResponse is returned by GET /fhir-resource/{id}/{type} and
// GET /fhir-search/{id}. Query is only set for searches.
type ResourceResponse struct {
	ResourceType string           `json:"resource_type"`
	Query        *string          `json:"query,omitempty"`
	Data         json.RawMessage  `json:"data"`
	Metadata     ResourceMetadata `json:"metadata"`
}
