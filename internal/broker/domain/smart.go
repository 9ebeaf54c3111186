package domain

// SmartConfiguration is the subset of /.well-known/smart-configuration the
// broker reads. Metadata keeps the full document.
type SmartConfiguration struct {
	Issuer                 string   `json:"issuer,omitempty"`
	AuthorizationEndpoint  string   `json:"authorization_endpoint"`
	TokenEndpoint          string   `json:"token_endpoint"`
	JWKSURI                string   `json:"jwks_uri,omitempty"`
	ResponseTypesSupported []string `json:"response_types_supported,omitempty"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	Capabilities           []string `json:"capabilities,omitempty"`

	Metadata map[string]any `json:"-"`
}
