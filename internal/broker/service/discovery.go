package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

// DefaultDiscoveryTimeout bounds the smart-configuration GET.
const DefaultDiscoveryTimeout = 10 * time.Second

// WellKnownSmartConfiguration is appended to the issuer to find its endpoints.
const WellKnownSmartConfiguration = "/.well-known/smart-configuration"

// Discoverer resolves an issuer's SMART endpoints.
type Discoverer interface {
	Discover(ctx context.Context, issuer string) (*domain.SmartConfiguration, error)
}

// DiscoveryClient fetches /.well-known/smart-configuration. It does not cache
// and does not retry; concurrent lookups of the same issuer share one GET.
type DiscoveryClient struct {
	HTTP    *Outbound
	Timeout time.Duration

	group singleflight.Group
}

// SmartConfigurationURL returns where issuer's SMART configuration lives.
func SmartConfigurationURL(issuer string) string {
	return strings.TrimRight(issuer, "/") + WellKnownSmartConfiguration
}

func (c *DiscoveryClient) Discover(ctx context.Context, issuer string) (*domain.SmartConfiguration, error) {
	v, err, shared := c.group.Do(issuer, func() (any, error) {
		return c.discover(ctx, issuer)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slogx.FromContext(ctx).Debug("discovery result shared", "issuer", issuer)
	}

	cfg := *v.(*domain.SmartConfiguration)
	return &cfg, nil
}

func (c *DiscoveryClient) discover(ctx context.Context, issuer string) (*domain.SmartConfiguration, error) {
	l := slogx.FromContext(ctx)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}

	url := SmartConfigurationURL(issuer)
	status, body, err := c.HTTP.Get(ctx, url, timeout, http.Header{"Accept": {"application/json"}})
	if err != nil {
		cause := DiscoveryNetwork
		var ne *NetworkError
		if errors.As(err, &ne) && ne.Kind == NetworkTimeout {
			cause = DiscoveryTimeout
		}
		l.Warn("smart configuration fetch failed", "issuer", issuer, "cause", cause, "error", err)
		return nil, &DiscoveryError{Issuer: issuer, Cause: cause, Err: err}
	}

	if status < 200 || status > 299 {
		l.Warn("smart configuration returned error status", "issuer", issuer, "status", status)
		return nil, &DiscoveryError{Issuer: issuer, Cause: DiscoveryNetwork, StatusCode: status}
	}

	cfg, err := parseSmartConfiguration(body)
	if err != nil {
		var de *DiscoveryError
		if errors.As(err, &de) {
			de.Issuer = issuer
		}
		l.Warn("smart configuration rejected", "issuer", issuer, "error", err)
		return nil, err
	}

	l.Info("smart configuration discovered",
		"issuer", issuer,
		"authorization_endpoint", cfg.AuthorizationEndpoint,
		"token_endpoint", cfg.TokenEndpoint,
	)
	return cfg, nil
}

func parseSmartConfiguration(body []byte) (*domain.SmartConfiguration, error) {
	var metadata map[string]any
	if err := json.Unmarshal(body, &metadata); err != nil || metadata == nil {
		if err == nil {
			err = errors.New("document is not a JSON object")
		}
		return nil, &DiscoveryError{Cause: DiscoveryMalformed, Err: err}
	}

	// Typed view is best effort: odd types in optional fields are tolerated,
	// the two required endpoints are checked below.
	var cfg domain.SmartConfiguration
	_ = json.Unmarshal(body, &cfg)
	cfg.Metadata = metadata

	for _, field := range []string{"authorization_endpoint", "token_endpoint"} {
		if s, ok := metadata[field].(string); !ok || strings.TrimSpace(s) == "" {
			return nil, &DiscoveryError{Cause: DiscoveryMissingField, Field: field}
		}
	}
	cfg.AuthorizationEndpoint = metadata["authorization_endpoint"].(string)
	cfg.TokenEndpoint = metadata["token_endpoint"].(string)

	return &cfg, nil
}
