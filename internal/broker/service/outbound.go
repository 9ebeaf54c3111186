package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// DefaultUserAgent is sent on every outbound request.
const DefaultUserAgent = "SMART-on-FHIR-Broker/1.0"

// maxResponseBody caps how much of an upstream body is read.
const maxResponseBody = 16 << 20

// Outbound is the single HTTP collaborator for discovery, token and FHIR
// calls. Each call gets its own timeout and is detached from the inbound
// request's cancellation, so an abandoned request never aborts a refresh that
// other callers are waiting on.
type Outbound struct {
	client *http.Client
}

// NewOutbound wraps client (nil means a fresh client on the default
// transport) so that every request carries userAgent.
func NewOutbound(client *http.Client, userAgent string) *Outbound {
	if client == nil {
		client = &http.Client{}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	wrapped := *client
	wrapped.Transport = &userAgentTransport{base: base, userAgent: userAgent}
	return &Outbound{client: &wrapped}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// detach returns a context that ignores ctx's cancellation but keeps its values,
// bounded by timeout.
func detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// OAuthContext returns a detached, bounded context that makes x/oauth2 use the
// broker's client.
func (o *Outbound) OAuthContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	octx, cancel := detach(ctx, timeout)
	return context.WithValue(octx, oauth2.HTTPClient, o.client), cancel
}

// Get performs a bounded GET and returns the status and body.
func (o *Outbound) Get(
	ctx context.Context,
	url string,
	timeout time.Duration,
	header http.Header,
) (int, []byte, error) {
	octx, cancel := detach(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(octx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, classifyTransport(err)
	}
	return resp.StatusCode, body, nil
}

// tokenTransportError classifies a token endpoint call that never produced an
// HTTP response. It returns nil for protocol failures such as a response
// without access_token.
func tokenTransportError(octx context.Context, err error) *NetworkError {
	var ue *url.Error
	if errors.As(err, &ue) {
		return classifyTransport(err)
	}
	if errors.Is(octx.Err(), context.DeadlineExceeded) {
		return &NetworkError{Kind: NetworkTimeout, Err: err}
	}
	return nil
}

// classifyTransport wraps a transport failure as a *NetworkError.
func classifyTransport(err error) *NetworkError {
	if isTimeout(err) {
		return &NetworkError{Kind: NetworkTimeout, Err: err}
	}
	return &NetworkError{Kind: NetworkConnection, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
