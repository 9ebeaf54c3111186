package brokersdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// LaunchRedirect is the authorization redirect /launch answered with.
type LaunchRedirect struct {
	// Location is the authorization endpoint URL the browser is sent to.
	Location string

	// State is the session id the broker created for the launch.
	State string
}

// StartLaunch plays the browser's part of an EHR launch: it calls /launch
// and returns the authorization redirect without following it.
func (c *Client) StartLaunch(ctx context.Context, iss, launch string) (*LaunchRedirect, error) {
	q := url.Values{"iss": {iss}, "launch": {launch}}
	loc, err := c.redirect(ctx, "/launch?"+q.Encode())
	if err != nil {
		return nil, err
	}

	state := loc.Query().Get("state")
	if state == "" {
		return nil, fmt.Errorf("launch redirect carries no state: %s", loc)
	}
	return &LaunchRedirect{Location: loc.String(), State: state}, nil
}

// CompleteCallback plays the redirect back from the authorization server and
// returns the session id handed to the front-end.
func (c *Client) CompleteCallback(ctx context.Context, code, state string) (string, error) {
	q := url.Values{"code": {code}, "state": {state}}
	loc, err := c.redirect(ctx, "/callback?"+q.Encode())
	if err != nil {
		return "", err
	}

	token := loc.Query().Get("token")
	if token == "" {
		return "", fmt.Errorf("front-end redirect carries no token: %s", loc)
	}
	return token, nil
}

// redirect performs a GET that must be answered with a 302 and returns its
// Location.
func (c *Client) redirect(ctx context.Context, path string) (*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	hc := *c.HTTPClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp, body)
	}
	return resp.Location()
}
