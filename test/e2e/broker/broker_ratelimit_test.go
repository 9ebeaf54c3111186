package broker_test

import (
	"testing"

	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLaunchEndpoint verifies that /launch is rate limited.
// The strict profile allows 10 requests per minute per client.
func TestRateLimitLaunchEndpoint(t *testing.T) {
	baseURL, cleanup := setupBrokerContainerWithDefaultRateLimits(t, nil)
	defer cleanup()

	client := brokersdk.NewClient(baseURL)

	// Missing parameters fail validation, which still counts against the limit
	for i := range 10 {
		_, err := client.StartLaunch(t.Context(), "", "")
		require.Error(t, err)
		require.True(t, brokersdk.IsCode(err, brokersdk.ErrorCodeInvalidRequest),
			"Should not be rate limited yet (request %d): %v", i+1, err)
	}

	_, err := client.StartLaunch(t.Context(), "", "")
	require.Error(t, err)

	var apiErr *brokersdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 429, apiErr.StatusCode, "Should be rate limited after 10 requests")
	t.Logf("Successfully rate limited after 10 requests to /launch")
}

// TestRateLimitIsPerSession verifies one session's budget does not affect another.
func TestRateLimitIsPerSession(t *testing.T) {
	ehr := newFakeEHR(t)
	baseURL, cleanup := setupBrokerContainerWithDefaultRateLimits(t, ehr)
	defer cleanup()

	client := brokersdk.NewClient(baseURL)
	first := performLaunch(t, client, ehr)
	second := performLaunch(t, client, ehr)

	// The moderate profile allows 30 requests per minute
	for range 30 {
		_, err := client.GetResource(t.Context(), first, "Patient")
		require.NoError(t, err)
	}

	_, err := client.GetResource(t.Context(), first, "Patient")
	require.True(t, brokersdk.IsCode(err, "rate_limit_exceeded"), "First session should be limited")

	_, err = client.GetResource(t.Context(), second, "Patient")
	require.NoError(t, err, "Second session has its own budget")
}
