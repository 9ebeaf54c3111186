/*
Package brokersdk provides a client and the JSON wire types for the SMART on
FHIR broker.

# Overview

The broker runs the SMART EHR launch on behalf of a browser front-end. The EHR
opens /launch, the broker redirects to the authorization server, completes the
code exchange on /callback and finally redirects the browser to the front-end
with ?token=<session id>. From then on the front-end only ever holds the
session id; access and refresh tokens stay inside the broker.

This package is what the front-end contract looks like from Go:

	client := brokersdk.NewClient("http://localhost:9001")

	// Where an EHR simulator should send the browser
	launchURL := client.LaunchURL("https://ehr.example/fhir", "xyz")

	// After the redirect back to the front-end
	status, err := client.GetSessionStatus(ctx, sessionID)
	bundle, err := client.GetPatientData(ctx, sessionID)

# Re-authentication

The broker refreshes access tokens by itself. When that is impossible (no
refresh token, or the refresh grant failed) the session is flagged and every
further fetch is refused until the user repeats the launch:

	bundle, err := client.GetPatientData(ctx, sessionID)
	if err == nil && bundle.Metadata.NeedsReauth {
		rs, _ := client.GetReauthStatus(ctx, sessionID)
		// send the browser to rs.LaunchURL
	}

	_, err = client.GetResource(ctx, sessionID, "Observation")
	if brokersdk.IsReauthRequired(err) {
		// same as above
	}

# Errors

Every non-2xx response is decoded into an *APIError carrying the HTTP status
and one of the ErrorCode constants. Resource fetches that failed upstream
propagate the upstream status with ErrorCodeUpstreamError, while timeouts and
unreachable FHIR servers use ErrorCodeUpstreamTimeout and
ErrorCodeUpstreamUnreachable.

# Times

Timestamps are RFC 3339. TimeRemaining fields are seconds and stop at zero once
a token has expired.
*/
package brokersdk
