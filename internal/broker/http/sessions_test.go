package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/stretchr/testify/require"
)

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	t.Run("authenticated session", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		rec := b.get(t, "/session/status/"+s.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		status := decode[brokersdk.SessionStatus](t, rec)
		require.Equal(t, s.ID, status.SessionID)
		require.Equal(t, "authenticated", status.Status)
		require.True(t, status.Authenticated)
		require.True(t, status.TokenValid)
		require.False(t, status.NeedsReauth)
		require.InDelta(t, time.Hour.Seconds(), status.TokenInfo.TimeRemaining, 5)
		require.Equal(t, "123", status.Context.PatientID)
		require.Equal(t, "/patient-data/"+s.ID, status.Links.PatientData)
		require.Equal(t, testFrontendURL+"?token="+s.ID, status.Links.Frontend)
	})

	t.Run("expired token is reported but not refreshed", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, func(s *domain.Session) {
			s.ExpiresAt = time.Now().Add(-time.Minute)
		})

		status := decode[brokersdk.SessionStatus](t, b.get(t, "/session/status/"+s.ID))
		require.False(t, status.TokenValid)
		require.Zero(t, status.TokenInfo.TimeRemaining)
		require.Zero(t, b.ehr.tokenCalls.Load())
	})

	t.Run("needs reauth", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, func(s *domain.Session) { s.NeedsReauth = true })

		status := decode[brokersdk.SessionStatus](t, b.get(t, "/session/status/"+s.ID))
		require.True(t, status.NeedsReauth)
		require.False(t, status.TokenValid)
		require.Contains(t, status.Links.Frontend, "reauth=true")
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)

		requireError(t, b.get(t, "/session/status/nope"), http.StatusNotFound, brokersdk.ErrorCodeSessionNotFound)
	})
}

func TestHandleInfo(t *testing.T) {
	t.Parallel()
	b := newTestBroker(t)
	s := b.session(t, nil)

	rec := b.get(t, "/session/"+s.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), s.AccessToken)
	require.NotContains(t, rec.Body.String(), s.RefreshToken)

	info := decode[brokersdk.SessionInfo](t, rec)
	require.Equal(t, s.FHIRBase, info.FHIRBase)
	require.True(t, info.HasAccessToken)
	require.True(t, info.HasRefreshToken)
	require.NotEmpty(t, info.AccessTokenFingerprint)
}

func TestHandleListAndDelete(t *testing.T) {
	t.Parallel()
	b := newTestBroker(t)
	s := b.session(t, nil)

	list := decode[brokersdk.SessionList](t, b.get(t, "/sessions"))
	require.Equal(t, 1, list.TotalSessions)
	require.Equal(t, s.ID, list.Sessions[0].SessionID)

	rec := b.do(t, http.MethodDelete, "/session/"+s.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Session "+s.ID+" deleted successfully", decode[brokersdk.MessageResponse](t, rec).Message)

	requireError(t, b.do(t, http.MethodDelete, "/session/"+s.ID, nil), http.StatusNotFound, brokersdk.ErrorCodeSessionNotFound)
	require.Zero(t, decode[brokersdk.SessionList](t, b.get(t, "/sessions")).TotalSessions)
}

func TestHandleSetPatient(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		target string
		body   string
		header []string
	}{
		{name: "query", target: "?patient_id=p-9"},
		{name: "json", body: `{"patient_id":"p-9"}`, header: []string{"Content-Type", "application/json"}},
		{name: "form", body: "patient_id=p-9", header: []string{"Content-Type", "application/x-www-form-urlencoded"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := newTestBroker(t)
			s := b.session(t, func(s *domain.Session) { s.PatientID = "" })

			rec := b.do(t, http.MethodPost, "/set-patient/"+s.ID+tc.target, strings.NewReader(tc.body), tc.header...)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decode[brokersdk.SetPatientResponse](t, rec)
			require.Equal(t, "p-9", resp.PatientID)
			require.Equal(t, testFrontendURL+"?token="+url.QueryEscape(s.ID), resp.RedirectURL)

			got, err := b.sessions.Get(context.Background(), s.ID)
			require.NoError(t, err)
			require.Equal(t, "p-9", got.PatientID)
		})
	}

	t.Run("missing patient id", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		requireError(t, b.do(t, http.MethodPost, "/set-patient/"+s.ID, nil), http.StatusBadRequest, brokersdk.ErrorCodeInvalidRequest)
	})

	t.Run("not authenticated", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, launched)

		rec := b.do(t, http.MethodPost, "/set-patient/"+s.ID+"?patient_id=p-9", nil)
		requireError(t, rec, http.StatusBadRequest, brokersdk.ErrorCodeNotAuthenticated)
	})
}

func TestHandleReauthFlow(t *testing.T) {
	t.Parallel()
	b := newTestBroker(t)
	s := b.session(t, func(s *domain.Session) { s.NeedsReauth = true })

	status := decode[brokersdk.ReauthStatus](t, b.get(t, "/reauth-required/"+s.ID))
	require.True(t, status.NeedsReauth)

	launchURL, err := url.Parse(status.LaunchURL)
	require.NoError(t, err)
	require.Equal(t, "/launch", launchURL.Path)
	require.Equal(t, s.FHIRBase, launchURL.Query().Get("iss"))
	require.Equal(t, "xyz", launchURL.Query().Get("launch"))
	require.Contains(t, status.FrontendURL, "reauth=true")

	rec := b.do(t, http.MethodPost, "/clear-reauth/"+s.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[brokersdk.ClearReauthResponse](t, rec).NeedsReauth)

	status = decode[brokersdk.ReauthStatus](t, b.get(t, "/reauth-required/"+s.ID))
	require.False(t, status.NeedsReauth)
	require.Empty(t, status.LaunchURL)
}

func TestHandleContextDiscovery(t *testing.T) {
	t.Parallel()
	b := newTestBroker(t)
	s := b.session(t, func(s *domain.Session) { s.EncounterID = "enc-1" })

	got := decode[brokersdk.ContextDiscovery](t, b.get(t, "/context-discovery/"+s.ID))
	require.Equal(t, "123", got.ContextDiscovered.PatientID)
	require.Equal(t, "enc-1", got.ContextDiscovered.EncounterID)
	require.Equal(t, "xyz", got.LaunchContext.Launch)
	require.Equal(t, s.FHIRBase, got.LaunchContext.FHIRBase)
	require.True(t, got.TokenInfo.HasAccessToken)
}

func TestHandlePatientSelect(t *testing.T) {
	t.Parallel()

	t.Run("patient already known", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, nil)

		got := decode[brokersdk.PatientSelectResponse](t, b.get(t, "/patient-select/"+s.ID))
		require.Equal(t, "123", got.PatientID)
		require.Empty(t, got.Instructions)
	})

	t.Run("selection required", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, func(s *domain.Session) { s.PatientID = "" })

		got := decode[brokersdk.PatientSelectResponse](t, b.get(t, "/patient-select/"+s.ID))
		require.Len(t, got.Instructions, 3)
		require.Equal(t, "/set-patient/"+s.ID, got.APIEndpoint)
		require.Contains(t, got.FrontendURL, "select_patient=true")
	})

	t.Run("not authenticated", func(t *testing.T) {
		t.Parallel()
		b := newTestBroker(t)
		s := b.session(t, launched)

		requireError(t, b.get(t, "/patient-select/"+s.ID), http.StatusBadRequest, brokersdk.ErrorCodeNotAuthenticated)
	})
}
