package http

import (
	"math"
	"net/url"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/pkg/brokersdk"
	"github.com/aussiebroadwan/smartbroker/pkg/cryptox"
)

// frontendLinks builds front-end URLs carrying the session id as ?token=.
type frontendLinks struct {
	base string
}

func (f frontendLinks) session(id string, extra ...string) string {
	u, err := url.Parse(f.base)
	if err != nil {
		return f.base
	}
	q := u.Query()
	q.Set("token", id)
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func expiresAt(s domain.Session) *time.Time {
	if s.AccessToken == "" || s.ExpiresAt.IsZero() {
		return nil
	}
	t := s.ExpiresAt.UTC()
	return &t
}

func secondsRemaining(s domain.Session, now time.Time) float64 {
	return math.Max(0, s.TimeRemaining(now).Seconds())
}

func tokenInfo(s domain.Session, now time.Time) brokersdk.TokenInfo {
	remaining := secondsRemaining(s, now)
	return brokersdk.TokenInfo{
		HasAccessToken:   s.AccessToken != "",
		HasRefreshToken:  s.RefreshToken != "",
		ExpiresAt:        expiresAt(s),
		TimeRemaining:    remaining,
		ExpiresInMinutes: math.Round(remaining/60*100) / 100,
	}
}

func clinicalContext(s domain.Session) brokersdk.ClinicalContext {
	return brokersdk.ClinicalContext{
		PatientID:      s.PatientID,
		PractitionerID: s.PractitionerID,
		EncounterID:    s.EncounterID,
	}
}

func sessionStatus(s domain.Session, now time.Time, links frontendLinks) brokersdk.SessionStatus {
	id := url.PathEscape(s.ID)

	frontend := links.session(s.ID)
	if s.NeedsReauth {
		frontend = links.session(s.ID, "reauth", "true")
	}

	return brokersdk.SessionStatus{
		SessionID:     s.ID,
		Status:        string(s.Status),
		Authenticated: s.Authenticated(),
		NeedsReauth:   s.NeedsReauth,
		TokenValid:    s.FreshAt(now, 0) && !s.NeedsReauth,
		TokenInfo:     tokenInfo(s, now),
		Context:       clinicalContext(s),
		FHIRServer:    s.FHIRBase,
		CreatedAt:     s.CreatedAt.UTC(),
		LastAccessed:  s.LastAccessedAt.UTC(),
		Links: brokersdk.StatusLinks{
			PatientData:      "/patient-data/" + id,
			SessionInfo:      "/session/" + id,
			ContextDiscovery: "/context-discovery/" + id,
			ReauthCheck:      "/reauth-required/" + id,
			Frontend:         frontend,
		},
	}
}

func sessionInfo(s domain.Session) brokersdk.SessionInfo {
	info := brokersdk.SessionInfo{
		SessionID:       s.ID,
		FHIRBase:        s.FHIRBase,
		AuthEndpoint:    s.AuthEndpoint,
		TokenEndpoint:   s.TokenEndpoint,
		ClientID:        s.ClientID,
		RedirectURI:     s.RedirectURI,
		Scope:           s.Scope,
		PatientID:       s.PatientID,
		PractitionerID:  s.PractitionerID,
		EncounterID:     s.EncounterID,
		Status:          string(s.Status),
		NeedsReauth:     s.NeedsReauth,
		CreatedAt:       s.CreatedAt.UTC(),
		LastAccessed:    s.LastAccessedAt.UTC(),
		HasAccessToken:  s.AccessToken != "",
		HasRefreshToken: s.RefreshToken != "",
		ExpiresAt:       expiresAt(s),
	}
	if s.AccessToken != "" {
		info.AccessTokenFingerprint = cryptox.Redact(s.AccessToken)
	}
	return info
}

func sessionSummary(s domain.Session) brokersdk.SessionSummary {
	return brokersdk.SessionSummary{
		SessionID:      s.ID,
		FHIRBase:       s.FHIRBase,
		Status:         string(s.Status),
		PatientID:      s.PatientID,
		PractitionerID: s.PractitionerID,
		CreatedAt:      s.CreatedAt.UTC(),
		LastAccessed:   s.LastAccessedAt.UTC(),
		HasAccessToken: s.AccessToken != "",
	}
}
