package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store"
	"github.com/aussiebroadwan/smartbroker/pkg/cryptox"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
	"golang.org/x/oauth2"
)

// ClientConfig holds the fixed OAuth client parameters of this deployment.
type ClientConfig struct {
	ClientID     string
	ClientSecret string // optional, sent as client_secret when set
	RedirectURI  string
	Scope        string
}

// LaunchResult is the outcome of initiating a launch.
type LaunchResult struct {
	Session     domain.Session
	RedirectURL string
}

// CallbackParams are the query parameters of the redirect back from the
// authorization server.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// AuthorizeService is the Authorization Flow Controller: it turns an EHR
// launch into a session and completes the code exchange on callback.
type AuthorizeService struct {
	Sessions     store.Sessions
	Discovery    Discoverer
	Claims       *ClaimsExtractor
	HTTP         *Outbound
	Client       ClientConfig
	TokenTimeout time.Duration
	Metrics      *Metrics
	Now          func() time.Time
}

func (s *AuthorizeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// InitiateLaunch discovers the issuer's endpoints, creates a Launched session
// and returns the authorization URL to redirect the browser to.
func (s *AuthorizeService) InitiateLaunch(ctx context.Context, launch, iss string) (*LaunchResult, error) {
	l := slogx.FromContext(ctx)

	// iss is echoed as aud byte for byte; blank values are still refused.
	if strings.TrimSpace(launch) == "" || strings.TrimSpace(iss) == "" {
		s.Metrics.launch("invalid_request")
		return nil, fmt.Errorf("%w: launch and iss are required", ErrInvalidRequest)
	}

	cfg, err := s.Discovery.Discover(ctx, iss)
	if err != nil {
		s.Metrics.launch("discovery_failed")
		return nil, err
	}

	id, err := cryptox.NewSessionID()
	if err != nil {
		l.Error("failed to generate session id", "error", err)
		return nil, err
	}

	now := s.now()
	session := domain.Session{
		ID:             id,
		FHIRBase:       iss,
		AuthEndpoint:   cfg.AuthorizationEndpoint,
		TokenEndpoint:  cfg.TokenEndpoint,
		JWKSURI:        cfg.JWKSURI,
		LaunchContext:  launch,
		ClientID:       s.Client.ClientID,
		RedirectURI:    s.Client.RedirectURI,
		Scope:          s.Client.Scope,
		Status:         domain.StatusLaunched,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if err := s.Sessions.Create(ctx, session); err != nil {
		l.Error("failed to store session", "error", err)
		return nil, err
	}

	redirect := oauthConfig(session, "").AuthCodeURL(session.ID,
		oauth2.SetAuthURLParam("launch", launch),
		oauth2.SetAuthURLParam("aud", iss),
	)

	s.Metrics.launch("redirected")
	slogx.FromContext(slogx.WithSession(ctx, id)).Info("launch initiated",
		"iss", iss,
		"authorization_endpoint", session.AuthEndpoint,
	)
	return &LaunchResult{Session: session, RedirectURL: redirect}, nil
}

// HandleCallback completes the authorization code flow for the session named
// by State. A state is accepted at most once, even when the exchange fails.
func (s *AuthorizeService) HandleCallback(ctx context.Context, p CallbackParams) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	if p.Error != "" {
		s.Metrics.callback("authorization_error")
		l.Warn("authorization server returned an error", "error_code", p.Error, "description", p.ErrorDescription)
		return domain.Session{}, &AuthorizationError{Code: p.Error, Description: p.ErrorDescription}
	}
	if p.State == "" {
		s.Metrics.callback("invalid_session")
		return domain.Session{}, fmt.Errorf("%w: missing state", ErrInvalidSession)
	}
	if p.Code == "" {
		s.Metrics.callback("invalid_request")
		return domain.Session{}, fmt.Errorf("%w: missing code", ErrInvalidRequest)
	}

	ctx = slogx.WithSession(ctx, p.State)
	l = slogx.FromContext(ctx)

	session, err := s.Sessions.WithLock(ctx, p.State, func(sess *domain.Session) error {
		if sess.StateUsed || sess.Status != domain.StatusLaunched {
			return fmt.Errorf("%w: state already used", ErrInvalidSession)
		}
		sess.StateUsed = true

		tok, err := s.exchange(ctx, *sess, p.Code)
		if err != nil {
			return err
		}

		now := s.now()
		sess.AccessToken = tok.AccessToken
		sess.RefreshToken = tok.RefreshToken
		sess.ExpiresAt = now.Add(expiresIn(tok))
		sess.Status = domain.StatusAuthenticated
		sess.LastAccessedAt = now

		cc := s.Claims.Extract(ctx, tokenContext(tok), sess.LaunchContext)
		for _, field := range sess.ApplyContext(cc) {
			l.Info("context discovered", "field", field, "source", cc.Sources[field])
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.Metrics.callback("invalid_session")
			l.Warn("callback for unknown state")
			return domain.Session{}, fmt.Errorf("%w: unknown state", ErrInvalidSession)
		case errors.Is(err, ErrInvalidSession):
			s.Metrics.callback("invalid_session")
			l.Warn("callback state replayed")
		default:
			s.Metrics.callback("exchange_failed")
			l.Error("token exchange failed", "error", err)
		}
		return domain.Session{}, err
	}

	s.Metrics.callback("authenticated")
	if session.PatientID == "" {
		l.Warn("no patient context discovered, patient selection required")
	}
	l.Info("session authenticated",
		"patient_id", session.PatientID,
		"practitioner_id", session.PractitionerID,
		"encounter_id", session.EncounterID,
		"has_refresh_token", session.RefreshToken != "",
		"expires_at", session.ExpiresAt,
	)
	return session, nil
}

func (s *AuthorizeService) exchange(ctx context.Context, sess domain.Session, code string) (*oauth2.Token, error) {
	timeout := s.TokenTimeout
	if timeout <= 0 {
		timeout = DefaultTokenTimeout
	}
	octx, cancel := s.HTTP.OAuthContext(ctx, timeout)
	defer cancel()

	tok, err := oauthConfig(sess, s.Client.ClientSecret).Exchange(octx, code,
		oauth2.SetAuthURLParam("aud", sess.FHIRBase),
	)
	if err != nil {
		return nil, exchangeError(octx, err)
	}
	return tok, nil
}

// exchangeError maps an x/oauth2 failure onto TokenExchangeError.
func exchangeError(octx context.Context, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		te := &TokenExchangeError{Code: re.ErrorCode, Err: err}
		if re.Response != nil {
			te.StatusCode = re.Response.StatusCode
		}
		return te
	}
	if ne := tokenTransportError(octx, err); ne != nil {
		return &TokenExchangeError{Err: ne}
	}
	return &TokenExchangeError{Err: err}
}
