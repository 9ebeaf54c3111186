package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store"
	"github.com/aussiebroadwan/smartbroker/pkg/cryptox"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
	"golang.org/x/oauth2"
)

// DefaultRefreshMargin is how close to expiry a token is treated as stale.
const DefaultRefreshMargin = 30 * time.Second

// TokenManager is the part of TokenService the fetcher depends on.
type TokenManager interface {
	EnsureValid(ctx context.Context, sessionID string) (domain.Session, error)
	ReplaceRejected(ctx context.Context, sessionID, rejected string) (domain.Session, error)
}

// TokenService is the Token Lifecycle Manager. All refreshes for a session run
// inside the repository's per-session critical section, so at most one refresh
// request is in flight per session. Callers that queued behind it re-check the
// stored token and reuse the refreshed one.
type TokenService struct {
	Sessions     store.Sessions
	HTTP         *Outbound
	ClientSecret string
	Timeout      time.Duration
	Margin       time.Duration
	Metrics      *Metrics
	Now          func() time.Time
}

var _ TokenManager = (*TokenService)(nil)

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) margin() time.Duration {
	if s.Margin <= 0 {
		return DefaultRefreshMargin
	}
	return s.Margin
}

// EnsureValid returns the session with an access token that stays valid for
// at least the refresh margin, refreshing it if needed. It fails with
// ErrReauthRequired, and leaves NeedsReauth set, when that is impossible.
func (s *TokenService) EnsureValid(ctx context.Context, sessionID string) (domain.Session, error) {
	return s.ensure(ctx, sessionID, "")
}

// ReplaceRejected is EnsureValid for a token the resource server refused. If
// the stored token is still the rejected one it is refreshed regardless of
// its expiry; if another caller already replaced it, the replacement is used.
func (s *TokenService) ReplaceRejected(ctx context.Context, sessionID, rejected string) (domain.Session, error) {
	return s.ensure(ctx, sessionID, rejected)
}

func (s *TokenService) ensure(ctx context.Context, sessionID, rejected string) (domain.Session, error) {
	ctx = slogx.WithSession(ctx, sessionID)
	l := slogx.FromContext(ctx)

	session, err := s.Sessions.WithLock(ctx, sessionID, func(sess *domain.Session) error {
		if !sess.Authenticated() {
			return ErrNotAuthenticated
		}
		if sess.NeedsReauth {
			return fmt.Errorf("%w: flagged for re-authentication", ErrReauthRequired)
		}

		now := s.now()
		if sess.FreshAt(now, s.margin()) && (rejected == "" || sess.AccessToken != rejected) {
			return nil
		}

		if sess.RefreshToken == "" {
			sess.NeedsReauth = true
			s.Metrics.refresh("no_refresh_token")
			l.Warn("access token stale and no refresh token, re-authentication required")
			return fmt.Errorf("%w: no refresh token", ErrReauthRequired)
		}

		l.Info("refreshing access token",
			"expires_at", sess.ExpiresAt,
			"rejected", rejected != "",
			"token", cryptox.Redact(sess.AccessToken),
		)

		tok, err := s.refresh(ctx, *sess)
		if err != nil {
			sess.NeedsReauth = true
			s.Metrics.refresh("failed")
			l.Error("token refresh failed, re-authentication required", "error", err)
			return fmt.Errorf("%w: %w", ErrReauthRequired, err)
		}

		now = s.now()
		sess.AccessToken = tok.AccessToken
		if tok.RefreshToken != "" {
			sess.RefreshToken = tok.RefreshToken
		}
		sess.ExpiresAt = now.Add(expiresIn(tok))
		sess.LastAccessedAt = now
		sess.NeedsReauth = false

		s.Metrics.refresh("success")
		l.Info("token refresh successful", "expires_at", sess.ExpiresAt)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, err
}

func (s *TokenService) refresh(ctx context.Context, sess domain.Session) (*oauth2.Token, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTokenTimeout
	}
	octx, cancel := s.HTTP.OAuthContext(ctx, timeout)
	defer cancel()

	src := oauthConfig(sess, s.ClientSecret).TokenSource(octx, &oauth2.Token{RefreshToken: sess.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		if ne := tokenTransportError(octx, err); ne != nil {
			return nil, ne
		}
		return nil, err
	}
	return tok, nil
}
