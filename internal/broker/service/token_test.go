package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/stretchr/testify/require"
)

func stale(s *domain.Session) { s.ExpiresAt = time.Now().Add(10 * time.Second) }

func TestEnsureValid(t *testing.T) {
	t.Parallel()

	t.Run("fresh token is returned without a network call", func(t *testing.T) {
		h := newHarness(t)
		s := h.authenticated(t, nil)

		got, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.NoError(t, err)
		require.Equal(t, "at-0", got.AccessToken)
		require.Zero(t, h.ehr.tokenCalls.Load())
	})

	t.Run("token inside the margin is refreshed", func(t *testing.T) {
		h := newHarness(t)
		h.ehr.setToken(tokenHandler(map[string]any{
			"access_token":  "at-2",
			"refresh_token": "rt-2",
			"token_type":    "Bearer",
			"expires_in":    1800,
		}))
		s := h.authenticated(t, stale)

		before := time.Now()
		got, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.NoError(t, err)
		require.Equal(t, "at-2", got.AccessToken)
		require.Equal(t, "rt-2", got.RefreshToken)
		require.WithinDuration(t, before.Add(30*time.Minute), got.ExpiresAt, 5*time.Second)
		require.False(t, got.NeedsReauth)

		form := h.ehr.lastForm()
		require.Equal(t, "refresh_token", form.Get("grant_type"))
		require.Equal(t, "rt-0", form.Get("refresh_token"))
		require.Equal(t, "my_web_app", form.Get("client_id"))
	})

	t.Run("refresh token carries forward when not rotated", func(t *testing.T) {
		h := newHarness(t)
		h.ehr.setToken(tokenHandler(map[string]any{"access_token": "at-2", "token_type": "Bearer"}))
		s := h.authenticated(t, stale)

		got, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.NoError(t, err)
		require.Equal(t, "at-2", got.AccessToken)
		require.Equal(t, "rt-0", got.RefreshToken)
	})

	t.Run("stale without refresh token requires reauth", func(t *testing.T) {
		h := newHarness(t)
		s := h.authenticated(t, func(s *domain.Session) {
			stale(s)
			s.RefreshToken = ""
		})

		_, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.ErrorIs(t, err, ErrReauthRequired)
		require.Zero(t, h.ehr.tokenCalls.Load())

		stored, err := h.sessions.Get(context.Background(), s.ID)
		require.NoError(t, err)
		require.True(t, stored.NeedsReauth)
	})

	t.Run("failed refresh flags the session", func(t *testing.T) {
		h := newHarness(t)
		h.ehr.setToken(jsonHandler(http.StatusBadRequest, map[string]string{"error": "invalid_grant"}))
		s := h.authenticated(t, stale)

		_, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.ErrorIs(t, err, ErrReauthRequired)

		stored, err := h.sessions.Get(context.Background(), s.ID)
		require.NoError(t, err)
		require.True(t, stored.NeedsReauth)
		require.Equal(t, "at-0", stored.AccessToken)

		_, err = h.tokens.EnsureValid(context.Background(), s.ID)
		require.ErrorIs(t, err, ErrReauthRequired)
		require.Equal(t, int32(1), h.ehr.tokenCalls.Load(), "flagged sessions do not retry")
	})

	t.Run("refresh timeout flags the session", func(t *testing.T) {
		h := newHarness(t)
		h.tokens.Timeout = 50 * time.Millisecond
		h.ehr.setToken(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
		s := h.authenticated(t, stale)

		_, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.ErrorIs(t, err, ErrReauthRequired)

		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
		require.Equal(t, NetworkTimeout, ne.Kind)
	})

	t.Run("unreachable token endpoint flags the session", func(t *testing.T) {
		h := newHarness(t)
		s := h.authenticated(t, func(s *domain.Session) {
			stale(s)
			s.TokenEndpoint = deadURL(t) + "/auth/token"
		})

		_, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.ErrorIs(t, err, ErrReauthRequired)

		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
		require.Equal(t, NetworkConnection, ne.Kind)

		stored, err := h.sessions.Get(context.Background(), s.ID)
		require.NoError(t, err)
		require.True(t, stored.NeedsReauth)
	})

	t.Run("cancelled caller does not abort the refresh", func(t *testing.T) {
		h := newHarness(t)
		s := h.authenticated(t, stale)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got, err := h.tokens.EnsureValid(ctx, s.ID)
		require.NoError(t, err)
		require.Equal(t, "at-1", got.AccessToken)
	})

	t.Run("unauthenticated session", func(t *testing.T) {
		h := newHarness(t)
		s := launch(t, h)

		_, err := h.tokens.EnsureValid(context.Background(), s.ID)
		require.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("unknown session", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.tokens.EnsureValid(context.Background(), "nope")
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestEnsureValidRefreshesOnceUnderContention(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.ehr.setToken(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		tokenHandler(map[string]any{"access_token": "at-2", "token_type": "Bearer", "expires_in": 3600})(w, r)
	})
	s := h.authenticated(t, stale)

	const workers = 20
	var wg sync.WaitGroup
	tokens := make([]string, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := h.tokens.EnsureValid(context.Background(), s.ID)
			if err != nil {
				t.Error(err)
				return
			}
			tokens[i] = got.AccessToken
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), h.ehr.tokenCalls.Load())
	for _, tok := range tokens {
		require.Equal(t, "at-2", tok)
	}
}

func TestReplaceRejected(t *testing.T) {
	t.Parallel()

	t.Run("refreshes a rejected token that has not expired", func(t *testing.T) {
		h := newHarness(t)
		s := h.authenticated(t, nil)

		got, err := h.tokens.ReplaceRejected(context.Background(), s.ID, "at-0")
		require.NoError(t, err)
		require.Equal(t, "at-1", got.AccessToken)
		require.Equal(t, int32(1), h.ehr.tokenCalls.Load())
	})

	t.Run("reuses a token another caller already replaced", func(t *testing.T) {
		h := newHarness(t)
		s := h.authenticated(t, nil)

		got, err := h.tokens.ReplaceRejected(context.Background(), s.ID, "at-old")
		require.NoError(t, err)
		require.Equal(t, "at-0", got.AccessToken)
		require.Zero(t, h.ehr.tokenCalls.Load())
	})
}
