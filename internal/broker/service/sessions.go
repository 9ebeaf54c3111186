package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
)

// SessionService covers session introspection and the manual context and
// re-authentication controls exposed to the front-end.
type SessionService struct {
	Sessions store.Sessions
	Now      func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Get returns a snapshot of the session.
func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	sess, err := s.Sessions.Get(ctx, id)
	return sess, notFound(err)
}

// List returns every session, oldest first.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	return s.Sessions.List(ctx)
}

// Delete removes the session. A fetch already in flight for it finishes
// with the snapshot it holds.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := notFound(s.Sessions.Delete(ctx, id)); err != nil {
		return err
	}
	slogx.FromContext(slogx.WithSession(ctx, id)).Info("session deleted")
	return nil
}

// SetPatient sets the patient context of an authenticated session, replacing
// any patient discovered at launch.
func (s *SessionService) SetPatient(ctx context.Context, id, patientID string) (domain.Session, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return domain.Session{}, fmt.Errorf("%w: patient_id is required", ErrInvalidRequest)
	}

	ctx = slogx.WithSession(ctx, id)
	sess, err := s.Sessions.WithLock(ctx, id, func(sess *domain.Session) error {
		if !sess.Authenticated() {
			return ErrNotAuthenticated
		}
		sess.PatientID = patientID
		sess.LastAccessedAt = s.now()
		return nil
	})
	if err != nil {
		return domain.Session{}, notFound(err)
	}

	slogx.FromContext(ctx).Info("patient context set manually", "patient_id", patientID)
	return sess, nil
}

// ClearReauth drops the NeedsReauth flag so the next fetch attempts a refresh
// again.
func (s *SessionService) ClearReauth(ctx context.Context, id string) (domain.Session, error) {
	ctx = slogx.WithSession(ctx, id)
	sess, err := s.Sessions.WithLock(ctx, id, func(sess *domain.Session) error {
		sess.NeedsReauth = false
		sess.LastAccessedAt = s.now()
		return nil
	})
	if err != nil {
		return domain.Session{}, notFound(err)
	}

	slogx.FromContext(ctx).Info("re-authentication flag cleared")
	return sess, nil
}

// Touch records an access to the session and returns its latest state.
func (s *SessionService) Touch(ctx context.Context, id string) (domain.Session, error) {
	sess, err := s.Sessions.WithLock(ctx, id, func(sess *domain.Session) error {
		sess.LastAccessedAt = s.now()
		return nil
	})
	return sess, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
