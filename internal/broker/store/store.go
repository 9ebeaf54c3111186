package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Sessions is the Session Repository. Implementations must allow lookups
// concurrently with inserts and deletes, and serialize WithLock per session id
// without a global lock.
//
// Sessions are never evicted; they live until Delete is called.
type Sessions interface {
	// Create stores a new session. It fails with ErrAlreadyExists on an id
	// collision and with domain.ErrInvariant if s does not validate.
	Create(ctx context.Context, s domain.Session) error

	// Get returns a snapshot of the session. It never waits on a WithLock
	// section in progress, so it may observe the state from before it.
	Get(ctx context.Context, id string) (domain.Session, error)

	// List returns snapshots of all sessions, oldest first.
	List(ctx context.Context) ([]domain.Session, error)

	// Delete removes the session. Any WithLock section waiting on it
	// afterwards fails with ErrNotFound.
	Delete(ctx context.Context, id string) error

	// WithLock runs fn inside the session's exclusive critical section with a
	// working copy of the session. Changes fn makes to the copy are committed
	// when fn returns, even if it returns an error, as long as the result
	// still validates; otherwise nothing is committed and the validation error
	// is returned. The session returned is the committed state.
	WithLock(ctx context.Context, id string, fn func(s *domain.Session) error) (domain.Session, error)

	// Count returns the number of stored sessions.
	Count() int
}
