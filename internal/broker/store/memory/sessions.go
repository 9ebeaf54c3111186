// Package memory is the in-process Session Repository. Nothing survives a
// restart.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store"
)

// entry holds one session. lock is the per-session critical section; dataMu
// only guards reads and writes of session, so snapshots never wait for a
// network round-trip held under lock.
type entry struct {
	lock sync.Mutex

	dataMu  sync.RWMutex
	session domain.Session
	deleted bool
}

func (e *entry) snapshot() (domain.Session, bool) {
	e.dataMu.RLock()
	defer e.dataMu.RUnlock()
	return e.session, !e.deleted
}

// Sessions implements store.Sessions.
type Sessions struct {
	entries sync.Map // map[string]*entry

	countMu sync.Mutex
	count   int
}

var _ store.Sessions = (*Sessions)(nil)

func NewSessions() *Sessions {
	return &Sessions{}
}

func (m *Sessions) Create(_ context.Context, s domain.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	e := &entry{session: s}
	if _, loaded := m.entries.LoadOrStore(s.ID, e); loaded {
		return fmt.Errorf("session %q: %w", s.ID, store.ErrAlreadyExists)
	}

	m.countMu.Lock()
	m.count++
	m.countMu.Unlock()
	return nil
}

func (m *Sessions) load(id string) (*entry, bool) {
	v, ok := m.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func (m *Sessions) Get(_ context.Context, id string) (domain.Session, error) {
	e, ok := m.load(id)
	if !ok {
		return domain.Session{}, store.ErrNotFound
	}
	s, live := e.snapshot()
	if !live {
		return domain.Session{}, store.ErrNotFound
	}
	return s, nil
}

func (m *Sessions) List(_ context.Context) ([]domain.Session, error) {
	var out []domain.Session
	m.entries.Range(func(_, v any) bool {
		if s, live := v.(*entry).snapshot(); live {
			out = append(out, s)
		}
		return true
	})

	slices.SortFunc(out, func(a, b domain.Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *Sessions) Delete(_ context.Context, id string) error {
	v, ok := m.entries.LoadAndDelete(id)
	if !ok {
		return store.ErrNotFound
	}

	e := v.(*entry)
	e.dataMu.Lock()
	e.deleted = true
	e.dataMu.Unlock()

	m.countMu.Lock()
	m.count--
	m.countMu.Unlock()
	return nil
}

func (m *Sessions) WithLock(
	_ context.Context,
	id string,
	fn func(s *domain.Session) error,
) (domain.Session, error) {
	e, ok := m.load(id)
	if !ok {
		return domain.Session{}, store.ErrNotFound
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	working, live := e.snapshot()
	if !live {
		return domain.Session{}, store.ErrNotFound
	}

	fnErr := fn(&working)

	// The id is the map key and may never change.
	working.ID = id
	if err := working.Validate(); err != nil {
		return e.current(), errors.Join(err, fnErr)
	}

	e.dataMu.Lock()
	if e.deleted {
		e.dataMu.Unlock()
		return domain.Session{}, store.ErrNotFound
	}
	e.session = working
	e.dataMu.Unlock()

	return working, fnErr
}

func (e *entry) current() domain.Session {
	s, _ := e.snapshot()
	return s
}

func (m *Sessions) Count() int {
	m.countMu.Lock()
	defer m.countMu.Unlock()
	return m.count
}
