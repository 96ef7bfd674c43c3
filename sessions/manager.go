package sessions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/thejerf/abtime"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets the idle lifetime applied on every commit.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock sets the time source used for timestamps.
func WithClock(clock abtime.AbstractTime) ManagerOption {
	return func(m *Manager) { m.clock = clock }
}

// WithLogger sets the logger. If not provided, logs are discarded.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// Manager opens and commits sessions against a Store.
type Manager struct {
	store Store
	ttl   time.Duration
	clock abtime.AbstractTime
	log   *slog.Logger
}

// NewManager returns a Manager backed by store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		ttl:   DefaultTTL,
		clock: abtime.NewRealTime(),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns the session for id. An empty, malformed or unknown id yields
// a fresh session with a new id; the caller is expected to hand the new id
// back to the client.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	if validID(id) {
		st, err := m.store.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if st != nil {
			return &Session{id: id, state: st}, nil
		}
		m.log.DebugContext(ctx, "session.load.miss", slog.String("session_id", id))
	}

	now := m.clock.Now()
	s := &Session{
		id:    uuid.NewString(),
		state: &State{CreatedAt: now, UpdatedAt: now},
		isNew: true,
	}
	m.log.DebugContext(ctx, "session.create", slog.String("session_id", s.id))
	return s, nil
}

// Commit persists s when a marker was written and otherwise refreshes its
// expiry. A new session with no markers is not stored at all. issued
// reports that a new session was stored and its id must reach the client.
func (m *Manager) Commit(ctx context.Context, s *Session) (issued bool, err error) {
	switch {
	case s.isNew && !s.dirty:
		return false, nil
	case !s.dirty:
		if err := m.store.Touch(ctx, s.id, m.ttl); err != nil {
			return false, fmt.Errorf("touch session: %w", err)
		}
		return false, nil
	}
	s.state.UpdatedAt = m.clock.Now()
	if err := m.store.Save(ctx, s.id, s.state, m.ttl); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}
	issued = s.isNew
	s.isNew, s.dirty = false, false
	m.log.DebugContext(ctx, "session.save", slog.String("session_id", s.id), slog.Bool("issued", issued))
	return issued, nil
}

// Destroy removes the session from the store.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrInvalidID
	}
	return m.store.Delete(ctx, id)
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
