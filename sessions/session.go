package sessions

import (
	"github.com/mulesoft-labs/wikiauth/auth"
)

// Session is a request-scoped view of one session's State. It is not safe
// for concurrent use.
type Session struct {
	id    string
	state *State
	isNew bool
	dirty bool
}

var _ auth.Session = (*Session)(nil)

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session did not exist in the store when opened.
func (s *Session) IsNew() bool { return s.isNew }

// Dirty reports whether a marker was written since the session was opened.
func (s *Session) Dirty() bool { return s.dirty }

// State returns a copy of the current state.
func (s *Session) State() *State { return s.state.Clone() }

func (s *Session) Principal() auth.Principal {
	if s.state.LoggedIn == "" {
		return nil
	}
	return auth.User{Username: s.state.LoggedIn}
}

func (s *Session) LoggedOut() bool {
	return s.state.LoggedOut != nil && *s.state.LoggedOut
}

func (s *Session) SetLoginMarker(p auth.Principal) {
	s.state.LoggedIn = auth.NameOf(p)
	s.dirty = true
}

func (s *Session) SetLogoutMarker(v *bool) {
	if v == nil {
		s.state.LoggedOut = nil
	} else {
		b := *v
		s.state.LoggedOut = &b
	}
	s.dirty = true
}
