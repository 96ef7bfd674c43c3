// Package authtest provides in-memory Request and Session fakes for testing
// code that consumes the auth contracts.
package authtest

import (
	"context"
	"net/http"

	"github.com/mulesoft-labs/wikiauth/auth"
)

// Request is a fake auth.Request. Header lookups are case-insensitive.
type Request struct {
	Headers http.Header
	Addr    string
}

var _ auth.Request = (*Request)(nil)

// NewRequest builds a Request from name/value pairs.
func NewRequest(addr string, kv ...string) *Request {
	r := &Request{Headers: http.Header{}, Addr: addr}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Headers.Set(kv[i], kv[i+1])
	}
	return r
}

func (r *Request) Header(name string) string { return r.Headers.Get(name) }

func (r *Request) HeaderNames() []string {
	names := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		names = append(names, k)
	}
	return names
}

func (r *Request) RemoteAddr() string { return r.Addr }

// Mutation records one marker write.
type Mutation struct {
	Marker    string // "login" or "logout"
	Principal string
	Logout    *bool
}

// Session is a fake auth.Session that records every marker write.
type Session struct {
	LoginMarker  auth.Principal
	LogoutMarker *bool
	Mutations    []Mutation
}

var _ auth.Session = (*Session)(nil)

// NewSession returns a session already logged in as p (which may be nil).
func NewSession(p auth.Principal) *Session {
	return &Session{LoginMarker: p}
}

func (s *Session) Principal() auth.Principal { return s.LoginMarker }

func (s *Session) LoggedOut() bool { return s.LogoutMarker != nil && *s.LogoutMarker }

func (s *Session) SetLoginMarker(p auth.Principal) {
	s.LoginMarker = p
	s.Mutations = append(s.Mutations, Mutation{Marker: "login", Principal: auth.NameOf(p)})
}

func (s *Session) SetLogoutMarker(v *bool) {
	s.LogoutMarker = v
	s.Mutations = append(s.Mutations, Mutation{Marker: "logout", Logout: v})
}

// Fixed is a base authenticator that always returns the same principal.
type Fixed struct {
	Principal auth.Principal
	Err       error
}

func (f Fixed) Authenticate(context.Context, auth.Request, auth.Session) (auth.Principal, error) {
	return f.Principal, f.Err
}
