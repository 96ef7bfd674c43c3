package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates authentication was attempted and failed.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUserNotFound indicates a directory has no user with the requested name.
var ErrUserNotFound = errors.New("user not found")

// Principal is an opaque authenticated identity.
type Principal interface {
	// Name returns the principal's username.
	Name() string
}

// User is the value Principal used throughout this module.
type User struct {
	Username string
}

// Name implements Principal.
func (u User) Name() string { return u.Username }

func (u User) String() string { return u.Username }

// NameOf returns p's name, or the empty string for a nil principal.
func NameOf(p Principal) string {
	if p == nil {
		return ""
	}
	return p.Name()
}

// SameName reports whether p is non-nil and its name equals name, ignoring
// case.
func SameName(p Principal, name string) bool {
	return p != nil && strings.EqualFold(p.Name(), name)
}

// Request is a read-only view of an inbound request.
type Request interface {
	// Header returns the first value of the named header. Lookup is
	// case-insensitive; the empty string means the header is absent.
	Header(name string) string
	// HeaderNames lists the header names present on the request.
	HeaderNames() []string
	RemoteAddr() string
}

// HTTPRequest adapts a *http.Request to Request.
type HTTPRequest struct {
	*http.Request
}

var _ Request = HTTPRequest{}

func (r HTTPRequest) Header(name string) string { return r.Request.Header.Get(name) }

func (r HTTPRequest) HeaderNames() []string {
	names := make([]string, 0, len(r.Request.Header))
	for k := range r.Request.Header {
		names = append(names, k)
	}
	return names
}

func (r HTTPRequest) RemoteAddr() string { return r.Request.RemoteAddr }

// Session is the mutable login state the host keeps per HTTP session.
// Implementations are not required to be safe for concurrent use; a session
// belongs to one request at a time.
type Session interface {
	// Principal returns the logged-in principal marker, or nil.
	Principal() Principal
	// LoggedOut reports whether the logout marker is set to true.
	LoggedOut() bool
	// SetLoginMarker replaces the logged-in principal. Nil clears it.
	SetLoginMarker(p Principal)
	// SetLogoutMarker replaces the logout flag. Nil clears it.
	SetLogoutMarker(v *bool)
}

// BaseAuthenticator resolves the caller's principal before any first-click
// rules apply. It returns a nil principal and nil error for anonymous
// callers.
type BaseAuthenticator interface {
	Authenticate(ctx context.Context, req Request, sess Session) (Principal, error)
}

// BaseAuthenticatorFunc adapts a function to BaseAuthenticator.
type BaseAuthenticatorFunc func(ctx context.Context, req Request, sess Session) (Principal, error)

func (f BaseAuthenticatorFunc) Authenticate(ctx context.Context, req Request, sess Session) (Principal, error) {
	return f(ctx, req, sess)
}

// Chain tries each authenticator in order and returns the first non-nil
// principal. An error stops the chain.
type Chain []BaseAuthenticator

func (c Chain) Authenticate(ctx context.Context, req Request, sess Session) (Principal, error) {
	for _, a := range c {
		p, err := a.Authenticate(ctx, req, sess)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, nil
}

// Directory resolves usernames to principals.
type Directory interface {
	// LookupUser returns ErrUserNotFound when no such user exists.
	LookupUser(ctx context.Context, username string) (Principal, error)
}
