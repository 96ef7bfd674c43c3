// Package auth defines the collaborator contracts the first-click decision
// engine consumes: principals, request and session views, user lookup and
// base authentication.
//
// The host pipeline owns the concrete request and session. Adapters are
// provided for the common cases: HTTPRequest wraps a *http.Request, and the
// sessions package implements Session over a persisted marker pair.
//
// # Base Authentication
//
// A BaseAuthenticator answers "who is this caller before any first-click
// rules are applied". SessionAuthenticator reproduces the stock wiki
// behaviour of trusting the session's login marker unless the logout flag is
// set. BearerAuthenticator validates JWT access tokens carried in the
// Authorization header and yields a real user principal named after the
// token subject. Chain composes several authenticators; the first non-nil
// principal wins.
//
// Example:
//
//	base := auth.Chain{
//	    bearer,
//	    auth.SessionAuthenticator{},
//	}
//	p, err := base.Authenticate(ctx, auth.HTTPRequest{Request: r}, sess)
//
// # User Lookup
//
// Directory resolves a username to a Principal. Implementations return
// ErrUserNotFound when the user does not exist; callers treat any failure
// as "no principal".
package auth
