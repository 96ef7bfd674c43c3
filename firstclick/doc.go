// Package firstclick implements the "first free click" session
// authentication decision.
//
// A visitor arriving from a qualifying search referrer, or a crawler
// identifying itself with a qualifying header, is logged into the session as
// a configured anonymous user. The grant lasts for that navigation only: the
// next request from the same session without the qualifying signal forces a
// logout. Same-origin AJAX requests issued by the wiki page itself are let
// through without forcing a logout. Real users authenticated by the base
// authenticator are never touched.
//
// The Engine wraps an auth.BaseAuthenticator rather than replacing it:
//
//	eng := firstclick.New(provider, auth.SessionAuthenticator{}, directory,
//	    firstclick.WithLogger(logger))
//	principal := eng.Decide(ctx, auth.HTTPRequest{Request: r}, sess)
//
// Every comparison value and username is read from the configuration on
// each decision, so a refreshed configuration takes effect immediately.
package firstclick
