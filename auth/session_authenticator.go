package auth

import "context"

// SessionAuthenticator trusts the session's login marker unless the logout
// marker is set. This is the stock wiki behaviour the first-click engine
// augments.
type SessionAuthenticator struct{}

var _ BaseAuthenticator = SessionAuthenticator{}

func (SessionAuthenticator) Authenticate(_ context.Context, _ Request, sess Session) (Principal, error) {
	if sess == nil || sess.LoggedOut() {
		return nil, nil
	}
	return sess.Principal(), nil
}
