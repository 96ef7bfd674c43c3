package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mulesoft-labs/wikiauth/internal/jwtauth"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// TokenChecker validates a bearer token and returns its subject.
type TokenChecker interface {
	CheckToken(ctx context.Context, tok string) (subject string, err error)
}

// BearerAuthenticator authenticates real users from an Authorization bearer
// token. Requests without the header yield a nil principal and no error.
type BearerAuthenticator struct {
	Checker TokenChecker
}

var _ BaseAuthenticator = (*BearerAuthenticator)(nil)

func (b *BearerAuthenticator) Authenticate(ctx context.Context, req Request, _ Session) (Principal, error) {
	h := req.Header(authorizationHeader)
	if h == "" {
		return nil, nil
	}
	if !strings.HasPrefix(h, bearerPrefix) {
		return nil, fmt.Errorf("%w: malformed bearer authorization header", ErrUnauthorized)
	}
	tok := strings.TrimSpace(h[len(bearerPrefix):])
	sub, err := b.Checker.CheckToken(ctx, tok)
	if err != nil {
		if errors.Is(err, jwtauth.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}
	return User{Username: sub}, nil
}

// BearerOption configures token validation for the bearer constructors.
type BearerOption func(*jwtauth.Config)

// WithAllowedAlgs restricts allowed JWS algorithms. Defaults to ["RS256"].
func WithAllowedAlgs(algs ...string) BearerOption {
	return func(c *jwtauth.Config) { c.AllowedAlgs = append([]string(nil), algs...) }
}

// WithLeeway sets clock skew tolerance for time-based claims.
func WithLeeway(d time.Duration) BearerOption {
	return func(c *jwtauth.Config) { c.Leeway = d }
}

// WithAccessTokenTyp requires the RFC 9068 "at+jwt" typ header.
func WithAccessTokenTyp() BearerOption {
	return func(c *jwtauth.Config) { c.RequireAccessTokenTyp = true }
}

func bearerConfig(issuer string, audiences []string, opts []BearerOption) *jwtauth.Config {
	cfg := jwtauth.DefaultConfig()
	cfg.Issuer = issuer
	cfg.ExpectedAudiences = append([]string(nil), audiences...)
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewBearerFromDiscovery returns a BearerAuthenticator whose signing keys are
// found through OpenID Connect discovery on issuer.
func NewBearerFromDiscovery(ctx context.Context, issuer, audience string, opts ...BearerOption) (*BearerAuthenticator, error) {
	if audience == "" {
		return nil, errors.New("audience is required")
	}
	v, err := jwtauth.NewFromDiscovery(ctx, bearerConfig(issuer, []string{audience}, opts))
	if err != nil {
		return nil, err
	}
	return &BearerAuthenticator{Checker: v}, nil
}

// NewBearerStatic returns a BearerAuthenticator that reads signing keys from
// a fixed JWKS URI.
func NewBearerStatic(ctx context.Context, issuer, jwksURI string, audiences []string, opts ...BearerOption) (*BearerAuthenticator, error) {
	v, err := jwtauth.NewStatic(ctx, bearerConfig(issuer, audiences, opts), jwksURI)
	if err != nil {
		return nil, err
	}
	return &BearerAuthenticator{Checker: v}, nil
}
