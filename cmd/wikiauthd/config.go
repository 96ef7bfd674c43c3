package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/pflag"
)

// daemonConfig holds process-level settings. Values come from the
// environment first and may be overridden by flags. Decision rules are
// configured in the properties file, not here.
type daemonConfig struct {
	Listen         string        `env:"WIKIAUTH_LISTEN,default=127.0.0.1:8080"`
	PropertiesPath string        `env:"WIKIAUTH_PROPERTIES,default=muleauth.properties"`
	Watch          bool          `env:"WIKIAUTH_WATCH,default=false"`
	Users          []string      `env:"WIKIAUTH_USERS,default=googlefcf;googlebot"`
	SessionStore   string        `env:"WIKIAUTH_SESSION_STORE,default=memory"`
	SessionTTL     time.Duration `env:"WIKIAUTH_SESSION_TTL,default=30m"`
	MemorySessions int           `env:"WIKIAUTH_MEMORY_SESSIONS,default=10000"`
	SecureCookie   bool          `env:"WIKIAUTH_SECURE_COOKIE,default=false"`
	LogLevel       string        `env:"WIKIAUTH_LOG_LEVEL,default=info"`
	OIDCIssuer     string        `env:"OIDC_ISSUER"`
	OIDCAudience   string        `env:"OIDC_AUDIENCE"`
	OIDCJWKSURL    string        `env:"OIDC_JWKS_URL"`
}

func loadConfig(args []string) (*daemonConfig, error) {
	var cfg daemonConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	fs := pflag.NewFlagSet("wikiauthd", pflag.ContinueOnError)
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "address to serve on")
	fs.StringVarP(&cfg.PropertiesPath, "properties", "p", cfg.PropertiesPath, "path to the first-click properties file")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload the properties file as soon as it changes")
	fs.StringSliceVar(&cfg.Users, "users", cfg.Users, "usernames known to the demo directory")
	fs.StringVar(&cfg.SessionStore, "session-store", cfg.SessionStore, "session store: memory or redis")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "idle session lifetime")
	fs.IntVar(&cfg.MemorySessions, "memory-sessions", cfg.MemorySessions, "maximum sessions kept by the memory store")
	fs.BoolVar(&cfg.SecureCookie, "secure-cookie", cfg.SecureCookie, "mark the session cookie Secure")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.OIDCIssuer, "oidc-issuer", cfg.OIDCIssuer, "issuer of bearer tokens for real users")
	fs.StringVar(&cfg.OIDCAudience, "oidc-audience", cfg.OIDCAudience, "expected bearer token audience")
	fs.StringVar(&cfg.OIDCJWKSURL, "oidc-jwks-url", cfg.OIDCJWKSURL, "JWKS URL; skips OIDC discovery when set")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch cfg.SessionStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
	if cfg.OIDCIssuer != "" && cfg.OIDCAudience == "" {
		return nil, errors.New("--oidc-audience is required with --oidc-issuer")
	}
	return &cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}
