// Command wikiauthd serves the first-click decision in front of a wiki.
//
// It is a reference host: requests pass through the decision filter and
// the resulting principal is reported at /whoami. Real deployments embed
// the httpfilter package in the wiki's own handler chain instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mulesoft-labs/wikiauth/auth"
	"github.com/mulesoft-labs/wikiauth/config"
	"github.com/mulesoft-labs/wikiauth/firstclick"
	"github.com/mulesoft-labs/wikiauth/httpfilter"
	"github.com/mulesoft-labs/wikiauth/internal/logctx"
	"github.com/mulesoft-labs/wikiauth/sessions"
	"github.com/mulesoft-labs/wikiauth/sessions/memorystore"
	"github.com/mulesoft-labs/wikiauth/sessions/redisstore"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "wikiauthd:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	var lv slog.LevelVar
	lvl, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	lv.Set(lvl)
	log := slog.New(logctx.Handler{Handler: slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: &lv})})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := config.New(config.FileSource{Path: cfg.PropertiesPath}, config.WithLogger(log.With(slog.String("component", "config"))))
	provider.Validate()
	if cfg.Watch {
		go func() {
			if err := provider.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("config.watch.fail", slog.String("err", err.Error()))
			}
		}()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	base, err := baseAuthenticator(ctx, cfg)
	if err != nil {
		return err
	}

	engine := firstclick.New(provider, base, auth.NewStaticDirectory(cfg.Users...),
		firstclick.WithLogger(log.With(slog.String("component", "firstclick"))))
	mgr := sessions.NewManager(store, sessions.WithTTL(cfg.SessionTTL), sessions.WithLogger(log))
	filter := httpfilter.New(engine, mgr, httpfilter.WithLogger(log), httpfilter.WithSecureCookie(cfg.SecureCookie))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(filter, provider, &lv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http.listen", slog.String("addr", cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("http.shutdown")
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *daemonConfig) (sessions.Store, error) {
	if cfg.SessionStore == "redis" {
		s, err := redisstore.NewFromEnv()
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		return s, nil
	}
	s, err := memorystore.New(cfg.MemorySessions)
	if err != nil {
		return nil, err
	}
	go s.Run(ctx, 5*time.Minute)
	return s, nil
}

func baseAuthenticator(ctx context.Context, cfg *daemonConfig) (auth.BaseAuthenticator, error) {
	if cfg.OIDCIssuer == "" {
		return auth.SessionAuthenticator{}, nil
	}
	var (
		bearer *auth.BearerAuthenticator
		err    error
	)
	if cfg.OIDCJWKSURL != "" {
		bearer, err = auth.NewBearerStatic(ctx, cfg.OIDCIssuer, cfg.OIDCJWKSURL, []string{cfg.OIDCAudience})
	} else {
		bearer, err = auth.NewBearerFromDiscovery(ctx, cfg.OIDCIssuer, cfg.OIDCAudience)
	}
	if err != nil {
		return nil, fmt.Errorf("bearer authenticator: %w", err)
	}
	return auth.Chain{bearer, auth.SessionAuthenticator{}}, nil
}
