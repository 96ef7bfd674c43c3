package firstclick

import (
	"context"
	"io"
	"log/slog"

	"github.com/mulesoft-labs/wikiauth/auth"
	"github.com/mulesoft-labs/wikiauth/config"
)

// Settings supplies configured values. *config.Provider implements it.
type Settings interface {
	Value(k config.Key) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. If not provided, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine decides which principal represents a caller and updates the
// session's login and logout markers accordingly. It holds no per-request
// state and is safe for concurrent use as long as its collaborators are.
type Engine struct {
	cfg  Settings
	base auth.BaseAuthenticator
	dir  auth.Directory
	log  *slog.Logger
}

// New returns an Engine. base supplies the caller's principal before the
// first-click rules apply; dir resolves the configured anonymous usernames.
func New(cfg Settings, base auth.BaseAuthenticator, dir auth.Directory, opts ...Option) *Engine {
	e := &Engine{
		cfg:  cfg,
		base: base,
		dir:  dir,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide returns the caller's principal, or nil when the caller is
// anonymous.
func (e *Engine) Decide(ctx context.Context, req auth.Request, sess auth.Session) auth.Principal {
	return e.Evaluate(ctx, req, sess).Principal
}

// Evaluate runs the decision and reports which rule produced the result.
// Rules are tried in order and the first match wins.
func (e *Engine) Evaluate(ctx context.Context, req auth.Request, sess auth.Session) Decision {
	if e.log.Enabled(ctx, slog.LevelDebug) {
		e.log.DebugContext(ctx, "request.dump", slog.String("headers", dumpRequest(req)))
	}
	addr := slog.String("remote_addr", req.RemoteAddr())

	p, err := e.base.Authenticate(ctx, req, sess)
	if err != nil {
		e.log.WarnContext(ctx, "base.authenticate.fail", addr, slog.String("err", err.Error()))
		p = nil
	}

	if p != nil && !e.isAnonymous(p) {
		return Decision{Principal: p, Rule: RuleAuthenticated}
	}

	firstClick := e.isFirstClickReferrer(ctx, req)

	switch {
	case p == nil && firstClick:
		p = e.login(ctx, sess, config.FirstClickUsername)
		e.log.DebugContext(ctx, "fcf.login", addr, slog.String("user", auth.NameOf(p)))
		return Decision{Principal: p, Rule: RuleFirstClickLogin}

	case e.isInternalAjax(ctx, req):
		if p == nil {
			p = e.login(ctx, sess, config.FirstClickUsername)
			e.log.DebugContext(ctx, "fcf.ajax.login", addr, slog.String("user", auth.NameOf(p)))
		}
		e.log.DebugContext(ctx, "fcf.ajax.allow", addr)
		return Decision{Principal: p, Rule: RuleInternalAjax}

	case p != nil && !firstClick && e.isFirstClickAnonymous(p):
		logout(sess)
		e.log.InfoContext(ctx, "fcf.logout", addr)
		return Decision{Rule: RuleFirstClickLogout}

	case p == nil && e.isGoogleBot(ctx, req):
		p = e.login(ctx, sess, config.BotUsername)
		e.log.InfoContext(ctx, "bot.login", addr, slog.String("user", auth.NameOf(p)))
		return Decision{Principal: p, Rule: RuleBotLogin}

	case e.isBotAnonymous(p) && !e.isGoogleBot(ctx, req):
		logout(sess)
		e.log.DebugContext(ctx, "bot.logout", addr)
		return Decision{Rule: RuleBotLogout}
	}

	// Either no principal and no qualifying signal, or an anonymous
	// principal whose signal is still present.
	return Decision{Principal: p, Rule: RuleNone}
}

// login resolves the username configured under key and stores it as the
// session's logged-in principal. A failed lookup logs a warning and stores
// nil.
func (e *Engine) login(ctx context.Context, sess auth.Session, key config.Key) auth.Principal {
	p := e.resolve(ctx, key)
	sess.SetLoginMarker(p)
	sess.SetLogoutMarker(nil)
	return p
}

func (e *Engine) resolve(ctx context.Context, key config.Key) auth.Principal {
	username := e.cfg.Value(key)
	e.log.DebugContext(ctx, "user.lookup", slog.String("user", username))
	if e.dir == nil {
		e.log.WarnContext(ctx, "user.lookup.fail", slog.String("user", username), slog.String("err", "no directory"))
		return nil
	}
	p, err := e.dir.LookupUser(ctx, username)
	if err != nil {
		e.log.WarnContext(ctx, "user.lookup.fail", slog.String("user", username), slog.String("err", err.Error()))
		return nil
	}
	if p == nil {
		e.log.WarnContext(ctx, "user.lookup.fail", slog.String("user", username), slog.String("err", "not found"))
	}
	return p
}

func logout(sess auth.Session) {
	loggedOut := true
	sess.SetLoginMarker(nil)
	sess.SetLogoutMarker(&loggedOut)
}
