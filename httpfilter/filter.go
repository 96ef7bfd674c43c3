package httpfilter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mulesoft-labs/wikiauth/auth"
	"github.com/mulesoft-labs/wikiauth/firstclick"
	"github.com/mulesoft-labs/wikiauth/internal/logctx"
	"github.com/mulesoft-labs/wikiauth/sessions"
)

// DefaultCookieName names the session id cookie.
const DefaultCookieName = "WIKISESSIONID"

// Option configures the Filter.
type Option func(*Filter)

// WithLogger sets the logger used by the filter. If not provided, slog.Default is used.
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) { f.log = l }
}

// WithCookieName overrides the session id cookie name.
func WithCookieName(name string) Option {
	return func(f *Filter) { f.cookieName = name }
}

// WithSecureCookie marks the session cookie Secure, for deployments served
// over TLS.
func WithSecureCookie(secure bool) Option {
	return func(f *Filter) { f.secure = secure }
}

// Filter is HTTP middleware running the first-click decision.
type Filter struct {
	engine     *firstclick.Engine
	sessions   *sessions.Manager
	log        *slog.Logger
	cookieName string
	secure     bool
}

// New returns a Filter.
func New(engine *firstclick.Engine, mgr *sessions.Manager, opts ...Option) *Filter {
	f := &Filter{
		engine:     engine,
		sessions:   mgr,
		log:        slog.Default(),
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		opt(f)
	}
	if _, ok := f.log.Handler().(logctx.Handler); !ok {
		f.log = slog.New(logctx.Handler{Handler: f.log.Handler()})
	}
	return f
}

type decisionKey struct{}

// DecisionFromContext returns the decision made for the current request.
func DecisionFromContext(ctx context.Context) (firstclick.Decision, bool) {
	d, ok := ctx.Value(decisionKey{}).(firstclick.Decision)
	return d, ok
}

// PrincipalFromContext returns the caller's principal. ok is false for
// anonymous callers and outside the filter.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	d, ok := DecisionFromContext(ctx)
	if !ok || d.Principal == nil {
		return nil, false
	}
	return d.Principal, true
}

// Wrap returns next guarded by the filter.
func (f *Filter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		fields := logctx.NewFields(uuid.NewString(), r.Method, r.URL.Path, r.RemoteAddr)
		ctx := logctx.With(r.Context(), fields)

		var sessionID string
		if c, err := r.Cookie(f.cookieName); err == nil {
			sessionID = c.Value
		}
		sess, err := f.sessions.Open(ctx, sessionID)
		if err != nil {
			f.log.ErrorContext(ctx, "session.load.fail", slog.String("err", err.Error()))
			writeJSONError(w, http.StatusInternalServerError, "session store unavailable")
			return
		}
		fields.SetSession(sess.ID(), sess.IsNew())

		d := f.engine.Evaluate(ctx, auth.HTTPRequest{Request: r.WithContext(ctx)}, sess)
		fields.SetDecision(d.Rule.String(), auth.NameOf(d.Principal))

		issued, err := f.sessions.Commit(ctx, sess)
		if err != nil {
			f.log.ErrorContext(ctx, "session.save.fail", slog.String("err", err.Error()))
		} else if issued {
			http.SetCookie(w, &http.Cookie{
				Name:     f.cookieName,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   f.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		f.log.InfoContext(ctx, "auth.decide.ok", slog.Duration("dur", time.Since(start)))
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, decisionKey{}, d)))
	})
}

// writeJSONError emits a minimal JSON body for filter-level failures.
// Shape: {"error":{"code":<httpStatus>,"message":"<reason>"}}
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": msg}})
}
