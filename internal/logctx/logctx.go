// Package logctx attaches per-request fields to a context so that every
// record logged with that context carries them.
package logctx

import (
	"context"
	"log/slog"
	"sync"
)

// Fields accumulates what is known about a request as the filter works
// through it. The zero value is ready to use.
type Fields struct {
	mu         sync.Mutex
	requestID  string
	method     string
	path       string
	remoteAddr string
	sessionID  string
	sessionNew bool
	rule       string
	user       string
}

// NewFields returns the request-scoped fields for one request.
func NewFields(requestID, method, path, remoteAddr string) *Fields {
	return &Fields{requestID: requestID, method: method, path: path, remoteAddr: remoteAddr}
}

// SetSession records the session the request is bound to.
func (f *Fields) SetSession(id string, isNew bool) {
	f.mu.Lock()
	f.sessionID, f.sessionNew = id, isNew
	f.mu.Unlock()
}

// SetDecision records the rule that fired and the resulting user name.
func (f *Fields) SetDecision(rule, user string) {
	f.mu.Lock()
	f.rule, f.user = rule, user
	f.mu.Unlock()
}

func (f *Fields) attrs() []slog.Attr {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []slog.Attr{slog.Group("req",
		slog.String("id", f.requestID),
		slog.String("method", f.method),
		slog.String("path", f.path),
		slog.String("remote_addr", f.remoteAddr),
	)}
	if f.sessionID != "" {
		out = append(out, slog.Group("sess",
			slog.String("id", f.sessionID),
			slog.Bool("new", f.sessionNew),
		))
	}
	if f.rule != "" {
		out = append(out, slog.Group("auth",
			slog.String("rule", f.rule),
			slog.String("user", f.user),
		))
	}
	return out
}

type fieldsKey struct{}

// With returns a copy of ctx carrying f.
func With(ctx context.Context, f *Fields) context.Context {
	return context.WithValue(ctx, fieldsKey{}, f)
}

// From returns the fields stored in ctx, if any.
func From(ctx context.Context) (*Fields, bool) {
	f, ok := ctx.Value(fieldsKey{}).(*Fields)
	return f, ok
}

// Handler decorates records with the Fields found in their context.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if f, ok := From(ctx); ok {
		r.AddAttrs(f.attrs()...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}
