package firstclick

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/mulesoft-labs/wikiauth/auth"
	"github.com/mulesoft-labs/wikiauth/config"
)

// headerHasPrefix reports whether the header named by nameKey is present and
// starts with the value configured under valueKey.
func (e *Engine) headerHasPrefix(ctx context.Context, req auth.Request, nameKey, valueKey config.Key) bool {
	name := e.cfg.Value(nameKey)
	value := req.Header(name)
	compareTo := e.cfg.Value(valueKey)
	e.log.DebugContext(ctx, "header.compare",
		slog.String("header", name),
		slog.String("value", value),
		slog.String("compare_to", compareTo),
	)
	return value != "" && strings.HasPrefix(value, compareTo)
}

func (e *Engine) isFirstClickReferrer(ctx context.Context, req auth.Request) bool {
	return e.headerHasPrefix(ctx, req, config.FirstClickHeader, config.FirstClickHeaderValue)
}

func (e *Engine) isGoogleBot(ctx context.Context, req auth.Request) bool {
	return e.headerHasPrefix(ctx, req, config.BotHeader, config.BotHeaderValue)
}

func (e *Engine) isInternalAjax(ctx context.Context, req auth.Request) bool {
	if !e.headerHasPrefix(ctx, req, config.AjaxSourceHeader, config.AjaxSourceHeaderValue) {
		return false
	}
	name := e.cfg.Value(config.AjaxRequestedWithHeader)
	value := req.Header(name)
	compareTo := e.cfg.Value(config.AjaxRequestedWithHeaderVal)
	e.log.DebugContext(ctx, "header.compare",
		slog.String("header", name),
		slog.String("value", value),
		slog.String("compare_to", compareTo),
	)
	return value != "" && strings.EqualFold(value, compareTo)
}

func (e *Engine) isFirstClickAnonymous(p auth.Principal) bool {
	return auth.SameName(p, e.cfg.Value(config.FirstClickUsername))
}

func (e *Engine) isBotAnonymous(p auth.Principal) bool {
	return auth.SameName(p, e.cfg.Value(config.BotUsername))
}

func (e *Engine) isAnonymous(p auth.Principal) bool {
	return e.isFirstClickAnonymous(p) || e.isBotAnonymous(p)
}

// redactedHeaders are elided from request dumps.
var redactedHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization"}

func dumpRequest(req auth.Request) string {
	names := req.HeaderNames()
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	var b strings.Builder
	b.WriteByte('[')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		if slices.ContainsFunc(redactedHeaders, func(h string) bool { return strings.EqualFold(h, name) }) {
			b.WriteString("<redacted>")
			continue
		}
		b.WriteString(req.Header(name))
	}
	b.WriteByte(']')
	return b.String()
}
