package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mulesoft-labs/wikiauth/auth"
	"github.com/mulesoft-labs/wikiauth/config"
	"github.com/mulesoft-labs/wikiauth/httpfilter"
)

func newRouter(filter *httpfilter.Filter, provider *config.Provider, lv *slog.LevelVar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"values":       provider.Snapshot(),
				"next_refresh": provider.NextRefresh(),
				"log_level":    lv.Level().String(),
			})
		})
		r.Post("/config/reload", func(w http.ResponseWriter, _ *http.Request) {
			provider.Expire()
			writeJSON(w, http.StatusOK, map[string]any{"values": provider.Snapshot()})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(filter.Wrap)
		r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
			d, _ := httpfilter.DecisionFromContext(r.Context())
			writeJSON(w, http.StatusOK, map[string]any{
				"user":          auth.NameOf(d.Principal),
				"authenticated": d.Principal != nil,
				"rule":          d.Rule.String(),
			})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
