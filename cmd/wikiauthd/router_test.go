package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mulesoft-labs/wikiauth/auth"
	"github.com/mulesoft-labs/wikiauth/config"
	"github.com/mulesoft-labs/wikiauth/firstclick"
	"github.com/mulesoft-labs/wikiauth/httpfilter"
	"github.com/mulesoft-labs/wikiauth/sessions"
	"github.com/mulesoft-labs/wikiauth/sessions/memorystore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := config.New(config.MapSource{"refresh": "60"}, config.WithLogger(log))
	store, err := memorystore.New(16)
	if err != nil {
		t.Fatalf("memorystore: %v", err)
	}
	engine := firstclick.New(provider, auth.SessionAuthenticator{}, auth.NewStaticDirectory("googlefcf", "googlebot"), firstclick.WithLogger(log))
	filter := httpfilter.New(engine, sessions.NewManager(store), httpfilter.WithLogger(log))

	var lv slog.LevelVar
	srv := httptest.NewServer(newRouter(filter, provider, &lv))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if len(res.Cookies()) != 0 {
		t.Fatalf("health check must not issue a session cookie")
	}
}

func TestWhoAmI(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/whoami", nil)
	req.Header.Set("From", "googlebot(at)googlebot.com")
	got := getJSON(t, req)
	if got["user"] != "googlebot" || got["rule"] != "bot.login" || got["authenticated"] != true {
		t.Fatalf("bot visit = %v", got)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/whoami", nil)
	got = getJSON(t, req)
	if got["user"] != "" || got["rule"] != "none" || got["authenticated"] != false {
		t.Fatalf("plain visit = %v", got)
	}
}

func TestAdminConfig(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/admin/config", nil)
	got := getJSON(t, req)
	values, ok := got["values"].(map[string]any)
	if !ok || values["refresh"] != "60" {
		t.Fatalf("values = %v", got["values"])
	}

	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/admin/config/reload", nil)
	got = getJSON(t, req)
	if _, ok := got["values"]; !ok {
		t.Fatalf("reload response = %v", got)
	}
}

func TestLoadConfigFlags(t *testing.T) {
	t.Setenv("WIKIAUTH_SESSION_STORE", "memory")
	cfg, err := loadConfig([]string{"--listen", ":9999", "--users", "alice,bob", "-p", "/tmp/x.properties"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Listen != ":9999" || cfg.PropertiesPath != "/tmp/x.properties" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.Users) != 2 || cfg.Users[0] != "alice" {
		t.Fatalf("users = %v", cfg.Users)
	}
	if cfg.SessionStore != "memory" {
		t.Fatalf("store = %q", cfg.SessionStore)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	if _, err := loadConfig([]string{"--session-store", "disk"}); err == nil {
		t.Fatal("expected unknown store error")
	}
	if _, err := loadConfig([]string{"--oidc-issuer", "https://issuer.example"}); err == nil {
		t.Fatal("expected missing audience error")
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := parseLevel("DEBUG"); err != nil || lvl != slog.LevelDebug {
		t.Fatalf("parseLevel(DEBUG) = %v, %v", lvl, err)
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
}
