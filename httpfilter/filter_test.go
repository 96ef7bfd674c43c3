package httpfilter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mulesoft-labs/wikiauth/auth"
	"github.com/mulesoft-labs/wikiauth/config"
	"github.com/mulesoft-labs/wikiauth/firstclick"
	"github.com/mulesoft-labs/wikiauth/sessions"
	"github.com/mulesoft-labs/wikiauth/sessions/memorystore"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type harness struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newHarness(t *testing.T, store sessions.Store) *harness {
	t.Helper()
	if store == nil {
		ms, err := memorystore.New(100)
		if err != nil {
			t.Fatalf("memorystore.New: %v", err)
		}
		t.Cleanup(func() { _ = ms.Close() })
		store = ms
	}
	engine := firstclick.New(
		config.New(config.MapSource{}),
		auth.SessionAuthenticator{},
		auth.NewStaticDirectory("googlefcf", "googlebot"),
	)
	f := New(engine, sessions.NewManager(store, sessions.WithTTL(time.Minute)), WithLogger(quiet))

	whoami := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, _ := DecisionFromContext(r.Context())
		p, _ := PrincipalFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]string{"user": auth.NameOf(p), "rule": d.Rule.String()})
	})
	return &harness{t: t, h: f.Wrap(whoami)}
}

type whoami struct {
	User string `json:"user"`
	Rule string `json:"rule"`
}

// get issues a request carrying the session cookie seen so far.
func (h *harness) get(headers ...string) (whoami, *http.Response) {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/display/MULE/Home", nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	res := rec.Result()
	for _, c := range res.Cookies() {
		if c.Name == DefaultCookieName {
			h.cookie = c
		}
	}
	var out whoami
	if res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			h.t.Fatalf("decode: %v", err)
		}
	}
	return out, res
}

func TestFilter_FirstClickIsSingleHop(t *testing.T) {
	h := newHarness(t, nil)

	got, res := h.get("Referer", "http://www.google.com/search?q=mule")
	if got.User != "googlefcf" || got.Rule != "fcf.login" {
		t.Fatalf("first click = %+v", got)
	}
	if h.cookie == nil {
		t.Fatal("session cookie not issued")
	}
	if c := res.Cookies()[0]; !c.HttpOnly || c.Path != "/" {
		t.Fatalf("cookie attributes = %+v", c)
	}

	got, _ = h.get("Referer", "http://www.mulesoft.org/display/MULE/Home", "X-Requested-With", "XMLHttpRequest")
	if got.User != "googlefcf" || got.Rule != "fcf.ajax" {
		t.Fatalf("internal ajax = %+v", got)
	}

	got, _ = h.get("Referer", "http://www.mulesoft.org/display/MULE/Home")
	if got.User != "" || got.Rule != "fcf.logout" {
		t.Fatalf("next click = %+v", got)
	}

	got, _ = h.get()
	if got.User != "" || got.Rule != "none" {
		t.Fatalf("after logout = %+v", got)
	}
}

func TestFilter_BotKeepsGrantWhileHeaderPresent(t *testing.T) {
	h := newHarness(t, nil)

	for i := 0; i < 2; i++ {
		got, _ := h.get("From", "googlebot(at)googlebot.com")
		if got.User != "googlebot" {
			t.Fatalf("crawler request %d = %+v", i, got)
		}
	}
	got, _ := h.get()
	if got.User != "" || got.Rule != "bot.logout" {
		t.Fatalf("without header = %+v", got)
	}
}

func TestFilter_AnonymousGetsNoCookie(t *testing.T) {
	h := newHarness(t, nil)
	got, _ := h.get("Referer", "http://example.com/")
	if got.User != "" || h.cookie != nil {
		t.Fatalf("anonymous visitor: %+v cookie=%v", got, h.cookie)
	}
}

type brokenStore struct{ sessions.Store }

func (brokenStore) Load(context.Context, string) (*sessions.State, error) {
	return nil, errors.New("redis: connection refused")
}

func TestFilter_StoreFailureIs500(t *testing.T) {
	h := newHarness(t, brokenStore{})
	h.cookie = &http.Cookie{Name: DefaultCookieName, Value: "0b0f4b6c-3f1c-4a53-9a4a-3d5b8b9d1f00"}

	_, res := h.get("Referer", "http://www.google.com/")
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestPrincipalFromContext_Outside(t *testing.T) {
	if p, ok := PrincipalFromContext(context.Background()); ok || p != nil {
		t.Fatalf("got (%v, %v)", p, ok)
	}
}

func TestFilterLogsDecisionWithRequestFields(t *testing.T) {
	store, err := memorystore.New(10)
	if err != nil {
		t.Fatalf("memorystore.New: %v", err)
	}
	var buf bytes.Buffer
	engine := firstclick.New(config.New(config.MapSource{}), auth.SessionAuthenticator{}, auth.NewStaticDirectory("googlefcf"))
	f := New(engine, sessions.NewManager(store), WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	req := httptest.NewRequest(http.MethodGet, "/display/MULE/Home", nil)
	req.Header.Set("Referer", "http://www.google.com/search?q=mule")
	f.Wrap(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), req)

	var rec struct {
		Msg string `json:"msg"`
		Req struct {
			ID   string `json:"id"`
			Path string `json:"path"`
		} `json:"req"`
		Sess struct {
			ID  string `json:"id"`
			New bool   `json:"new"`
		} `json:"sess"`
		Auth struct {
			Rule string `json:"rule"`
			User string `json:"user"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec.Msg != "auth.decide.ok" || rec.Req.ID == "" || rec.Req.Path != "/display/MULE/Home" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Sess.ID == "" || !rec.Sess.New {
		t.Fatalf("sess = %+v", rec.Sess)
	}
	if rec.Auth.Rule != "fcf.login" || rec.Auth.User != "googlefcf" {
		t.Fatalf("auth = %+v", rec.Auth)
	}
}
