package redisstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	"github.com/mulesoft-labs/wikiauth/sessions"
	"github.com/mulesoft-labs/wikiauth/sessions/storetest"
)

func TestRedisStore(t *testing.T) {
	// Quick availability check to allow graceful skip in environments without Redis
	s, err := NewFromEnv()
	if err != nil {
		t.Skipf("skipping redis store tests: %v", err)
		return
	}
	_ = s.Close()

	storetest.RunStoreTests(t, func(t *testing.T) sessions.Store {
		var cfg Config
		_ = envdecode.Decode(&cfg)
		// A unique prefix per test keeps parallel runs from colliding.
		cfg.KeyPrefix = "wikiauth:test:" + uuid.NewString() + ":"
		st, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return st
	})
}
