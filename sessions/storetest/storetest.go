// Package storetest holds a conformance suite for sessions.Store
// implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/google/uuid"
	"github.com/mulesoft-labs/wikiauth/sessions"
)

// StoreFactory creates a new, empty Store for one test.
type StoreFactory func(t *testing.T) sessions.Store

// RunStoreTests runs the complete Store test suite against the provided factory.
func RunStoreTests(t *testing.T, factory StoreFactory) {
	t.Run("LoadMissing", func(t *testing.T) { testLoadMissing(t, factory) })
	t.Run("SaveAndLoad", func(t *testing.T) { testSaveAndLoad(t, factory) })
	t.Run("SaveOverwrites", func(t *testing.T) { testSaveOverwrites(t, factory) })
	t.Run("LoadReturnsCopy", func(t *testing.T) { testLoadReturnsCopy(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory) })
	t.Run("TouchMissingIsNoop", func(t *testing.T) { testTouchMissing(t, factory) })
	t.Run("IsolationBetweenSessions", func(t *testing.T) { testIsolation(t, factory) })
	t.Run("EmptyIDRejected", func(t *testing.T) { testEmptyID(t, factory) })
}

func newState(user string, loggedOut *bool) *sessions.State {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return &sessions.State{LoggedIn: user, LoggedOut: loggedOut, CreatedAt: now, UpdatedAt: now}
}

func open(t *testing.T, factory StoreFactory) (sessions.Store, context.Context) {
	t.Helper()
	s := factory(t)
	t.Cleanup(func() { _ = s.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return s, ctx
}

func testLoadMissing(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	st, err := s.Load(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st != nil {
		t.Fatalf("Load of missing session = %+v, want nil", st)
	}
}

func testSaveAndLoad(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	id := uuid.NewString()
	yes := true
	want := newState("googlefcf", &yes)

	if err := s.Save(ctx, id, want, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatal(diff)
	}
}

func testSaveOverwrites(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	id := uuid.NewString()

	if err := s.Save(ctx, id, newState("googlebot", nil), time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, id, newState("", nil), time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.LoggedIn != "" {
		t.Fatalf("Load after overwrite = %+v", got)
	}
}

func testLoadReturnsCopy(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	id := uuid.NewString()
	orig := newState("googlefcf", nil)
	if err := s.Save(ctx, id, orig, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	orig.LoggedIn = "mutated"

	got, err := s.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got.LoggedIn = "mutated again"

	again, err := s.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if again.LoggedIn != "googlefcf" {
		t.Fatalf("stored state aliased caller memory: %q", again.LoggedIn)
	}
}

func testDelete(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	id := uuid.NewString()
	if err := s.Save(ctx, id, newState("googlefcf", nil), time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if st, err := s.Load(ctx, id); err != nil || st != nil {
		t.Fatalf("Load after Delete = (%+v, %v)", st, err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func testTouchMissing(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	id := uuid.NewString()
	if err := s.Touch(ctx, id, time.Minute); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if st, err := s.Load(ctx, id); err != nil || st != nil {
		t.Fatalf("Touch must not create sessions, got (%+v, %v)", st, err)
	}
}

func testIsolation(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	a, b := uuid.NewString(), uuid.NewString()
	if err := s.Save(ctx, a, newState("googlefcf", nil), time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, b, newState("googlebot", nil), time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ga, _ := s.Load(ctx, a)
	gb, _ := s.Load(ctx, b)
	if ga == nil || gb == nil || ga.LoggedIn != "googlefcf" || gb.LoggedIn != "googlebot" {
		t.Fatalf("sessions bled into each other: a=%+v b=%+v", ga, gb)
	}
}

func testEmptyID(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	if _, err := s.Load(ctx, ""); err == nil {
		t.Fatal("Load with empty id should fail")
	}
	if err := s.Save(ctx, "", newState("x", nil), time.Minute); err == nil {
		t.Fatal("Save with empty id should fail")
	}
}
