package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_RejectsNonFileSource(t *testing.T) {
	p := New(MapSource{})
	if err := p.Watch(context.Background()); !errors.Is(err, ErrNotWatchable) {
		t.Fatalf("want ErrNotWatchable, got %v", err)
	}
}

func TestWatch_FileChangeExpiresDeadline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "muleauth.properties")
	if err := os.WriteFile(path, []byte("fcf.username=one\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	clock := newManual()
	p := New(FileSource{Path: path}, WithClock(clock))
	if got := p.Value(FirstClickUsername); got != "one" {
		t.Fatalf("initial = %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte("fcf.username=two\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if p.Value(FirstClickUsername) == "two" {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("file change was not picked up")
}
