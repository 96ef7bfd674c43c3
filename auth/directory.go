package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StaticDirectory is an in-memory Directory keyed by lower-cased username.
type StaticDirectory struct {
	mu    sync.RWMutex
	users map[string]User
}

var _ Directory = (*StaticDirectory)(nil)

// NewStaticDirectory returns a directory containing the given usernames.
func NewStaticDirectory(usernames ...string) *StaticDirectory {
	d := &StaticDirectory{users: make(map[string]User, len(usernames))}
	for _, u := range usernames {
		d.Add(u)
	}
	return d
}

// Add registers a username. Empty or blank names are ignored.
func (d *StaticDirectory) Add(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	d.mu.Lock()
	d.users[strings.ToLower(username)] = User{Username: username}
	d.mu.Unlock()
}

// Remove drops a username if present.
func (d *StaticDirectory) Remove(username string) {
	d.mu.Lock()
	delete(d.users, strings.ToLower(strings.TrimSpace(username)))
	d.mu.Unlock()
}

func (d *StaticDirectory) LookupUser(_ context.Context, username string) (Principal, error) {
	d.mu.RLock()
	u, ok := d.users[strings.ToLower(username)]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}
	return u, nil
}
