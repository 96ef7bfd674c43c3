package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidID is returned for empty or malformed session ids.
var ErrInvalidID = errors.New("sessions: invalid session id")

// State is the persisted login state of one session.
type State struct {
	// LoggedIn is the username of the logged-in principal, empty for none.
	LoggedIn string `json:"logged_in,omitempty"`
	// LoggedOut is the logout flag; nil means unset.
	LoggedOut *bool     `json:"logged_out,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.LoggedOut != nil {
		v := *s.LoggedOut
		out.LoggedOut = &v
	}
	return &out
}

// Encode serialises s for stores that hold bytes.
func Encode(s *State) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session state: %w", err)
	}
	return b, nil
}

// Decode parses bytes produced by Encode.
func Decode(b []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &s, nil
}

// Store persists session state by id. Implementations must be safe for
// concurrent use.
type Store interface {
	// Load returns the state for id, or nil and no error when the session
	// does not exist or has expired.
	Load(ctx context.Context, id string) (*State, error)
	// Save stores st under id for ttl. A zero ttl means no expiry.
	Save(ctx context.Context, id string, st *State, ttl time.Duration) error
	// Touch extends the expiry of an existing session. Missing sessions are
	// ignored.
	Touch(ctx context.Context, id string, ttl time.Duration) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// Close releases resources held by the store.
	Close() error
}
