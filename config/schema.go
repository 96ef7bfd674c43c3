package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownKey marks a snapshot entry that no Key declares.
	ErrUnknownKey = errors.New("config: unknown key")
	// ErrEmptyValue marks a declared key whose value is blank.
	ErrEmptyValue = errors.New("config: empty value")
	// ErrInvalidRefresh marks a refresh value that is not a positive integer.
	ErrInvalidRefresh = errors.New("config: invalid refresh interval")
)

// Role describes what a configured value is used for.
type Role int

const (
	RoleRefreshInterval Role = iota
	RoleUsername
	RoleHeaderName
	RoleHeaderPrefix
	RoleHeaderEquals
)

func (r Role) String() string {
	switch r {
	case RoleRefreshInterval:
		return "refresh-interval"
	case RoleUsername:
		return "username"
	case RoleHeaderName:
		return "header-name"
	case RoleHeaderPrefix:
		return "header-prefix"
	case RoleHeaderEquals:
		return "header-equals"
	default:
		return "unknown"
	}
}

// Key declares one configuration entry.
type Key struct {
	Name    string
	Default string
	Role    Role
}

func (k Key) String() string { return k.Name }

// DefaultRefreshSeconds applies when the refresh key is absent or invalid.
const DefaultRefreshSeconds = 86400

// maxRefreshSeconds keeps the interval representable as a time.Duration.
const maxRefreshSeconds = math.MaxInt64 / int64(time.Second)

var (
	Refresh = Key{Name: "refresh", Default: strconv.Itoa(DefaultRefreshSeconds), Role: RoleRefreshInterval}

	FirstClickUsername    = Key{Name: "fcf.username", Default: "googlefcf", Role: RoleUsername}
	FirstClickHeader      = Key{Name: "fcf.header", Default: "Referer", Role: RoleHeaderName}
	FirstClickHeaderValue = Key{Name: "fcf.header_value", Default: "http://www.google.com", Role: RoleHeaderPrefix}

	AjaxSourceHeader           = Key{Name: "fcf.ajax.src.header", Default: "Referer", Role: RoleHeaderName}
	AjaxSourceHeaderValue      = Key{Name: "fcf.ajax.src.header_value", Default: "http://www.mulesoft.org", Role: RoleHeaderPrefix}
	AjaxRequestedWithHeader    = Key{Name: "fcf.ajax.reqWith.header", Default: "X-Requested-With", Role: RoleHeaderName}
	AjaxRequestedWithHeaderVal = Key{Name: "fcf.ajax.reqWith.header_value", Default: "XMLHttpRequest", Role: RoleHeaderEquals}

	BotUsername    = Key{Name: "gb.username", Default: "googlebot", Role: RoleUsername}
	BotHeader      = Key{Name: "gb.header", Default: "From", Role: RoleHeaderName}
	BotHeaderValue = Key{Name: "gb.header_value", Default: "googlebot", Role: RoleHeaderPrefix}
)

// Keys lists every recognised key.
var Keys = []Key{
	Refresh,
	FirstClickUsername,
	FirstClickHeader,
	FirstClickHeaderValue,
	AjaxSourceHeader,
	AjaxSourceHeaderValue,
	AjaxRequestedWithHeader,
	AjaxRequestedWithHeaderVal,
	BotUsername,
	BotHeader,
	BotHeaderValue,
}

// LookupKey returns the declared Key with the given name.
func LookupKey(name string) (Key, bool) {
	for _, k := range Keys {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// Defaults returns a snapshot holding every key's default value.
func Defaults() Snapshot {
	s := make(Snapshot, len(Keys))
	for _, k := range Keys {
		s[k.Name] = k.Default
	}
	return s
}

// Validate checks s against the schema. Problems are returned in key order;
// none of them prevents the snapshot from being served.
func Validate(s Snapshot) []error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		v := s[name]
		k, ok := LookupKey(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownKey, name))
			continue
		}
		switch k.Role {
		case RoleRefreshInterval:
			if _, err := parseRefresh(v); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidRefresh, v, err))
			}
		case RoleUsername, RoleHeaderName:
			if strings.TrimSpace(v) == "" {
				errs = append(errs, fmt.Errorf("%w: %q", ErrEmptyValue, name))
			}
		}
	}
	return errs
}

func parseRefresh(v string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	if n > maxRefreshSeconds {
		return 0, fmt.Errorf("must be at most %d, got %d", maxRefreshSeconds, n)
	}
	return n, nil
}
