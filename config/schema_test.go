package config

import (
	"errors"
	"testing"
)

func TestKeysAreUniqueAndResolvable(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Keys {
		if seen[k.Name] {
			t.Fatalf("duplicate key %q", k.Name)
		}
		seen[k.Name] = true
		got, ok := LookupKey(k.Name)
		if !ok || got != k {
			t.Fatalf("LookupKey(%q) = %v, %v", k.Name, got, ok)
		}
	}
	if _, ok := LookupKey("nope"); ok {
		t.Fatal("LookupKey(nope) should fail")
	}
}

func TestDefaultsValidate(t *testing.T) {
	if errs := Validate(Defaults()); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", errs)
	}
}

func TestValidate(t *testing.T) {
	errs := Validate(Snapshot{
		"refresh":          "never",
		"fcf.username":     " ",
		"gb.header":        "",
		"fcf.typo":         "x",
		"fcf.header_value": "",
	})
	if len(errs) != 4 {
		t.Fatalf("want 4 problems, got %d: %v", len(errs), errs)
	}
	// Sorted by key name: fcf.typo, fcf.username, gb.header, refresh.
	wants := []error{ErrUnknownKey, ErrEmptyValue, ErrEmptyValue, ErrInvalidRefresh}
	for i, want := range wants {
		if !errors.Is(errs[i], want) {
			t.Errorf("errs[%d] = %v, want %v", i, errs[i], want)
		}
	}
}

func TestParseProperties(t *testing.T) {
	s, err := ParseProperties("fcf.header_value=http://www.google.com\\\n  /search\nref = ${nothing}\n")
	if err != nil {
		t.Fatalf("ParseProperties: %v", err)
	}
	if got := s.Get("fcf.header_value", ""); got != "http://www.google.com/search" {
		t.Fatalf("continuation line = %q", got)
	}
	if got := s.Get("ref", ""); got != "${nothing}" {
		t.Fatalf("expansion should be disabled, got %q", got)
	}
}

func TestRoleString(t *testing.T) {
	if RoleHeaderPrefix.String() != "header-prefix" || Role(99).String() != "unknown" {
		t.Fatal("unexpected Role strings")
	}
}
