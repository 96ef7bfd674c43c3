package config

import (
	"errors"
	"fmt"
	"maps"

	"github.com/magiconair/properties"
)

// ErrNoSource is returned when a Provider is built without a Source.
var ErrNoSource = errors.New("config: no source")

// Snapshot is an immutable key/value view of a loaded configuration.
// Callers must not modify a Snapshot they did not create.
type Snapshot map[string]string

// Get returns the value for key, or def when the key is absent. A present
// but empty value is returned as is.
func (s Snapshot) Get(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Source reads a complete configuration.
type Source interface {
	Load() (Snapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (Snapshot, error)

func (f SourceFunc) Load() (Snapshot, error) { return f() }

// MapSource serves a fixed set of values.
type MapSource map[string]string

func (m MapSource) Load() (Snapshot, error) { return Snapshot(maps.Clone(m)), nil }

// FileSource reads a Java-style .properties file. Values are taken
// literally; ${...} references are not expanded.
type FileSource struct {
	Path string
}

func (f FileSource) Load() (Snapshot, error) {
	if f.Path == "" {
		return nil, fmt.Errorf("%w: empty properties path", ErrNoSource)
	}
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("load properties %q: %w", f.Path, err)
	}
	return Snapshot(p.Map()), nil
}

// ParseProperties parses properties text, as FileSource does for files.
func ParseProperties(text string) (Snapshot, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return Snapshot(p.Map()), nil
}
