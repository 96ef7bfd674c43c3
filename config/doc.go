// Package config holds the key/value configuration consulted by the
// first-click decision engine.
//
// A Provider serves lookups from an immutable Snapshot and reloads it from
// its Source lazily: the first lookup at or after the refresh deadline
// reloads, and the next deadline is computed from the reserved "refresh" key
// of the freshly loaded snapshot (seconds, default 86400). Reloads are
// serialized, so concurrent callers never see a torn snapshot and never
// trigger overlapping loads. A failed reload keeps the previous snapshot and
// still advances the deadline.
//
// The recognised keys are enumerated once in the schema (Key values such as
// FirstClickUsername) so callers never scatter string literals and defaults
// through their logic:
//
//	p := config.New(config.FileSource{Path: "/etc/wiki/muleauth.properties"})
//	username := p.Value(config.FirstClickUsername)
//
// Time is read through an abtime.AbstractTime so tests can step over the
// refresh boundary without sleeping.
package config
