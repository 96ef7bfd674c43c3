// Package redisstore implements sessions.Store on Redis so that several wiki
// nodes share one view of every visitor's login markers.
//
// Each session is a single string key holding the JSON-encoded state, with
// the session TTL applied as the key expiry. Touch maps to EXPIRE, so a
// session that disappeared between Load and Touch is not resurrected.
//
// Example:
//
//	store, err := redisstore.New(redisstore.Config{RedisAddr: "localhost:6379"})
//	if err != nil { log.Fatal(err) }
//	defer store.Close()
package redisstore
