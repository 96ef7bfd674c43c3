// Package sessions keeps the per-visitor login state the first-click engine
// reads and mutates: a logged-in username and a logged-out flag.
//
// A Store persists State by session id. Two implementations are provided:
// memorystore keeps state in a bounded in-process LRU and redisstore keeps
// it in Redis so several wiki nodes share one view. A Manager opens a
// Session for a request (minting a fresh id when the caller has none) and
// commits it back to the store when the request is done.
//
// Session implements auth.Session, so it can be handed directly to the
// decision engine:
//
//	sess, err := mgr.Open(ctx, cookieValue)
//	principal := engine.Decide(ctx, req, sess)
//	issued, err := mgr.Commit(ctx, sess)
package sessions
