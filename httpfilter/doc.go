// Package httpfilter runs the first-click decision for every request passing
// through a net/http handler chain.
//
// The filter reads the session id cookie, opens the session, asks the
// firstclick.Engine for the caller's principal, commits any marker changes
// and hands the principal to the next handler through the request context:
//
//	f := httpfilter.New(engine, manager, httpfilter.WithLogger(logger))
//	http.Handle("/", f.Wrap(wiki))
//
//	// inside wiki:
//	if p, ok := httpfilter.PrincipalFromContext(r.Context()); ok {
//	    fmt.Fprintf(w, "hello %s", p.Name())
//	}
//
// A session id cookie is only issued once the session holds a marker, so
// anonymous visitors that never qualify for a grant never get one.
package httpfilter
