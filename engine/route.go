package engine

import (
	"errors"
	"fmt"
	"strings"
)

// MethodAll is the sentinel method name matching every HTTP method. An
// exact-method handler entry always takes precedence over the MethodAll
// entry on the same route.
const MethodAll = "ALL"

// ErrNoCandidates is recorded on a route when HandleSplit is called with an
// empty candidate list.
var ErrNoCandidates = errors.New("engine: split handler requires at least one candidate")

// ErrNilSelector is recorded on a route when HandleSplit is called with a
// nil selector.
var ErrNilSelector = errors.New("engine: split handler requires a selector")

// ErrNilHandler is recorded on a route when Handle is called with a nil
// handler.
var ErrNilHandler = errors.New("engine: handler must not be nil")

// handlerEntry is the tagged per-method variant: either a simple terminal
// handler or a split handler (selector plus candidate list). Both carry an
// ordered list of method-scoped middlewares.
type handlerEntry struct {
	split       bool
	handler     HandlerFunc
	selector    SelectorFunc
	candidates  []HandlerFunc
	middlewares []MiddlewareFunc
}

// Route is a registered path pattern with its per-method handler entries and
// route-scoped middlewares. Routes are created through Engine.Route (or the
// registration sugar around it) during the setup phase and are never removed
// at runtime.
type Route struct {
	path        string
	segments    []string
	entries     map[string]*handlerEntry
	middlewares []MiddlewareFunc
	err         error
}

// newRoute builds a route for an already-normalized path.
func newRoute(path string) *Route {
	return &Route{
		path:     path,
		segments: splitSegments(path, '/'),
		entries:  make(map[string]*handlerEntry),
	}
}

// Path returns the route's normalized path pattern.
func (r *Route) Path() string {
	return r.path
}

// Err returns the first registration error recorded on the route, if any.
func (r *Route) Err() error {
	return r.err
}

// Handle attaches a terminal handler for the given method, replacing any
// previous entry for that method. Use MethodAll to match every method.
// Optional middlewares become the entry's method-scoped chain.
func (r *Route) Handle(method string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	if handler == nil {
		r.fail(fmt.Errorf("%w: %s %s", ErrNilHandler, method, r.path))
		return r
	}

	r.entries[canonicalMethod(method)] = &handlerEntry{
		handler:     handler,
		middlewares: middlewares,
	}

	return r
}

// HandleSplit attaches a split handler for the given method: at dispatch
// time the selector picks, by index, one of the candidate handlers. The
// candidate list must not be empty and the selector must not be nil; index
// bounds are checked at dispatch time because the selector's result is
// request-dependent.
func (r *Route) HandleSplit(method string, selector SelectorFunc, candidates []HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	if selector == nil {
		r.fail(fmt.Errorf("%w: %s %s", ErrNilSelector, method, r.path))
		return r
	}
	if len(candidates) == 0 {
		r.fail(fmt.Errorf("%w: %s %s", ErrNoCandidates, method, r.path))
		return r
	}

	r.entries[canonicalMethod(method)] = &handlerEntry{
		split:       true,
		selector:    selector,
		candidates:  candidates,
		middlewares: middlewares,
	}

	return r
}

// Use appends middlewares to the route-scoped chain. They run after the
// global chain and before the matched entry's method-scoped chain.
func (r *Route) Use(middlewares ...MiddlewareFunc) *Route {
	r.middlewares = append(r.middlewares, middlewares...)
	return r
}

// entry resolves the handler entry for a method, preferring the exact
// method over the MethodAll sentinel. Returns nil when the route serves
// neither.
func (r *Route) entry(method string) *handlerEntry {
	if e, ok := r.entries[canonicalMethod(method)]; ok {
		return e
	}
	return r.entries[MethodAll]
}

// fail records the first registration error.
func (r *Route) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// canonicalMethod upper-cases a method name so "get" and "GET" address the
// same entry.
func canonicalMethod(method string) string {
	return strings.ToUpper(method)
}

// hasParams reports whether the route path contains a parameter pattern
// (both "{" and "}").
func (r *Route) hasParams() bool {
	return strings.Contains(r.path, "{") && strings.Contains(r.path, "}")
}

// hasWildcard reports whether the route path contains a wildcard segment
// marker.
func (r *Route) hasWildcard() bool {
	return strings.Contains(r.path, "*")
}
