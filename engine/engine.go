package engine

import (
	"fmt"
	"log/slog"
	"net/http"
)

// DebugEnv is the environment variable whose presence at construction time
// enables debug mode by default. WithDebug overrides it.
const DebugEnv = "TOLDI_DEBUG"

// Engine is the request-dispatch pipeline: it owns the route table, the
// global middleware chain, the fallback handler and the error-response
// texts, and sequences one dispatch state machine per inbound request.
//
// Registration methods are setup-phase only: the engine provides no locking
// around its shared structures, so mutating them concurrently with in-flight
// requests is caller error. Per-request state lives on the Context and is
// never shared between requests.
type Engine struct {
	table       routeTable
	middlewares []MiddlewareFunc
	fallback    HandlerFunc
	errorTexts  map[ErrorCode]string
	debug       bool
	logger      *slog.Logger
	maxConns    int

	onRequest  []RequestListener
	onFinished []RequestListener
	onError    []ErrorListener
}

// New builds an engine with an empty dynamic-mode route table. Debug mode
// defaults to the presence of the TOLDI_DEBUG environment variable.
func New(opts ...Option) *Engine {
	e := &Engine{
		table:      newDynamicTable(),
		errorTexts: make(map[ErrorCode]string, len(defaultErrorTexts)),
		debug:      envDebug(),
		logger:     slog.Default(),
	}

	for code, text := range defaultErrorTexts {
		e.errorTexts[code] = text
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Route returns the route registered under path, creating and registering
// it first when absent. The path is normalized to begin with "/".
func (e *Engine) Route(path string) *Route {
	path = normalizePath(path)

	if rt, ok := e.table.get(path); ok {
		return rt
	}

	rt := newRoute(path)
	e.table.add(rt)
	return rt
}

// Handle registers a terminal handler for method on path. Optional
// middlewares become the entry's method-scoped chain.
func (e *Engine) Handle(method, path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Route(path).Handle(method, handler, middlewares...)
}

// HandleSplit registers a split handler for method on path: selector picks
// one of candidates by index at dispatch time.
func (e *Engine) HandleSplit(method, path string, selector SelectorFunc, candidates []HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Route(path).HandleSplit(method, selector, candidates, middlewares...)
}

// GET registers a handler for GET requests on path.
func (e *Engine) GET(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(http.MethodGet, path, handler, middlewares...)
}

// POST registers a handler for POST requests on path.
func (e *Engine) POST(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(http.MethodPost, path, handler, middlewares...)
}

// PUT registers a handler for PUT requests on path.
func (e *Engine) PUT(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(http.MethodPut, path, handler, middlewares...)
}

// PATCH registers a handler for PATCH requests on path.
func (e *Engine) PATCH(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(http.MethodPatch, path, handler, middlewares...)
}

// DELETE registers a handler for DELETE requests on path.
func (e *Engine) DELETE(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(http.MethodDelete, path, handler, middlewares...)
}

// OPTIONS registers a handler for OPTIONS requests on path.
func (e *Engine) OPTIONS(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(http.MethodOptions, path, handler, middlewares...)
}

// HEAD registers a handler for HEAD requests on path.
func (e *Engine) HEAD(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(http.MethodHead, path, handler, middlewares...)
}

// Any registers a handler matching every method on path. An exact-method
// entry registered on the same route takes precedence.
func (e *Engine) Any(path string, handler HandlerFunc, middlewares ...MiddlewareFunc) *Route {
	return e.Handle(MethodAll, path, handler, middlewares...)
}

// Use appends middlewares to the global chain, run for every request before
// route lookup.
func (e *Engine) Use(middlewares ...MiddlewareFunc) {
	e.middlewares = append(e.middlewares, middlewares...)
}

// SetSearchMode switches the route table's storage strategy. With preserve,
// the new representation is re-derived from the current one, keyed by path
// string; without it the table is cleared. Setup phase only.
func (e *Engine) SetSearchMode(mode SearchMode, preserve bool) {
	table := newTable(mode)

	if preserve {
		for _, rt := range e.table.routes() {
			table.add(rt)
		}
	}

	e.table = table
}

// SearchModeActive returns the route table's current search mode.
func (e *Engine) SearchModeActive() SearchMode {
	return e.table.mode()
}

// Reorder rearranges the route table so plain routes come first, then
// parameterized routes, then wildcard routes, each group keeping its
// relative order. In dynamic mode this makes literal paths win over
// overlapping patterns regardless of registration order.
func (e *Engine) Reorder() {
	routes := reorderRoutes(e.table.routes())

	table := newTable(e.table.mode())
	for _, rt := range routes {
		table.add(rt)
	}

	e.table = table
}

// SetFallback replaces the handler invoked when no route and method match.
// Passing nil restores the default, which answers with the configured
// not-found text and status 404.
func (e *Engine) SetFallback(handler HandlerFunc) {
	e.fallback = handler
}

// Fallback returns the configured fallback handler, or nil when the default
// is active.
func (e *Engine) Fallback() HandlerFunc {
	return e.fallback
}

// SetErrorText replaces the response body sent for the given error code.
func (e *Engine) SetErrorText(code ErrorCode, text string) {
	e.errorTexts[code] = text
}

// ErrorText returns the response body configured for the given error code.
func (e *Engine) ErrorText(code ErrorCode) string {
	return e.errorTexts[code]
}

// Debug reports whether debug mode is active.
func (e *Engine) Debug() bool {
	return e.debug
}

// SetDebug toggles debug mode at runtime.
func (e *Engine) SetDebug(debug bool) {
	e.debug = debug
}

// ServeHTTP runs the dispatch state machine for one request: normalize the
// path, fire the request-received notification, run the global chain, look
// the route up, run the route- and method-scoped chains, invoke the terminal
// handler (or the fallback when nothing matched), then fire the
// response-finished notification.
//
// A panic escaping a middleware or handler is recovered here: the
// internal-error notification fires and, when nothing has been written yet,
// a 500 with the configured internal-error text is sent.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := newContext(e, w, r)

	defer func() {
		if v := recover(); v != nil {
			e.emitError(c, fmt.Errorf("engine: recovered panic in %s %s: %v", c.method, c.path, v))
			if !c.Written() {
				c.Fail(CodeInternal)
			}
		}
		e.emitFinished(c)
	}()

	e.emitRequest(c)

	if e.debug {
		e.logger.Debug("dispatch", "method", c.method, "path", c.path)
	}

	if !runChain(c, e.middlewares) {
		return
	}

	rt, params, ok := e.table.lookup(c.path, c.method)
	if !ok {
		if e.debug {
			e.logger.Debug("no route matched", "method", c.method, "path", c.path)
		}
		e.runFallback(c)
		return
	}

	c.route = rt
	c.Params = params

	if !runChain(c, rt.middlewares) {
		return
	}

	entry := rt.entry(c.method)

	if !runChain(c, entry.middlewares) {
		return
	}

	e.invoke(c, entry)
}

// invoke calls the terminal handler of the matched entry. For a split entry
// the selector runs first; an out-of-range index fires the internal-error
// notification once and answers with a fixed 500.
func (e *Engine) invoke(c *Context, entry *handlerEntry) {
	if !entry.split {
		entry.handler(c)
		return
	}

	idx := entry.selector(c)
	if idx < 0 || idx >= len(entry.candidates) {
		err := fmt.Errorf("engine: split selector for %s %s returned index %d, want [0,%d)",
			c.method, c.route.path, idx, len(entry.candidates))
		e.emitError(c, err)
		c.Fail(CodeInternal)
		return
	}

	entry.candidates[idx](c)
}

// runFallback invokes the configured or default fallback.
func (e *Engine) runFallback(c *Context) {
	if e.fallback != nil {
		e.fallback(c)
		return
	}
	c.Fail(CodeNotFound)
}
