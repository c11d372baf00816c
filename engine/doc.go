// Package engine implements a request-dispatch pipeline in front of
// net/http: it selects a handler by path and method, runs a deterministic
// chain of middlewares across three scopes, and invokes exactly one terminal
// handler per request.
//
// # Engine
//
// Create an engine, register routes, and serve:
//
//	e := engine.New()
//	e.GET("/users/{id}", func(c *engine.Context) {
//	    c.String(http.StatusOK, c.Param("id"))
//	})
//	http.ListenAndServe(":8080", e)
//
// The engine implements http.Handler; it opens no sockets of its own. Run
// and RunListener are convenience transport glue.
//
// # Routes
//
// Route paths are matched segment by segment. A "{name}" segment binds the
// request segment as a path parameter; a "*" segment matches the entire
// remaining suffix:
//
//	e.GET("/users/{id}", handler)       // c.Param("id")
//	e.GET("/files/*", handler)          // matches /files/a/b/c
//	e.Any("/ping", handler)             // every method
//
// Engine.Route returns the route registered under a path, creating it on
// first use, so handlers and middlewares for several methods can be attached
// to one route:
//
//	r := e.Route("/articles")
//	r.Handle(http.MethodGet, listArticles)
//	r.Handle(http.MethodPost, createArticle)
//	r.Use(authMiddleware)
//
// # Search Modes
//
// The route table has two interchangeable strategies. Dynamic mode (the
// default) scans routes in registration order and supports parameters and
// wildcards; the first route whose path matches and which serves the method
// wins, so registration order is significant for overlapping patterns.
// Reorder rearranges the table so literal routes are tried before
// parameterized and wildcard ones. Static mode is a single exact-match
// probe with no parameters or wildcards:
//
//	e.SetSearchMode(engine.SearchStatic, true) // keep registered routes
//
// # Middlewares
//
// A middleware receives the Context and returns Continue or Halt. Three
// scopes run as three sequential chains per request, in fixed order: the
// global chain, the matched route's chain, then the matched entry's
// method-scoped chain, followed by the terminal handler. Returning Halt
// stops the request permanently; a middleware that blocks on I/O simply
// blocks — the executor imposes no timeout:
//
//	e.Use(engine.ParseQuery(), engine.ParseCookies())
//	e.POST("/upload", uploadHandler, engine.ParseBody())
//
// ParseQuery, ParseCookies and ParseBody attach the coerced query mapping,
// cookie mapping and decoded body to the Context, answering 400 (or 415 for
// an unrecognized content type) and halting on malformed input.
//
// # Split Handlers
//
// A split handler attaches several candidate handlers to one route and
// method; a selector picks one by index per request:
//
//	e.HandleSplit(http.MethodGet, "/report", func(c *engine.Context) int {
//	    if c.Query["format"] == "csv" {
//	        return 1
//	    }
//	    return 0
//	}, []engine.HandlerFunc{jsonReport, csvReport}, engine.ParseQuery())
//
// An out-of-range index is a dispatch error: the internal-error
// notification fires and a 500 with the configured internal-error text is
// sent.
//
// # Fallback and Error Texts
//
// When no route and method match, the fallback runs; the default answers
// 404 with the configured not-found text. Response bodies for the built-in
// error codes are configurable:
//
//	e.SetFallback(func(c *engine.Context) { c.String(404, "lost?") })
//	e.SetErrorText(engine.CodeInternal, "try again later")
//
// # Notifications
//
// Three notifications are observable: request-received, response-finished
// and internal-error. Listeners run synchronously on the request goroutine:
//
//	e.OnFinished(func(c *engine.Context) {
//	    log.Println(c.Method(), c.Path(), c.StatusCode())
//	})
//
// # Setup Phase
//
// Registration calls — routes, middlewares, listeners, search mode, error
// texts — are intended for a setup phase that completes before traffic
// arrives. The engine provides no locking around these structures; mutating
// them concurrently with in-flight requests is undefined behavior.
//
// # Configuration
//
// Debug mode defaults to the presence of the TOLDI_DEBUG environment
// variable and can be forced with WithDebug. LoadConfig and ApplyConfig
// read debug mode, search mode and error-text overrides from a YAML file.
package engine
