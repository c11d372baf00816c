package engine

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// Context carries the per-request state through the pipeline. It is created
// when a request arrives, is exclusively owned by that request's pipeline
// instance, and is discarded when the response finishes.
//
// Params, Query, Cookies and Body start empty and are attached by the
// matcher and the parser middlewares as the request progresses.
type Context struct {
	// Params holds the path-parameter bindings extracted by the matcher.
	// Values are always the literal matched segment strings, never
	// coerced. Nil when the matched route has no parameters.
	Params map[string]string

	// Query holds the coerced query mapping attached by ParseQuery.
	Query map[string]any

	// Cookies holds the coerced cookie mapping attached by ParseCookies.
	Cookies map[string]any

	// Body holds the decoded request body attached by ParseBody.
	Body any

	engine  *Engine
	request *http.Request
	writer  *responseWriter
	path    string
	method  string
	route   *Route
	started time.Time
	values  map[string]any
}

// newContext builds the context for one inbound request.
func newContext(e *Engine, w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		engine:  e,
		request: r,
		writer:  &responseWriter{ResponseWriter: w},
		path:    normalizePath(r.URL.Path),
		method:  canonicalMethod(r.Method),
		started: time.Now(),
	}
}

// Request returns the underlying transport request.
func (c *Context) Request() *http.Request {
	return c.request
}

// SetRequest replaces the underlying request, for middlewares that derive a
// new request (for example to attach values to its context).
func (c *Context) SetRequest(r *http.Request) {
	c.request = r
}

// Writer returns the response sink. Writes through it are tracked, so
// StatusCode and BytesWritten stay accurate.
func (c *Context) Writer() http.ResponseWriter {
	return c.writer
}

// Path returns the normalized request path.
func (c *Context) Path() string {
	return c.path
}

// Method returns the resolved request method.
func (c *Context) Method() string {
	return c.method
}

// Param returns the path-parameter binding for name, or the empty string.
func (c *Context) Param(name string) string {
	return c.Params[name]
}

// RoutePath returns the matched route's path pattern, or the empty string
// when no route matched (global middlewares and fallback).
func (c *Context) RoutePath() string {
	if c.route == nil {
		return ""
	}
	return c.route.path
}

// Started returns the time the context was created.
func (c *Context) Started() time.Time {
	return c.started
}

// StatusCode returns the response status written so far, or zero when
// nothing has been written yet.
func (c *Context) StatusCode() int {
	return c.writer.status
}

// BytesWritten returns the number of response body bytes written so far.
func (c *Context) BytesWritten() int64 {
	return c.writer.written
}

// Written reports whether any part of the response has been sent.
func (c *Context) Written() bool {
	return c.writer.wroteHeader
}

// Set stores a request-scoped value, for handing data from a middleware to
// later middlewares or the handler.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

// Get returns a request-scoped value stored with Set.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Header sets a response header.
func (c *Context) Header(key, value string) {
	c.writer.Header().Set(key, value)
}

// SetCookie adds a Set-Cookie header to the response. Cookie serialization
// is delegated to net/http.
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.writer, cookie)
}

// Status writes the response header with the given status code and no body.
func (c *Context) Status(code int) {
	c.writer.WriteHeader(code)
}

// String writes a plain-text response with the given status code.
func (c *Context) String(code int, body string) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.writer.WriteHeader(code)
	c.writer.Write([]byte(body))
}

// JSON encodes v and writes it with the given status code. If encoding
// fails, a 500 with the configured internal-error text is written instead
// and the internal-error notification fires.
func (c *Context) JSON(code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		c.ReportError(err)
		c.Fail(CodeInternal)
		return
	}

	c.Header("Content-Type", "application/json")
	c.writer.WriteHeader(code)
	c.writer.Write(buf.Bytes())
}

// Fail writes the configured error response for the code: its fixed status
// and the engine's current text for it.
func (c *Context) Fail(code ErrorCode) {
	c.String(code.Status(), c.engine.ErrorText(code))
}

// ReportError fires the engine's internal-error listeners with err. It does
// not write a response.
func (c *Context) ReportError(err error) {
	c.engine.emitError(c, err)
}

// responseWriter tracks the status code and body size of the response as it
// is written.
type responseWriter struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	return n, err
}

// Flush forwards to the underlying writer when it supports streaming.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
