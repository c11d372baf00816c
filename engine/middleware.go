package engine

import (
	"encoding/json"
	"errors"
	"io"
	"mime"

	"github.com/hentesoposszum/toldi/fields"
)

// Flow is the result a middleware returns to the chain executor: Continue
// schedules the next middleware (or the terminal handler when none remain),
// Halt permanently stops the pipeline for this request.
type Flow int

const (
	// Continue passes control to the next middleware in the chain.
	Continue Flow = iota

	// Halt stops the chain; no later middleware and no terminal handler
	// run for this request. The middleware is expected to have written
	// a response.
	Halt
)

// HandlerFunc is a terminal handler producing the response for a matched
// route and method.
type HandlerFunc func(*Context)

// SelectorFunc chooses, by index, among the candidate handlers of a split
// handler. The returned index must be within the candidate list; an
// out-of-range index is a dispatch error answered with a 500 response.
type SelectorFunc func(*Context) int

// MiddlewareFunc is a pre-processing step run before the terminal handler.
// Middlewares run strictly in registration order, one at a time; a
// middleware may block on I/O for as long as it needs — the executor
// imposes no timeout. Returning Halt short-circuits the request.
type MiddlewareFunc func(*Context) Flow

// runChain executes middlewares in order. It reports whether the chain ran
// to completion; an empty chain completes immediately.
func runChain(c *Context, chain []MiddlewareFunc) bool {
	for _, mw := range chain {
		if mw(c) != Continue {
			return false
		}
	}
	return true
}

// ParseQuery returns a middleware that parses the request's raw query string
// and attaches the coerced mapping to Context.Query. A malformed query
// string answers with the configured malformed-query text and halts.
func ParseQuery() MiddlewareFunc {
	return func(c *Context) Flow {
		q, err := fields.ParseQuery(c.Request().URL.RawQuery, true)
		if err != nil {
			c.Fail(CodeMalformedQuery)
			return Halt
		}
		c.Query = q
		return Continue
	}
}

// ParseCookies returns a middleware that parses the request's Cookie header
// and attaches the coerced mapping to Context.Cookies. A malformed header
// answers with the configured malformed-cookie text and halts.
func ParseCookies() MiddlewareFunc {
	return func(c *Context) Flow {
		ck, err := fields.ParseCookies(c.Request().Header.Get("Cookie"), true)
		if err != nil {
			c.Fail(CodeMalformedCookie)
			return Halt
		}
		c.Cookies = ck
		return Continue
	}
}

// ParseBody returns a middleware that decodes the request body and attaches
// the result to Context.Body. Urlencoded forms become a coerced mapping,
// JSON is decoded with the standard decoder, a missing content type yields
// an empty mapping, and any other content type answers 415 and halts.
// A body that fails its parser answers with the configured malformed-body
// text and halts.
func ParseBody() MiddlewareFunc {
	return func(c *Context) Flow {
		ct := c.Request().Header.Get("Content-Type")
		if ct == "" {
			c.Body = map[string]any{}
			return Continue
		}

		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			c.Fail(CodeUnsupportedMedia)
			return Halt
		}

		switch mediaType {
		case "application/x-www-form-urlencoded":
			raw, err := io.ReadAll(c.Request().Body)
			if err != nil {
				c.Fail(CodeMalformedBody)
				return Halt
			}
			body, err := fields.ParseQuery(string(raw), true)
			if err != nil {
				c.Fail(CodeMalformedBody)
				return Halt
			}
			c.Body = body

		case "application/json":
			var body any
			dec := json.NewDecoder(c.Request().Body)
			if err := dec.Decode(&body); err != nil {
				c.Fail(CodeMalformedBody)
				return Halt
			}
			if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
				c.Fail(CodeMalformedBody)
				return Halt
			}
			c.Body = body

		default:
			c.Fail(CodeUnsupportedMedia)
			return Halt
		}

		return Continue
	}
}
