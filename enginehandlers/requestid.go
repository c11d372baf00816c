package enginehandlers

import (
	"github.com/google/uuid"

	"github.com/hentesoposszum/toldi/engine"
)

// RequestIDKey is the context value key under which the request ID is stored
// on the engine Context.
const RequestIDKey = "request_id"

// RequestIDFromContext returns the request ID stored by RequestIDMiddleware,
// or an empty string when none is present.
func RequestIDFromContext(c *engine.Context) string {
	if id, ok := c.Get(RequestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}

// RequestIDConfig configures the Request ID middleware behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// GenerateFunc is an optional callback that returns a new unique ID.
	// It receives the current request context, allowing ID generation
	// based on request data. Defaults to GenerateUUIDv4.
	GenerateFunc func(c *engine.Context) string

	// TrustIncoming, when true, reuses an existing request ID from the
	// incoming request header instead of generating a new one.
	TrustIncoming bool
}

// RequestIDMiddleware returns a middleware that generates or propagates a
// request ID header. The ID is stored on the Context (for downstream
// middlewares and the handler) and set on the response (for the caller).
func RequestIDMiddleware(cfg RequestIDConfig) engine.MiddlewareFunc {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	return func(c *engine.Context) engine.Flow {
		id := ""
		if cfg.TrustIncoming {
			id = c.Request().Header.Get(headerName)
		}
		if id == "" {
			id = generate(c)
		}

		c.Set(RequestIDKey, id)
		c.Header(headerName, id)
		return engine.Continue
	}
}

// GenerateUUIDv4 returns a random RFC 4122 version 4 UUID string.
func GenerateUUIDv4(*engine.Context) string {
	return uuid.NewString()
}

// GenerateUUIDv7 returns a time-ordered RFC 9562 version 7 UUID string.
// It falls back to a version 4 UUID if the system clock is unavailable.
func GenerateUUIDv7(c *engine.Context) string {
	id, err := uuid.NewV7()
	if err != nil {
		return GenerateUUIDv4(c)
	}

	return id.String()
}
