package enginehandlers

import (
	"errors"
	"net/http"

	"github.com/hentesoposszum/toldi/engine"
)

// ErrInvalidMaxSize is returned when RequestSizeLimitConfig.MaxBytes is not
// greater than zero.
var ErrInvalidMaxSize = errors.New("request size limit: max size must be greater than zero")

// RequestSizeLimitConfig configures the Request Size Limit middleware behaviour.
type RequestSizeLimitConfig struct {
	// MaxBytes is the maximum allowed request body size in bytes.
	// Must be greater than zero.
	MaxBytes int64
}

// RequestSizeLimitMiddleware returns a middleware that limits the size of
// incoming request bodies. It wraps the request body with
// http.MaxBytesReader, so downstream body parsers receive an error when
// reading beyond the limit and MaxBytesReader answers with 413 Request
// Entity Too Large.
//
// It returns ErrInvalidMaxSize if MaxBytes is not greater than zero.
func RequestSizeLimitMiddleware(cfg RequestSizeLimitConfig) (engine.MiddlewareFunc, error) {
	if cfg.MaxBytes <= 0 {
		return nil, ErrInvalidMaxSize
	}

	maxBytes := cfg.MaxBytes

	return func(c *engine.Context) engine.Flow {
		r := c.Request()
		r.Body = http.MaxBytesReader(c.Writer(), r.Body, maxBytes)
		return engine.Continue
	}, nil
}
