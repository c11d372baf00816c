package engine

import (
	"log/slog"
	"os"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithDebug forces debug mode on or off, overriding the TOLDI_DEBUG
// environment default.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// WithSearchMode sets the route table's initial search mode.
func WithSearchMode(mode SearchMode) Option {
	return func(e *Engine) {
		e.table = newTable(mode)
	}
}

// WithFallback sets the handler invoked when no route and method match.
func WithFallback(handler HandlerFunc) Option {
	return func(e *Engine) {
		e.fallback = handler
	}
}

// WithErrorText overrides the response body for one error code.
func WithErrorText(code ErrorCode, text string) Option {
	return func(e *Engine) {
		e.errorTexts[code] = text
	}
}

// WithLogger sets the logger used for debug-mode and error logging.
// Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxConns caps the number of simultaneously accepted connections when
// serving through Run. Zero means unlimited. This is transport-side
// admission control; the pipeline itself never queues or sheds requests.
func WithMaxConns(n int) Option {
	return func(e *Engine) {
		e.maxConns = n
	}
}

// envDebug reports whether the debug environment variable is present.
func envDebug() bool {
	_, ok := os.LookupEnv(DebugEnv)
	return ok
}
