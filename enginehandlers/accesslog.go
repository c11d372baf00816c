package enginehandlers

import (
	"log/slog"
	"time"

	"github.com/hentesoposszum/toldi/engine"
)

// AccessLogConfig configures the access log listener behaviour.
type AccessLogConfig struct {
	// Handler is the slog.Handler log lines are written to.
	// Defaults to slog.Default's handler when nil.
	Handler slog.Handler
}

// AccessLog returns a response-finished listener that writes one structured
// log line per request: method, path, matched route pattern, status, body
// size and latency. The log level follows the response status: 5xx logs at
// error, 4xx at warn, everything else at info.
//
// Register it with Engine.OnFinished:
//
//	e.OnFinished(enginehandlers.AccessLog(enginehandlers.AccessLogConfig{}))
func AccessLog(cfg AccessLogConfig) engine.RequestListener {
	handler := cfg.Handler
	if handler == nil {
		handler = slog.Default().Handler()
	}
	log := slog.New(handler)

	return func(c *engine.Context) {
		latency := time.Since(c.Started())

		route := c.RoutePath()
		if route == "" {
			route = "unmatched"
		}

		log.LogAttrs(
			c.Request().Context(),
			level(c.StatusCode()),
			c.Method()+" "+c.Path(),
			slog.Int("status", c.StatusCode()),
			slog.String("route", route),
			slog.Int64("bytes", c.BytesWritten()),
			slog.Duration("latency", latency),
		)
	}
}

// level maps a response status to a log level.
func level(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
