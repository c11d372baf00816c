package engine

// RequestListener observes a request lifecycle notification. Listeners run
// synchronously on the request's goroutine, in registration order.
type RequestListener func(*Context)

// ErrorListener observes the internal-error notification.
type ErrorListener func(*Context, error)

// OnRequest registers a listener fired when a request enters the pipeline,
// before any middleware runs. Setup phase only.
func (e *Engine) OnRequest(l RequestListener) {
	e.onRequest = append(e.onRequest, l)
}

// OnFinished registers a listener fired after the pipeline completes for a
// request — the terminal handler, fallback, or a halting middleware has
// finished sending output. Setup phase only.
func (e *Engine) OnFinished(l RequestListener) {
	e.onFinished = append(e.onFinished, l)
}

// OnError registers a listener for the internal-error notification, fired
// on dispatch misconfiguration (an out-of-range split index), a recovered
// panic, or Context.ReportError. Setup phase only.
func (e *Engine) OnError(l ErrorListener) {
	e.onError = append(e.onError, l)
}

func (e *Engine) emitRequest(c *Context) {
	for _, l := range e.onRequest {
		l(c)
	}
}

func (e *Engine) emitFinished(c *Context) {
	for _, l := range e.onFinished {
		l(c)
	}
}

func (e *Engine) emitError(c *Context, err error) {
	if e.debug {
		e.logger.Error("pipeline error", "method", c.method, "path", c.path, "error", err)
	}
	for _, l := range e.onError {
		l(c, err)
	}
}
