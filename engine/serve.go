package engine

import (
	"net"
	"net/http"

	"golang.org/x/net/netutil"
)

// Run listens on addr and serves the engine over HTTP. When WithMaxConns is
// set, the listener is capped with netutil.LimitListener. Run blocks until
// the server stops.
func (e *Engine) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return e.RunListener(ln)
}

// RunListener serves the engine on an existing listener, applying the
// WithMaxConns cap when set. The listener is closed when serving stops.
func (e *Engine) RunListener(ln net.Listener) error {
	if e.maxConns > 0 {
		ln = netutil.LimitListener(ln, e.maxConns)
	}

	srv := &http.Server{Handler: e}
	return srv.Serve(ln)
}
