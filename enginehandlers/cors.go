package enginehandlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/hentesoposszum/toldi/engine"
)

// ErrWildcardCredentials is returned when AllowedOrigins contains "*" and
// AllowCredentials is true. Use AllowOriginFunc for dynamic origin checks
// with credentials.
var ErrWildcardCredentials = errors.New("wildcard origin \"*\" cannot be used with AllowCredentials; use AllowOriginFunc instead")

// ErrMultipleWildcards is returned when an origin pattern contains more than
// one "*".
var ErrMultipleWildcards = errors.New("origin pattern contains multiple wildcards")

// CORSConfig configures the CORS middleware behaviour.
//
// Spec references:
//   - CORS protocol: https://fetch.spec.whatwg.org/#http-cors-protocol
//   - Web Origin:    https://www.rfc-editor.org/rfc/rfc6454
type CORSConfig struct {
	// AllowedOrigins is a list of exact origin strings, "*" for wildcard,
	// or subdomain wildcard patterns like "https://*.example.com".
	AllowedOrigins []string

	// AllowOriginFunc is an optional dynamic callback invoked when the
	// origin does not match any entry in AllowedOrigins. Return true to
	// allow.
	AllowOriginFunc func(origin string) bool

	// AllowedMethods is the set of methods advertised in preflight
	// responses. Defaults to GET, POST, PUT, PATCH, DELETE and OPTIONS.
	AllowedMethods []string

	// AllowedHeaders lists the headers the client may send in the actual
	// request. When empty the middleware reflects the
	// Access-Control-Request-Headers value from the preflight request.
	AllowedHeaders []string

	// ExposeHeaders lists the headers the browser may expose to client
	// code.
	ExposeHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials: true.
	// Per the Fetch Standard, "*" cannot be used as Allow-Origin when
	// credentials are enabled; the middleware returns
	// ErrWildcardCredentials.
	AllowCredentials bool

	// MaxAge is the duration in seconds a preflight result may be cached.
	// Zero omits the header.
	MaxAge int
}

// wildcardPattern represents a subdomain wildcard pattern split at the "*".
type wildcardPattern struct {
	prefix string
	suffix string
}

// defaultCORSMethods is advertised in preflight responses when
// AllowedMethods is empty.
var defaultCORSMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// CORSMiddleware returns a middleware implementing the CORS protocol per
// the Fetch Standard. Preflight OPTIONS requests are answered with 204 and
// halt the chain; actual requests get the allow headers and continue.
// Requests without an Origin header, or with a disallowed one, pass through
// without CORS headers.
func CORSMiddleware(cfg CORSConfig) (engine.MiddlewareFunc, error) {
	wildcardOrigin := slices.Contains(cfg.AllowedOrigins, "*")
	if wildcardOrigin && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	exact, patterns, err := parseOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")

	originAllowed := func(origin string) bool {
		lower := strings.ToLower(origin)
		if wildcardOrigin || slices.Contains(exact, lower) {
			return true
		}
		for _, p := range patterns {
			if len(lower) > len(p.prefix)+len(p.suffix) &&
				strings.HasPrefix(lower, p.prefix) && strings.HasSuffix(lower, p.suffix) {
				return true
			}
		}
		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(origin)
		}
		return false
	}

	return func(c *engine.Context) engine.Flow {
		origin := c.Request().Header.Get("Origin")
		if origin == "" || !originAllowed(origin) {
			return engine.Continue
		}

		if wildcardOrigin && !cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Writer().Header().Add("Vary", "Origin")
		}

		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if exposeHeaders != "" {
			c.Header("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Method() != http.MethodOptions || c.Request().Header.Get("Access-Control-Request-Method") == "" {
			return engine.Continue
		}

		// Preflight.
		c.Header("Access-Control-Allow-Methods", allowMethods)

		if allowHeaders != "" {
			c.Header("Access-Control-Allow-Headers", allowHeaders)
		} else if requested := c.Request().Header.Get("Access-Control-Request-Headers"); requested != "" {
			c.Header("Access-Control-Allow-Headers", requested)
			c.Writer().Header().Add("Vary", "Access-Control-Request-Headers")
		}

		if cfg.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		c.Status(http.StatusNoContent)
		return engine.Halt
	}, nil
}

// parseOrigins normalizes AllowedOrigins to lowercase and splits them into
// exact matches and wildcard patterns.
func parseOrigins(origins []string) ([]string, []wildcardPattern, error) {
	var exact []string
	var patterns []wildcardPattern

	for _, o := range origins {
		if o == "*" {
			continue
		}

		lower := strings.ToLower(o)

		if strings.Contains(lower, "*") {
			parts := strings.SplitN(lower, "*", 2)
			if strings.Contains(parts[1], "*") {
				return nil, nil, ErrMultipleWildcards
			}

			patterns = append(patterns, wildcardPattern{prefix: parts[0], suffix: parts[1]})
			continue
		}

		exact = append(exact, lower)
	}

	return exact, patterns, nil
}
