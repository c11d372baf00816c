// Package enginehandlers provides middleware and listeners for the engine
// dispatch pipeline.
//
// # Request ID Middleware
//
// RequestIDMiddleware assigns an identifier to every request and stores it
// on the context under RequestIDKey. Identifiers default to UUIDv4; an
// incoming header can be trusted instead.
//
//	mw := enginehandlers.RequestIDMiddleware(enginehandlers.RequestIDConfig{
//	    TrustIncoming: true,
//	})
//	e.Use(mw)
//
// # Access Log Listener
//
// AccessLog returns a response-finished listener that writes one structured
// log line per request via log/slog, with the level chosen from the response
// status.
//
//	e.OnFinished(enginehandlers.AccessLog(enginehandlers.AccessLogConfig{}))
//
// # CORS Middleware
//
// CORSMiddleware implements the CORS protocol per the Fetch Standard. It
// validates the Origin header (RFC 6454), answers preflight OPTIONS
// requests with 204 and halts the chain, and sets the appropriate response
// headers on actual requests.
//
//	mw, err := enginehandlers.CORSMiddleware(enginehandlers.CORSConfig{
//	    AllowedOrigins:   []string{"https://example.com"},
//	    AllowCredentials: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e.Use(mw)
//
// # Basic Auth Middleware
//
// BasicAuthMiddleware implements HTTP Basic Authentication per RFC 7617.
// Credentials can be validated via a dynamic callback or a static map.
// Static credential comparison uses constant-time comparison to prevent
// timing attacks.
//
//	mw, err := enginehandlers.BasicAuthMiddleware(enginehandlers.BasicAuthConfig{
//	    Realm: "My App",
//	    Credentials: map[string]string{
//	        "admin": "secret",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e.Use(mw)
//
// # Proxy Headers Middleware
//
// ProxyHeadersMiddleware populates request fields from reverse proxy headers
// when the request originates from a trusted proxy. It sets r.RemoteAddr from
// X-Forwarded-For or X-Real-IP, r.URL.Scheme from X-Forwarded-Proto or
// X-Forwarded-Scheme, and r.Host from X-Forwarded-Host. When EnableForwarded
// is true, the RFC 7239 Forwarded header is also parsed as a lowest-priority
// fallback. A trusted proxy list (IPs and CIDRs) restricts which peers are
// allowed to set these headers, preventing spoofing from untrusted clients.
// When TrustedProxies is empty, DefaultTrustedProxies (RFC 1918, RFC 4193,
// and loopback ranges) is used.
//
//	mw, err := enginehandlers.ProxyHeadersMiddleware(enginehandlers.ProxyHeadersConfig{
//	    TrustedProxies:  []string{"10.0.0.0/8", "172.16.0.0/12"},
//	    EnableForwarded: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e.Use(mw)
//
// # Security Headers Middleware
//
// SecurityHeadersMiddleware sets common security response headers:
// X-Content-Type-Options, X-Frame-Options, Referrer-Policy, and optionally
// Strict-Transport-Security, Content-Security-Policy, Permissions-Policy
// and Cross-Origin-Opener-Policy.
//
//	mw, err := enginehandlers.SecurityHeadersMiddleware(enginehandlers.SecurityHeadersConfig{
//	    HSTSMaxAge: 31536000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e.Use(mw)
//
// # Request Size Limit Middleware
//
// RequestSizeLimitMiddleware wraps the request body with http.MaxBytesReader
// so that downstream body parsers fail once the limit is exceeded.
//
//	mw, err := enginehandlers.RequestSizeLimitMiddleware(enginehandlers.RequestSizeLimitConfig{
//	    MaxBytes: 1 << 20,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e.Use(mw)
//
// # Static Files
//
// RegisterStaticFiles walks a filesystem and registers a GET route per file,
// deriving the content type from the extension. Index files are also served
// at their directory path.
//
//	err := enginehandlers.RegisterStaticFiles(e, enginehandlers.StaticFilesConfig{
//	    FS:     os.DirFS("public"),
//	    Prefix: "/static",
//	})
package enginehandlers
