package enginehandlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hentesoposszum/toldi/engine"
)

// corsEngine builds an engine with the CORS middleware and a GET/POST route.
func corsEngine(t *testing.T, cfg CORSConfig) *engine.Engine {
	t.Helper()

	mw, err := CORSMiddleware(cfg)
	require.NoError(t, err)

	e := engine.New(engine.WithDebug(false))
	e.Use(mw)
	e.GET("/resource", func(c *engine.Context) { c.String(http.StatusOK, "ok") })
	e.POST("/resource", func(c *engine.Context) { c.String(http.StatusOK, "ok") })

	return e
}

func TestCORSConfigValidation(t *testing.T) {
	t.Run("wildcard with credentials", func(t *testing.T) {
		_, err := CORSMiddleware(CORSConfig{
			AllowedOrigins:   []string{"*"},
			AllowCredentials: true,
		})
		assert.ErrorIs(t, err, ErrWildcardCredentials)
	})

	t.Run("multiple wildcards in pattern", func(t *testing.T) {
		_, err := CORSMiddleware(CORSConfig{
			AllowedOrigins: []string{"https://*.*.example.com"},
		})
		assert.ErrorIs(t, err, ErrMultipleWildcards)
	})
}

func TestCORSActualRequest(t *testing.T) {
	tests := []struct {
		name        string
		config      CORSConfig
		origin      string
		wantAllow   string
		wantVary    bool
		wantCreds   bool
		wantExposed string
	}{
		{
			name:      "wildcard origin",
			config:    CORSConfig{AllowedOrigins: []string{"*"}},
			origin:    "https://example.com",
			wantAllow: "*",
		},
		{
			name:      "exact origin match reflects origin",
			config:    CORSConfig{AllowedOrigins: []string{"https://example.com"}},
			origin:    "https://example.com",
			wantAllow: "https://example.com",
			wantVary:  true,
		},
		{
			name:      "origin match is case-insensitive",
			config:    CORSConfig{AllowedOrigins: []string{"https://Example.COM"}},
			origin:    "https://example.com",
			wantAllow: "https://example.com",
			wantVary:  true,
		},
		{
			name:      "subdomain wildcard pattern",
			config:    CORSConfig{AllowedOrigins: []string{"https://*.example.com"}},
			origin:    "https://api.example.com",
			wantAllow: "https://api.example.com",
			wantVary:  true,
		},
		{
			name:   "disallowed origin gets no headers",
			config: CORSConfig{AllowedOrigins: []string{"https://example.com"}},
			origin: "https://evil.com",
		},
		{
			name:   "no origin header gets no headers",
			config: CORSConfig{AllowedOrigins: []string{"*"}},
		},
		{
			name: "dynamic AllowOriginFunc",
			config: CORSConfig{
				AllowOriginFunc: func(origin string) bool { return origin == "https://dynamic.test" },
			},
			origin:    "https://dynamic.test",
			wantAllow: "https://dynamic.test",
			wantVary:  true,
		},
		{
			name: "credentials with exact origin",
			config: CORSConfig{
				AllowedOrigins:   []string{"https://example.com"},
				AllowCredentials: true,
			},
			origin:    "https://example.com",
			wantAllow: "https://example.com",
			wantVary:  true,
			wantCreds: true,
		},
		{
			name: "expose headers",
			config: CORSConfig{
				AllowedOrigins: []string{"*"},
				ExposeHeaders:  []string{"X-Request-ID", "X-Total-Count"},
			},
			origin:      "https://example.com",
			wantAllow:   "*",
			wantExposed: "X-Request-ID, X-Total-Count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := corsEngine(t, tt.config)

			req := httptest.NewRequest(http.MethodGet, "/resource", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			rec := perform(e, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "ok", rec.Body.String())
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))

			if tt.wantVary {
				assert.Contains(t, rec.Header().Values("Vary"), "Origin")
			}

			if tt.wantCreds {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
			}

			assert.Equal(t, tt.wantExposed, rec.Header().Get("Access-Control-Expose-Headers"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Run("preflight halts with 204", func(t *testing.T) {
		e := corsEngine(t, CORSConfig{
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         600,
		})

		req := httptest.NewRequest(http.MethodOptions, "/resource", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := perform(e, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("default methods advertised", func(t *testing.T) {
		e := corsEngine(t, CORSConfig{AllowedOrigins: []string{"*"}})

		req := httptest.NewRequest(http.MethodOptions, "/resource", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)

		rec := perform(e, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("reflects requested headers when none configured", func(t *testing.T) {
		e := corsEngine(t, CORSConfig{AllowedOrigins: []string{"*"}})

		req := httptest.NewRequest(http.MethodOptions, "/resource", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "X-Custom")

		rec := perform(e, req)

		assert.Equal(t, "X-Custom", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Contains(t, rec.Header().Values("Vary"), "Access-Control-Request-Headers")
	})

	t.Run("OPTIONS without request-method is not preflight", func(t *testing.T) {
		mw, err := CORSMiddleware(CORSConfig{AllowedOrigins: []string{"*"}})
		require.NoError(t, err)

		e := engine.New(engine.WithDebug(false))
		e.Use(mw)
		e.OPTIONS("/resource", func(c *engine.Context) { c.String(http.StatusOK, "options") })

		req := httptest.NewRequest(http.MethodOptions, "/resource", nil)
		req.Header.Set("Origin", "https://example.com")

		rec := perform(e, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "options", rec.Body.String())
	})
}

func TestParseOrigins(t *testing.T) {
	exact, patterns, err := parseOrigins([]string{
		"https://Example.com",
		"https://*.api.test",
		"*",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com"}, exact)
	require.Len(t, patterns, 1)
	assert.Equal(t, "https://", patterns[0].prefix)
	assert.Equal(t, ".api.test", patterns[0].suffix)
}
