package engine

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	t.Run("dispatches to the matched handler", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/hello", echoBody("world"))

		w := serve(e, http.MethodGet, "/hello")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "world", w.Body.String())
	})

	t.Run("binds path parameters", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/users/{id}/posts/{pid}", func(c *Context) {
			c.String(http.StatusOK, c.Param("id")+"-"+c.Param("pid"))
		})

		w := serve(e, http.MethodGet, "/users/7/posts/99")
		assert.Equal(t, "7-99", w.Body.String())
	})

	t.Run("default fallback answers 404 with the configured text", func(t *testing.T) {
		e := New(WithDebug(false))

		w := serve(e, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not found", w.Body.String())
	})

	t.Run("custom fallback replaces the default", func(t *testing.T) {
		e := New(WithDebug(false))
		e.SetFallback(func(c *Context) {
			c.String(http.StatusTeapot, "nothing here")
		})

		w := serve(e, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "nothing here", w.Body.String())
	})

	t.Run("exact method wins over ALL", func(t *testing.T) {
		e := New(WithDebug(false))
		r := e.Route("/mixed")
		r.Handle(MethodAll, echoBody("any"))
		r.Handle(http.MethodGet, echoBody("get"))

		assert.Equal(t, "get", serve(e, http.MethodGet, "/mixed").Body.String())
		assert.Equal(t, "any", serve(e, http.MethodPost, "/mixed").Body.String())
	})

	t.Run("method names are case-insensitive at registration", func(t *testing.T) {
		e := New(WithDebug(false))
		e.Handle("get", "/ping", echoBody("pong"))

		assert.Equal(t, "pong", serve(e, http.MethodGet, "/ping").Body.String())
	})

	t.Run("wrong method falls through to fallback", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/only-get", echoBody("ok"))

		w := serve(e, http.MethodPost, "/only-get")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("configured error text replaces the default", func(t *testing.T) {
		e := New(WithDebug(false))
		e.SetErrorText(CodeNotFound, "lost?")

		w := serve(e, http.MethodGet, "/missing")
		assert.Equal(t, "lost?", w.Body.String())
	})

	t.Run("recovers a panicking handler", func(t *testing.T) {
		var reported error
		e := New(WithDebug(false))
		e.OnError(func(_ *Context, err error) { reported = err })
		e.GET("/boom", func(*Context) { panic("kaput") })

		w := serve(e, http.MethodGet, "/boom")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", w.Body.String())
		require.Error(t, reported)
		assert.Contains(t, reported.Error(), "kaput")
	})
}

func TestMiddlewareChains(t *testing.T) {
	t.Run("three scopes run in fixed order before the handler", func(t *testing.T) {
		var order []string
		mark := func(name string) MiddlewareFunc {
			return func(*Context) Flow {
				order = append(order, name)
				return Continue
			}
		}

		e := New(WithDebug(false))
		e.Use(mark("global-1"), mark("global-2"))
		r := e.Route("/x")
		r.Use(mark("route"))
		r.Handle(http.MethodGet, func(c *Context) {
			order = append(order, "handler")
			c.Status(http.StatusOK)
		}, mark("method"))

		serve(e, http.MethodGet, "/x")
		assert.Equal(t, []string{"global-1", "global-2", "route", "method", "handler"}, order)
	})

	t.Run("halt short-circuits the chain and the handler", func(t *testing.T) {
		handlerCalls := 0
		laterCalls := 0

		e := New(WithDebug(false))
		e.Use(func(c *Context) Flow {
			c.String(http.StatusForbidden, "stop")
			return Halt
		})
		e.Use(func(*Context) Flow {
			laterCalls++
			return Continue
		})
		e.GET("/x", func(c *Context) {
			handlerCalls++
			c.Status(http.StatusOK)
		})

		w := serve(e, http.MethodGet, "/x")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Zero(t, handlerCalls)
		assert.Zero(t, laterCalls)
	})

	t.Run("route-scoped halt skips method chain and handler", func(t *testing.T) {
		handlerCalls := 0
		methodCalls := 0

		e := New(WithDebug(false))
		r := e.Route("/x")
		r.Use(func(c *Context) Flow {
			c.Status(http.StatusUnauthorized)
			return Halt
		})
		r.Handle(http.MethodGet, func(c *Context) {
			handlerCalls++
		}, func(*Context) Flow {
			methodCalls++
			return Continue
		})

		w := serve(e, http.MethodGet, "/x")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Zero(t, handlerCalls)
		assert.Zero(t, methodCalls)
	})

	t.Run("empty chains complete immediately", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/x", echoBody("ok"))

		assert.Equal(t, "ok", serve(e, http.MethodGet, "/x").Body.String())
	})

	t.Run("global middlewares run even when nothing matches", func(t *testing.T) {
		ran := false
		e := New(WithDebug(false))
		e.Use(func(*Context) Flow {
			ran = true
			return Continue
		})

		serve(e, http.MethodGet, "/missing")
		assert.True(t, ran)
	})
}

func TestSplitHandlers(t *testing.T) {
	newSplitEngine := func(selector SelectorFunc) (*Engine, *int) {
		errCount := 0
		e := New(WithDebug(false))
		e.OnError(func(*Context, error) { errCount++ })
		e.HandleSplit(http.MethodGet, "/pick", selector, []HandlerFunc{
			echoBody("zero"),
			echoBody("one"),
		})
		return e, &errCount
	}

	t.Run("selector picks the candidate by index", func(t *testing.T) {
		e, _ := newSplitEngine(func(c *Context) int {
			if c.Request().URL.RawQuery == "alt" {
				return 1
			}
			return 0
		})

		assert.Equal(t, "zero", serve(e, http.MethodGet, "/pick").Body.String())
		assert.Equal(t, "one", serve(e, http.MethodGet, "/pick?alt").Body.String())
	})

	t.Run("out-of-range index answers 500 and notifies once", func(t *testing.T) {
		e, errCount := newSplitEngine(func(*Context) int { return 2 })
		e.SetErrorText(CodeInternal, "split went wrong")

		w := serve(e, http.MethodGet, "/pick")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "split went wrong", w.Body.String())
		assert.Equal(t, 1, *errCount)
	})

	t.Run("negative index is out of range", func(t *testing.T) {
		e, errCount := newSplitEngine(func(*Context) int { return -1 })

		w := serve(e, http.MethodGet, "/pick")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, *errCount)
	})

	t.Run("empty candidate list is a registration error", func(t *testing.T) {
		e := New(WithDebug(false))
		r := e.HandleSplit(http.MethodGet, "/pick", func(*Context) int { return 0 }, nil)
		require.Error(t, r.Err())
		assert.ErrorIs(t, r.Err(), ErrNoCandidates)
	})

	t.Run("nil selector is a registration error", func(t *testing.T) {
		e := New(WithDebug(false))
		r := e.HandleSplit(http.MethodGet, "/pick", nil, []HandlerFunc{echoBody("x")})
		require.Error(t, r.Err())
		assert.ErrorIs(t, r.Err(), ErrNilSelector)
	})
}

func TestNotifications(t *testing.T) {
	t.Run("request and finished fire once per request", func(t *testing.T) {
		var received, finished int
		e := New(WithDebug(false))
		e.OnRequest(func(*Context) { received++ })
		e.OnFinished(func(*Context) { finished++ })
		e.GET("/x", echoBody("ok"))

		serve(e, http.MethodGet, "/x")
		serve(e, http.MethodGet, "/missing")

		assert.Equal(t, 2, received)
		assert.Equal(t, 2, finished)
	})

	t.Run("finished listener sees the final status", func(t *testing.T) {
		var status int
		e := New(WithDebug(false))
		e.OnFinished(func(c *Context) { status = c.StatusCode() })
		e.GET("/x", func(c *Context) { c.Status(http.StatusAccepted) })

		serve(e, http.MethodGet, "/x")
		assert.Equal(t, http.StatusAccepted, status)
	})

	t.Run("finished fires even when a middleware halts", func(t *testing.T) {
		finished := 0
		e := New(WithDebug(false))
		e.OnFinished(func(*Context) { finished++ })
		e.Use(func(c *Context) Flow {
			c.Status(http.StatusForbidden)
			return Halt
		})

		serve(e, http.MethodGet, "/x")
		assert.Equal(t, 1, finished)
	})
}

func TestParserMiddlewares(t *testing.T) {
	t.Run("query attached and coerced", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/q", func(c *Context) {
			page, _ := c.Query["page"].(int64)
			c.String(http.StatusOK, strconv.FormatInt(page, 10))
		}, ParseQuery())

		w := serve(e, http.MethodGet, "/q?page=3&verbose")
		assert.Equal(t, "3", w.Body.String())
	})

	t.Run("malformed query answers 400 and halts", func(t *testing.T) {
		handlerCalls := 0
		e := New(WithDebug(false))
		e.GET("/q", func(*Context) { handlerCalls++ }, ParseQuery())

		w := serve(e, http.MethodGet, "/q?=1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "malformed query string", w.Body.String())
		assert.Zero(t, handlerCalls)
	})

	t.Run("cookies attached and coerced", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/c", func(c *Context) {
			if admin, _ := c.Cookies["admin"].(bool); admin {
				c.String(http.StatusOK, "admin")
				return
			}
			c.String(http.StatusOK, "user")
		}, ParseCookies())

		w := httpRequestWithHeader(e, "/c", "Cookie", "session=abc; admin=true")
		assert.Equal(t, "admin", w.Body.String())
	})

	t.Run("malformed cookie answers 400", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/c", echoBody("ok"), ParseCookies())

		w := httpRequestWithHeader(e, "/c", "Cookie", "k=")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "malformed cookie header", w.Body.String())
	})

	t.Run("absent cookie header yields empty map", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/c", func(c *Context) {
			require.NotNil(t, c.Cookies)
			c.String(http.StatusOK, strconv.Itoa(len(c.Cookies)))
		}, ParseCookies())

		w := serve(e, http.MethodGet, "/c")
		assert.Equal(t, "0", w.Body.String())
	})
}
