// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterParamExtractionAndMethodFilter(t *testing.T) {
	t.Parallel()

	app := New()
	app.Get("/users/:id", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, "get:"+req.Param("id"))
	})
	app.Post("/users/:id", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, "post:"+req.Param("id"))
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	assert.Equal(t, "get:42", w.Body.String())

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users/42", nil))
	assert.Equal(t, "post:42", w.Body.String())

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/42", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "no DELETE handler registered")
}

func TestRouterHeadFallsBackToGet(t *testing.T) {
	t.Parallel()

	app := New()
	app.Get("/ping", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String(), "HEAD must strip the body")
}

func TestRouterMiddlewareOrderAndNext(t *testing.T) {
	t.Parallel()

	var order []string
	app := New()
	app.Use(func(req *Request, res *Response, next NextFunc) {
		order = append(order, "first")
		next(nil)
	})
	app.Use(func(req *Request, res *Response, next NextFunc) {
		order = append(order, "second")
		next(nil)
	})
	app.Get("/", func(req *Request, res *Response, next NextFunc) {
		order = append(order, "handler")
		res.End()
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRouterNextErrorEntersErrorHandler(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	app := New()
	app.Get("/fail", func(req *Request, res *Response, next NextFunc) {
		next(boom)
	})
	var caught error
	app.UseError("/", func(err error, req *Request, res *Response, next NextFunc) {
		caught = err
		res.String(http.StatusBadGateway, "handled: "+err.Error())
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.ErrorIs(t, caught, boom)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "handled: boom", w.Body.String())
}

func TestRouterNextSkipRouteFallsThroughToNextRoute(t *testing.T) {
	t.Parallel()

	app := New()
	app.Get("/item/:id", func(req *Request, res *Response, next NextFunc) {
		if req.Param("id") == "special" {
			next(ErrSkipRoute)
			return
		}
		res.String(http.StatusOK, "generic:"+req.Param("id"))
	})
	app.Get("/item/special", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, "special handler")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/item/special", nil))
	assert.Equal(t, "special handler", w.Body.String())

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/item/42", nil))
	assert.Equal(t, "generic:42", w.Body.String())
}

func TestRouterNextSkipRouteSkipsRemainingHandlersInSameRoute(t *testing.T) {
	t.Parallel()

	var hit []string
	app := New()
	app.Get("/multi",
		func(req *Request, res *Response, next NextFunc) {
			hit = append(hit, "one")
			next(ErrSkipRoute)
		},
		func(req *Request, res *Response, next NextFunc) {
			hit = append(hit, "two")
			next(nil)
		},
	)
	app.Use(func(req *Request, res *Response, next NextFunc) {
		hit = append(hit, "fallback")
		res.End()
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/multi", nil))
	assert.Equal(t, []string{"one", "fallback"}, hit, "next('route') must skip 'two', the rest of its own route group")
}

func TestRouterMountStripsAndRestoresPath(t *testing.T) {
	t.Parallel()

	var seenPath, seenBase string
	api := NewRouter()
	api.Get("/widgets/:id", func(req *Request, res *Response, next NextFunc) {
		seenPath = req.Path()
		seenBase = req.BaseURL()
		res.String(http.StatusOK, req.Param("id"))
	})

	app := New()
	app.Mount("/api", api)
	app.Get("/api-status", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, "status:"+req.Path())
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/widgets/7", nil))
	assert.Equal(t, "7", w.Body.String())
	assert.Equal(t, "/widgets/7", seenPath, "sub-router sees its path with the mount prefix stripped")
	assert.Equal(t, "/api", seenBase)

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-status", nil))
	assert.Equal(t, "status:/api-status", w.Body.String(), "path must be restored for a sibling route after the mount")
}

func TestRouterParamPreprocessorRunsBeforeHandler(t *testing.T) {
	t.Parallel()

	var order []string
	app := New()
	app.Param("id", func(req *Request, res *Response, next NextFunc, value, name string) {
		order = append(order, "param:"+value)
		next(nil)
	})
	app.Get("/users/:id", func(req *Request, res *Response, next NextFunc) {
		order = append(order, "handler")
		res.End()
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/9", nil))
	assert.Equal(t, []string{"param:9", "handler"}, order)
}

func TestRouterPanicRecoveredAsNextError(t *testing.T) {
	t.Parallel()

	app := New()
	app.Get("/explode", func(req *Request, res *Response, next NextFunc) {
		panic("kaboom")
	})
	var handled bool
	app.UseError("/", func(err error, req *Request, res *Response, next NextFunc) {
		handled = true
		res.String(http.StatusInternalServerError, "recovered")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/explode", nil))
	assert.True(t, handled)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouterUnhandledErrorReachesFinalFallback(t *testing.T) {
	t.Parallel()

	app := New(WithTrustProxy(false))
	app.Get("/fail", func(req *Request, res *Response, next NextFunc) {
		next(WithStatus(errors.New("db down"), http.StatusServiceUnavailable))
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
}

func TestRouterNotFoundFallback(t *testing.T) {
	t.Parallel()

	app := New()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouteBuilderChaining(t *testing.T) {
	t.Parallel()

	app := New()
	app.Route("/widgets/:id").
		Get(func(req *Request, res *Response, next NextFunc) { res.String(http.StatusOK, "get") }).
		Put(func(req *Request, res *Response, next NextFunc) { res.String(http.StatusOK, "put") })

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widgets/1", nil))
	assert.Equal(t, "get", w.Body.String())

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/widgets/1", nil))
	assert.Equal(t, "put", w.Body.String())
}

func TestTrustProxyHopCount(t *testing.T) {
	t.Parallel()

	app := New(WithTrustProxy(1))
	app.Get("/ip", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, req.IP())
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.9")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, "10.0.0.9", w.Body.String(), "only one hop is trusted, so the nearest proxy-added entry wins")
}

func TestTrustProxyDisabledIgnoresForwardedFor(t *testing.T) {
	t.Parallel()

	app := New()
	app.Get("/ip", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, req.IP())
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "198.51.100.2:4242"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.2", w.Body.String())
}

func TestResponseFreshNotModified(t *testing.T) {
	t.Parallel()

	app := New()
	app.Get("/res", func(req *Request, res *Response, next NextFunc) {
		res.ETag(`"v1"`)
		if req.Fresh() {
			res.NoContent()
			return
		}
		res.String(http.StatusOK, "full body")
	})

	req := httptest.NewRequest(http.MethodGet, "/res", nil)
	req.Header.Set("If-None-Match", `"v1"`)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRouterMountIsolatesParamsByDefault(t *testing.T) {
	t.Parallel()

	var seenParams map[string]string
	sub := NewRouter()
	sub.Get("/posts/:postId", func(req *Request, res *Response, next NextFunc) {
		seenParams = req.Params()
		res.String(http.StatusOK, "ok")
	})

	app := New()
	app.Use("/users/:id", sub)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1/posts/2", nil))
	assert.Equal(t, map[string]string{"postId": "2"}, seenParams, "sub-router must not see the parent's captures by default")
}

func TestRouterMountMergesParamsWhenEnabled(t *testing.T) {
	t.Parallel()

	var seenParams map[string]string
	sub := NewRouter(WithMergeParams(true))
	sub.Get("/posts/:postId", func(req *Request, res *Response, next NextFunc) {
		seenParams = req.Params()
		res.String(http.StatusOK, "ok")
	})

	app := New()
	app.Use("/users/:id", sub)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1/posts/2", nil))
	assert.Equal(t, map[string]string{"id": "1", "postId": "2"}, seenParams, "sub-router opted into mergeParams must see the parent's captures too")
}

func TestRouterMountRestoresParamsForSiblingAfterReturn(t *testing.T) {
	t.Parallel()

	var seenParamsAfterMount map[string]string
	sub := NewRouter()
	sub.Get("/posts/:postId", func(req *Request, res *Response, next NextFunc) {
		next(nil)
	})

	app := New()
	app.Use("/users/:id", sub)
	app.Get("/users/:id/posts/:postId", func(req *Request, res *Response, next NextFunc) {
		seenParamsAfterMount = req.Params()
		res.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1/posts/2", nil))
	assert.Equal(t, map[string]string{"id": "1", "postId": "2"}, seenParamsAfterMount, "the parent's own params must be restored for a sibling layer once the mount returns")
}

func TestRouterPlainMiddlewareAtNonRootPathStripsAndRestoresPath(t *testing.T) {
	t.Parallel()

	var seenPath, seenBase string
	app := New()
	app.Use("/api", func(req *Request, res *Response, next NextFunc) {
		seenPath = req.Path()
		seenBase = req.BaseURL()
		next(nil)
	})
	app.Get("/api/widgets", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, "after:"+req.Path())
	})
	app.Get("/api-status", func(req *Request, res *Response, next NextFunc) {
		res.String(http.StatusOK, "status:"+req.Path())
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/widgets", nil))
	assert.Equal(t, "/widgets", seenPath, "plain middleware mounted at a non-root path must see the prefix stripped")
	assert.Equal(t, "/api", seenBase)
	assert.Equal(t, "after:/api/widgets", w.Body.String(), "path must be restored for a later layer in the same router once the middleware calls next")

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-status", nil))
	assert.Equal(t, "status:/api-status", w.Body.String(), "path must be restored for an unrelated route after the middleware returns")
}

func TestPatternMatchOmitsAbsentOptionalParam(t *testing.T) {
	t.Parallel()

	pattern, err := compilePattern("/files/:name?", patternOptions{end: true})
	require.NoError(t, err)

	params, _, ok := pattern.match("/files")
	require.True(t, ok)
	for _, p := range params {
		assert.NotEqual(t, "name", p.Name, "an omitted optional parameter must not appear in the captured params at all")
	}

	params, _, ok = pattern.match("/files/report")
	require.True(t, ok)
	require.Len(t, params, 1)
	assert.Equal(t, paramValue{Name: "name", Value: "report"}, params[0])
}

func TestRouterOptionalParamOmittedKeyAbsentFromRequestParams(t *testing.T) {
	t.Parallel()

	app := New()
	app.Get("/files/:name?", func(req *Request, res *Response, next NextFunc) {
		_, ok := req.Params()["name"]
		res.JSON(http.StatusOK, map[string]bool{"present": ok})
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files", nil))
	assert.JSONEq(t, `{"present":false}`, w.Body.String())

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/report", nil))
	assert.JSONEq(t, `{"present":true}`, w.Body.String())
}
