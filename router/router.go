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
	"fmt"
	"net/http"
	"sync"
)

// RouterOption configures a Router at construction time.
type RouterOption func(*Router)

// WithCaseSensitiveRouting makes path matching case-sensitive. Routing is
// case-insensitive by default, matching spec.md §4.3's "case sensitive
// routing" setting default.
func WithCaseSensitiveRouting(enabled bool) RouterOption {
	return func(r *Router) { r.caseSensitive = enabled }
}

// WithStrictRouting makes trailing slashes significant. Routing tolerates
// an optional trailing slash by default.
func WithStrictRouting(enabled bool) RouterOption {
	return func(r *Router) { r.strict = enabled }
}

// WithMergeParams makes a mounted sub-router inherit its parent's path
// parameters instead of seeing only its own. Off by default, matching
// spec.md §4.2.
func WithMergeParams(enabled bool) RouterOption {
	return func(r *Router) { r.mergeParams = enabled }
}

// Router holds an ordered stack of layers (middleware, routes, mounted
// sub-routers, and error handlers) and dispatches requests against them.
//
// Registration appends to the stack under a single RWMutex. Dispatch reads
// the stack and the param preprocessors without taking that lock, so it is
// safe for many requests at once only while no route is being registered;
// this favors read-path simplicity over the teacher's atomic-pointer
// route-tree swap technique.
type Router struct {
	mu    sync.RWMutex
	stack []*layer

	caseSensitive bool
	strict        bool
	mergeParams   bool

	params map[string]ParamHandlerFunc

	name string // diagnostic/introspection name, e.g. a mount prefix
}

// NewRouter builds a standalone Router, typically used as a sub-router
// passed to Use(path, sub) or Application.Mount.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{params: make(map[string]ParamHandlerFunc)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) patternOptions(end bool) patternOptions {
	return patternOptions{caseSensitive: r.caseSensitive, strict: r.strict, end: end}
}

func (r *Router) appendLayer(l *layer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stack = append(r.stack, l)
}

// Use registers middleware, optionally scoped to a path prefix, or mounts
// a sub-router. Accepted call shapes:
//
//	r.Use(handler1, handler2, ...)
//	r.Use("/api", handler1, handler2, ...)
//	r.Use("/api", subRouter)
//	r.Use(subRouter)
func (r *Router) Use(args ...any) *Router {
	path, handlers, sub, err := parseUseArgs(args)
	if err != nil {
		panic(err)
	}
	pattern, err := compilePattern(path, r.patternOptions(false))
	if err != nil {
		panic(err)
	}
	if sub != nil {
		r.appendLayer(newMountLayer(pattern, sub, path))
		return r
	}
	for _, h := range handlers {
		r.appendLayer(newMiddlewareLayer(pattern, h, path))
	}
	return r
}

func parseUseArgs(args []any) (path string, handlers []HandlerFunc, sub *Router, err error) {
	path = "/"
	start := 0
	if len(args) > 0 {
		if p, ok := args[0].(string); ok {
			path = p
			start = 1
		}
	}
	for _, a := range args[start:] {
		switch v := a.(type) {
		case HandlerFunc:
			handlers = append(handlers, v)
		case func(*Request, *Response, NextFunc):
			handlers = append(handlers, HandlerFunc(v))
		case *Router:
			if sub != nil {
				return "", nil, nil, fmt.Errorf("webway: Use accepts at most one sub-router")
			}
			sub = v
		default:
			return "", nil, nil, fmt.Errorf("webway: Use: unsupported argument type %T", a)
		}
	}
	if sub == nil && len(handlers) == 0 {
		return "", nil, nil, ErrHandlerRequired
	}
	return path, handlers, sub, nil
}

// UseError registers an error-handling layer scoped to path (default "/").
// Error layers only run while an error is propagating (see NextFunc).
func (r *Router) UseError(path string, h ErrorHandlerFunc) *Router {
	if path == "" {
		path = "/"
	}
	pattern, err := compilePattern(path, r.patternOptions(false))
	if err != nil {
		panic(err)
	}
	r.appendLayer(newErrorLayer(pattern, h, path))
	return r
}

// Param registers a preprocessor that runs once per request, before any
// route handler, whenever the named path parameter is present in a
// matched route.
func (r *Router) Param(name string, handler ParamHandlerFunc) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params[name] = handler
	return r
}

func (r *Router) method(method, path string, handlers ...HandlerFunc) *Router {
	if len(handlers) == 0 {
		panic(ErrHandlerRequired)
	}
	pattern, err := compilePattern(path, r.patternOptions(true))
	if err != nil {
		panic(err)
	}
	start := len(r.stack)
	for _, h := range handlers {
		r.appendLayer(newRouteLayer(pattern, method, h, path))
	}
	r.mu.Lock()
	end := len(r.stack)
	for i := start; i < end; i++ {
		r.stack[i].routeGroupEnd = end
	}
	r.mu.Unlock()
	return r
}

func (r *Router) Get(path string, handlers ...HandlerFunc) *Router {
	return r.method(http.MethodGet, path, handlers...)
}
func (r *Router) Post(path string, handlers ...HandlerFunc) *Router {
	return r.method(http.MethodPost, path, handlers...)
}
func (r *Router) Put(path string, handlers ...HandlerFunc) *Router {
	return r.method(http.MethodPut, path, handlers...)
}
func (r *Router) Delete(path string, handlers ...HandlerFunc) *Router {
	return r.method(http.MethodDelete, path, handlers...)
}
func (r *Router) Patch(path string, handlers ...HandlerFunc) *Router {
	return r.method(http.MethodPatch, path, handlers...)
}
func (r *Router) Head(path string, handlers ...HandlerFunc) *Router {
	return r.method(http.MethodHead, path, handlers...)
}
func (r *Router) Options(path string, handlers ...HandlerFunc) *Router {
	return r.method(http.MethodOptions, path, handlers...)
}

// All registers handlers for every HTTP method at path.
func (r *Router) All(path string, handlers ...HandlerFunc) *Router {
	return r.method("", path, handlers...)
}

// Route returns a builder for chaining multiple methods against one path,
// e.g. r.Route("/users/:id").Get(show).Put(update).Delete(destroy).
func (r *Router) Route(path string) *RouteBuilder {
	return &RouteBuilder{router: r, path: path}
}

// RouteBuilder chains method registrations against a single path.
type RouteBuilder struct {
	router *Router
	path   string
}

func (b *RouteBuilder) Get(handlers ...HandlerFunc) *RouteBuilder {
	b.router.Get(b.path, handlers...)
	return b
}
func (b *RouteBuilder) Post(handlers ...HandlerFunc) *RouteBuilder {
	b.router.Post(b.path, handlers...)
	return b
}
func (b *RouteBuilder) Put(handlers ...HandlerFunc) *RouteBuilder {
	b.router.Put(b.path, handlers...)
	return b
}
func (b *RouteBuilder) Delete(handlers ...HandlerFunc) *RouteBuilder {
	b.router.Delete(b.path, handlers...)
	return b
}
func (b *RouteBuilder) Patch(handlers ...HandlerFunc) *RouteBuilder {
	b.router.Patch(b.path, handlers...)
	return b
}
func (b *RouteBuilder) Head(handlers ...HandlerFunc) *RouteBuilder {
	b.router.Head(b.path, handlers...)
	return b
}
func (b *RouteBuilder) Options(handlers ...HandlerFunc) *RouteBuilder {
	b.router.Options(b.path, handlers...)
	return b
}
func (b *RouteBuilder) All(handlers ...HandlerFunc) *RouteBuilder {
	b.router.All(b.path, handlers...)
	return b
}

func methodMatches(layerMethod, reqMethod string) bool {
	if layerMethod == "" {
		return true
	}
	if layerMethod == http.MethodGet && reqMethod == http.MethodHead {
		return true
	}
	return layerMethod == reqMethod
}

// run walks r's stack starting at idx, with err as the currently
// propagating error (nil in the normal-dispatch case). It recurses through
// per-layer next closures, exactly mirroring the source ecosystem's
// continuation-passing dispatch loop. done is invoked once the stack is
// exhausted without a terminal write, or delegates into a mounted
// sub-router's own run call.
func (r *Router) run(req *Request, res *Response, idx int, err error, done func(error)) {
	for idx < len(r.stack) {
		if res.Written() {
			done(nil)
			return
		}

		l := r.stack[idx]
		idx++

		params, rest, ok := l.pattern.match(req.path)
		if !ok {
			continue
		}
		if l.kind == layerRoute && !methodMatches(l.method, req.Method()) {
			continue
		}
		if err != nil && l.kind != layerErrorHandler {
			continue
		}
		if err == nil && l.kind == layerErrorHandler {
			continue
		}

		if len(params) > 0 {
			req.setParams(params)
		}

		nextIdx := idx
		thisLayer := l
		next := func(nextErr error) {
			if errors.Is(nextErr, ErrSkipRoute) {
				nextErr = nil
				nextIdx = thisLayer.routeGroupEnd
				if nextIdx == 0 {
					nextIdx = idx
				}
			}
			r.run(req, res, nextIdx, nextErr, done)
		}

		if l.kind != layerRoute {
			// Any middleware or error-handling layer registered with a
			// path prefix (Use/UseError, end == false matching) strips
			// that prefix from req.path and accumulates it onto
			// req.baseUrl for the duration of the layer, restoring both
			// once the layer (or, for a mounted sub-router, its entire
			// dispatch) completes. This mirrors the source ecosystem's
			// req.path/req.baseUrl handling for app.use(path, fn) and is
			// not special to sub-router mounts.
			savedPath, savedBase := req.path, req.baseUrl
			mountPrefix := req.path[:len(req.path)-len(rest)]
			newPath := rest
			if newPath == "" {
				newPath = "/"
			}
			req.baseUrl = savedBase + mountPrefix
			req.path = newPath

			if l.subrouter != nil {
				// A mounted sub-router sees only its own captures by
				// default (spec.md §4.2 mergeParams): snapshot the
				// parent's params, clear them unless the sub-router opts
				// into inheriting them, and restore the snapshot once the
				// sub-router's entire dispatch (not just this layer)
				// completes.
				savedParams := req.params
				if !l.subrouter.mergeParams {
					req.params = nil
				}
				l.subrouter.run(req, res, 0, err, func(subErr error) {
					req.path, req.baseUrl = savedPath, savedBase
					req.params = savedParams
					next(subErr)
				})
				return
			}

			r.invokeLayer(req, res, l, err, func(nextErr error) {
				req.path, req.baseUrl = savedPath, savedBase
				next(nextErr)
			})
			return
		}

		r.invokeLayer(req, res, l, err, next)
		return
	}

	done(err)
}

// invokeLayer runs the param preprocessors applicable to l (if any),
// then l's own handler, recovering panics as next(err) per spec.md's
// "synchronous throw is treated as next(err)" rule.
func (r *Router) invokeLayer(req *Request, res *Response, l *layer, err error, next NextFunc) {
	chain := r.paramChain(req, l)

	final := func(callErr error) {
		defer func() {
			if rec := recover(); rec != nil {
				if recErr, ok := rec.(error); ok {
					next(recErr)
				} else {
					next(fmt.Errorf("webway: panic in handler: %v", rec))
				}
			}
		}()
		switch l.kind {
		case layerErrorHandler:
			l.handleErr(err, req, res, next)
		default:
			l.handle(req, res, next)
		}
	}

	if len(chain) == 0 {
		final(err)
		return
	}
	runParamChain(chain, 0, req, res, next, func() { final(err) })
}

type paramStep struct {
	name    string
	value   string
	handler ParamHandlerFunc
}

func (r *Router) paramChain(req *Request, l *layer) []paramStep {
	if l.kind != layerRoute || len(r.params) == 0 {
		return nil
	}
	// Parameter values whose preprocessor has already been scheduled on
	// this request, by name, so each name/value pair runs it only once.
	const ranKey = "webway.paramsRan"
	ran, _ := req.Locals()[ranKey].(map[string]string)
	var chain []paramStep
	for _, k := range l.pattern.keys {
		h, ok := r.params[k.name]
		if !ok {
			continue
		}
		value := req.Param(k.name)
		if value == "" {
			continue
		}
		if prev, seen := ran[k.name]; seen && prev == value {
			continue
		}
		if ran == nil {
			ran = make(map[string]string)
			req.Locals()[ranKey] = ran
		}
		ran[k.name] = value
		chain = append(chain, paramStep{name: k.name, value: value, handler: h})
	}
	return chain
}

func runParamChain(chain []paramStep, i int, req *Request, res *Response, outerNext NextFunc, done func()) {
	if i >= len(chain) {
		done()
		return
	}
	step := chain[i]
	next := func(err error) {
		if err != nil {
			outerNext(err)
			return
		}
		runParamChain(chain, i+1, req, res, outerNext, done)
	}
	step.handler(req, res, next, step.value, step.name)
}
