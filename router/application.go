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
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Application is the top-level entry point: a Router plus the settings
// bag, shared locals, and final-fallback behavior spec.md §4.3 describes.
// An *Application implements http.Handler and can be passed directly to
// http.ListenAndServe, or served via Listen/Serve for h2c support.
type Application struct {
	*Router

	settings *settings
	locals   sync.Map // key/value pairs shared across all requests

	trustProxy     *trustProxyPredicate
	logger         *slog.Logger
	diagnostics    DiagnosticHandler
	observability  ObservabilityRecorder
	tracingEnabled bool
	h2c            bool

	errorFormatter *problemFormatter
}

// New builds an Application, applying opts in order.
func New(opts ...Option) *Application {
	app := &Application{
		Router:         NewRouter(),
		settings:       newSettings(),
		observability:  noopObservability{},
		errorFormatter: newProblemFormatter(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// MustNew is New, panicking instead of deferring configuration errors —
// configuration errors from compileTrustProxy etc. already panic inline,
// so MustNew exists for symmetry with the rest of the pack's Must...
// constructor convention.
func MustNew(opts ...Option) *Application {
	return New(opts...)
}

// Set stores an application-wide setting.
func (app *Application) Set(key string, value any) *Application {
	app.settings.set(key, value)
	return app
}

// Get retrieves an application-wide setting when called with a key alone.
// Called with handlers, it treats key as a path and registers them as a
// GET route, exactly like Router.Get, and returns nil, false.
func (app *Application) Get(key string, handlers ...HandlerFunc) (any, bool) {
	if len(handlers) > 0 {
		app.Router.Get(key, handlers...)
		return nil, false
	}
	return app.settings.get(key)
}

// LocalsGet reads from the shared, process-lifetime key/value store available to
// every request (distinct from Request.Locals, which is per-request).
func (app *Application) LocalsGet(key string) (any, bool) {
	return app.locals.Load(key)
}

// LocalsSet stores a value in the Application-wide locals store.
func (app *Application) LocalsSet(key string, value any) {
	app.locals.Store(key, value)
}

// Mount attaches sub at path, stripping path from Request.Path and
// restoring it once dispatch returns to the parent, exactly as
// Router.Use(path, sub) does — Mount exists as the Application-level name
// spec.md §4.2 uses for this operation.
func (app *Application) Mount(path string, sub *Router) *Application {
	app.Router.Use(path, sub)
	return app
}

// ServeHTTP implements http.Handler, making *Application a drop-in
// net/http handler.
func (app *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := newRequest(r, app)
	res := newResponse(w, app)
	req.res = res
	res.req = req
	if app.logger != nil {
		req.logger = app.logger
	}

	if poweredBy, ok := app.Get("x-powered-by"); !ok || poweredBy == true {
		res.Set("X-Powered-By", "webway")
	}

	_, endSpan := startSpan(req, "webway.request")

	app.Router.run(req, res, 0, nil, func(err error) {
		if err != nil {
			app.handleFinalError(req, res, err)
		} else if !res.Written() {
			app.handleNotFound(req, res)
		}
		endSpan(res.StatusCode(), err)
		app.observability.RecordRequest(req.Method(), req.OriginalPath(), res.StatusCode(), time.Since(start))
	})
}

// handleNotFound implements the default 404 final fallback (spec.md §4.3).
func (app *Application) handleNotFound(req *Request, res *Response) {
	app.writeProblem(req, res, http.StatusNotFound, fmt.Errorf("cannot %s %s", req.Method(), req.OriginalPath()))
}

// handleFinalError implements the default final error fallback
// (spec.md §4.10 / §7): no error-handling layer consumed the error, so it
// reaches the end of the application's own stack.
func (app *Application) handleFinalError(req *Request, res *Response, err error) {
	app.emit(DiagUnhandledError, "error reached final fallback", map[string]any{"error": err.Error()})
	status := statusFromError(err)
	app.writeProblem(req, res, status, err)
}

// Listen starts serving HTTP on addr, using h2c (HTTP/2 without TLS) if
// WithH2C(true) was set — grounded on the teacher's Router.Serve/WithH2C.
func (app *Application) Listen(addr string) error {
	return app.Serve(addr)
}

// Serve is an alias of Listen kept for readers coming from either naming
// convention.
func (app *Application) Serve(addr string) error {
	var handler http.Handler = app
	if app.h2c {
		app.emit(DiagH2CEnabled, "serving HTTP/2 cleartext (h2c)", nil)
		handler = h2c.NewHandler(app, &http2.Server{})
	}
	server := &http.Server{Addr: addr, Handler: handler}
	return server.ListenAndServe()
}
