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
	"log/slog"
)

// Option configures an Application at construction time.
type Option func(*Application)

// WithLogger attaches a structured logger. Requests without one attached
// fall back to a no-op logger (see Request.Logger).
//
// Example:
//
//	app := router.New(router.WithLogger(slog.Default()))
func WithLogger(l *slog.Logger) Option {
	return func(a *Application) { a.logger = l }
}

// WithDiagnostics attaches a DiagnosticHandler that receives informational
// events about edge cases the Application notices while serving requests.
//
// Example:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind)
//	})
//	app := router.New(router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(a *Application) { a.diagnostics = handler }
}

// WithObservability attaches an ObservabilityRecorder used to record
// per-request duration and outcome. See NewPrometheusObservability for the
// reference Prometheus-backed implementation.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(a *Application) { a.observability = recorder }
}

// WithTracing enables OpenTelemetry span creation for each request.
func WithTracing(enabled bool) Option {
	return func(a *Application) { a.tracingEnabled = enabled }
}

// WithTrustProxy configures the "trust proxy" setting. Accepted policy
// shapes are documented on compileTrustProxy / spec.md §4.6: bool, hop
// count, named ranges, CIDR list, or a TrustProxyFunc.
func WithTrustProxy(policy any) Option {
	return func(a *Application) {
		compiled, err := compileTrustProxy(policy)
		if err != nil {
			panic(err)
		}
		a.trustProxy = compiled
		a.settings.set("trust proxy", policy)
	}
}

// WithH2C enables serving HTTP/2 without TLS (h2c), using
// golang.org/x/net/http2/h2c, for Application.Serve / Application.Listen.
func WithH2C(enabled bool) Option {
	return func(a *Application) { a.h2c = enabled }
}

// WithJSONSpaces sets the "json spaces" setting used by Response.JSON.
// Defaults to 0 (compact) regardless of environment — see SPEC_FULL.md §20
// for why this does not vary by "env".
func WithJSONSpaces(n int) Option {
	return func(a *Application) { a.settings.set("json spaces", n) }
}

// WithEnv sets the "env" setting (e.g. "production", "development"). The
// value is stored for application code to read; nothing in this package
// reads it, so routing, JSON formatting and the final-fallback error
// responder behave the same in every environment, and that responder
// never includes a stack trace.
func WithEnv(env string) Option {
	return func(a *Application) { a.settings.set("env", env) }
}

// WithXPoweredBy toggles the X-Powered-By response header, on by default.
func WithXPoweredBy(enabled bool) Option {
	return func(a *Application) { a.settings.set("x-powered-by", enabled) }
}

// WithSubdomainOffset sets how many trailing labels of a hostname are
// considered the registrable domain (and thus excluded) by
// Request.Subdomains. Defaults to 2.
func WithSubdomainOffset(n int) Option {
	return func(a *Application) { a.settings.set("subdomain offset", n) }
}

// WithAppCaseSensitiveRouting and WithAppStrictRouting apply the
// RouterOptions WithCaseSensitiveRouting and WithStrictRouting to the
// Application's root Router.
func WithAppCaseSensitiveRouting(enabled bool) Option {
	return func(a *Application) { a.Router.caseSensitive = enabled }
}

func WithAppStrictRouting(enabled bool) Option {
	return func(a *Application) { a.Router.strict = enabled }
}

// WithAppMergeParams applies the RouterOption WithMergeParams to the
// Application's root Router.
func WithAppMergeParams(enabled bool) Option {
	return func(a *Application) { a.Router.mergeParams = enabled }
}
