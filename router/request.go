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
	"context"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Request wraps the incoming *http.Request with the derived properties and
// helper methods the source ecosystem's request object provides: baseUrl,
// path, params, and content-negotiation helpers.
//
// A Request is created once per incoming HTTP request and is not reused
// across requests (see DESIGN.md "Deviations" for why it is not pooled).
type Request struct {
	raw *http.Request
	app *Application

	// path is the portion of the URL path still to be matched against the
	// active Router's stack. It shrinks as dispatch descends into mounted
	// sub-routers and is restored when dispatch returns to the parent
	// (spec.md §4.2 "mount strip").
	path string
	// baseUrl is the portion of the URL path already consumed by the
	// chain of mounts leading to the currently executing layer.
	baseUrl string
	// originalPath is the full path as received, unaffected by mounting.
	originalPath string

	params map[string]string

	locals map[string]any

	body any // populated by a body-parser middleware; nil until then

	trustedIP  string
	ipResolved bool

	logger *slog.Logger
	span   trace.Span

	// res is set by the dispatcher once the paired Response exists, so
	// that Request.Fresh/Stale can inspect response validators (ETag,
	// Last-Modified) the handler has already set.
	res *Response

	cachedAccept       string
	cachedAcceptSpecs  []acceptSpec
	cachedEncoding     string
	cachedEncodingSpec []acceptSpec
	cachedLanguage     string
	cachedLanguageSpec []acceptSpec
}

func newRequest(r *http.Request, app *Application) *Request {
	return &Request{
		raw:          r,
		app:          app,
		path:         r.URL.Path,
		originalPath: r.URL.Path,
		locals:       make(map[string]any),
	}
}

// Raw returns the underlying *http.Request. Handlers needing direct access
// to the standard library request (e.g. for streaming reads) use this;
// everything derived (method, header, IP) should prefer the typed
// accessors below, which apply trust-proxy and negotiation rules.
func (req *Request) Raw() *http.Request { return req.raw }

// Context returns the request's context.Context, exactly as
// (*http.Request).Context does.
func (req *Request) Context() context.Context { return req.raw.Context() }

// Method returns the HTTP method of the request.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the path currently being matched against the active
// Router's stack — it has had any enclosing mount prefixes stripped.
func (req *Request) Path() string { return req.path }

// OriginalPath returns the full request path, unaffected by mounting.
func (req *Request) OriginalPath() string { return req.originalPath }

// BaseURL returns the portion of the path consumed by the chain of mounts
// leading to the router currently dispatching this request.
func (req *Request) BaseURL() string { return req.baseUrl }

// Param returns the named path parameter, or "" if it was not present.
func (req *Request) Param(name string) string {
	if req.params == nil {
		return ""
	}
	return req.params[name]
}

// Params returns a copy of all path parameters captured so far.
func (req *Request) Params() map[string]string {
	out := make(map[string]string, len(req.params))
	for k, v := range req.params {
		out[k] = v
	}
	return out
}

func (req *Request) setParams(values []paramValue) {
	if req.params == nil {
		req.params = make(map[string]string, len(values))
	}
	for _, v := range values {
		req.params[v.Name] = v.Value
	}
}

// Query returns the first value of the named query string parameter.
func (req *Request) Query(name string) string {
	return req.raw.URL.Query().Get(name)
}

// QueryDefault returns the named query parameter, or def if absent.
func (req *Request) QueryDefault(name, def string) string {
	values := req.raw.URL.Query()
	if v, ok := values[name]; ok && len(v) > 0 {
		return v[0]
	}
	return def
}

// Get returns the value of the named request header. Name is matched
// case-insensitively, as HTTP header names are.
func (req *Request) Get(name string) string {
	if strings.EqualFold(name, "referer") || strings.EqualFold(name, "referrer") {
		return req.raw.Header.Get("Referer")
	}
	return req.raw.Header.Get(name)
}

// Is reports whether the request's Content-Type header matches typ, which
// may be a short name ("json", "html"), a full MIME type, or a type
// pattern ("application/*"). A request with no Content-Type header never
// matches.
func (req *Request) Is(typ string) bool {
	ct := req.raw.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	base, _, err := mime.ParseMediaType(ct)
	if err != nil {
		base = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	}
	want := expandMIMEShortName(typ)
	return mimeMatches(base, want)
}

// Secure reports whether the request was made over a connection considered
// encrypted, honoring the application's trust-proxy policy for the
// "X-Forwarded-Proto" header.
func (req *Request) Secure() bool {
	return req.Protocol() == "https"
}

// Protocol returns "http" or "https", honoring X-Forwarded-Proto when the
// immediate peer is trusted per the application's trust-proxy policy.
func (req *Request) Protocol() string {
	proto := "http"
	if req.raw.TLS != nil {
		proto = "https"
	}
	if req.app == nil || req.app.trustProxy == nil {
		return proto
	}
	if fwd := req.forwardedHeader("X-Forwarded-Proto"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if len(parts) > 0 {
			return strings.ToLower(strings.TrimSpace(parts[0]))
		}
	}
	return proto
}

// Hostname returns the request's host name, honoring X-Forwarded-Host when
// the immediate peer is trusted.
func (req *Request) Hostname() string {
	host := req.raw.Host
	if req.app != nil && req.app.trustProxy != nil {
		if fwd := req.forwardedHeader("X-Forwarded-Host"); fwd != "" {
			host = strings.Split(fwd, ",")[0]
			host = strings.TrimSpace(host)
		}
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// IP returns the client's IP address, honoring the application's
// trust-proxy policy and the X-Forwarded-For header chain.
func (req *Request) IP() string {
	if req.ipResolved {
		return req.trustedIP
	}
	req.trustedIP = resolveClientIP(req)
	req.ipResolved = true
	return req.trustedIP
}

// IPs returns the chain of client/proxy IPs from X-Forwarded-For, nearest
// client first, limited to the hops the trust-proxy policy allows.
func (req *Request) IPs() []string {
	if req.app == nil || req.app.trustProxy == nil {
		return nil
	}
	return trustedForwardedChain(req)
}

// XHR reports whether the request declares itself an XMLHttpRequest via
// the conventional X-Requested-With header.
func (req *Request) XHR() bool {
	return strings.EqualFold(req.raw.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// Subdomains returns the subdomains of the request's hostname, most
// significant first, honoring the application's "subdomain offset"
// setting (default 2, matching typical "sub.example.com" -> ["sub"]
// behavior since the last two labels are the registrable domain).
func (req *Request) Subdomains() []string {
	host := req.Hostname()
	if net.ParseIP(host) != nil {
		return nil
	}
	labels := strings.Split(host, ".")
	offset := 2
	if req.app != nil {
		if v, ok := req.app.Get("subdomain offset"); ok {
			if n, ok := v.(int); ok {
				offset = n
			}
		}
	}
	if len(labels) <= offset {
		return nil
	}
	cut := len(labels) - offset
	subs := make([]string, cut)
	for i := 0; i < cut; i++ {
		subs[i] = labels[cut-1-i]
	}
	return subs
}

// Body returns the value produced by a body-parser middleware, or nil if
// none has run. Callers type-assert to the concrete type the parser they
// mounted produces (e.g. map[string]any for bodyparser.JSON).
func (req *Request) Body() any { return req.body }

// SetBody stores the parsed request body. Body-parser middlewares call
// this; application code generally does not.
func (req *Request) SetBody(v any) { req.body = v }

// Locals returns the per-request key/value store shared across all
// layers handling this request.
func (req *Request) Locals() map[string]any {
	if req.locals == nil {
		req.locals = make(map[string]any)
	}
	return req.locals
}

// Logger returns the request-scoped structured logger, or a no-op logger
// if the Application was not configured with one (see the WithLogger option).
func (req *Request) Logger() *slog.Logger {
	if req.logger != nil {
		return req.logger
	}
	return noopLogger()
}

// Span returns the OpenTelemetry span associated with this request, or a
// non-recording span if tracing was not configured.
func (req *Request) Span() trace.Span {
	if req.span != nil {
		return req.span
	}
	return trace.SpanFromContext(req.Context())
}

func (req *Request) forwardedHeader(name string) string {
	if !req.app.trustProxy.trusts(req.peerIP(), 0) {
		return ""
	}
	return req.raw.Header.Get(name)
}

func (req *Request) peerIP() string {
	host, _, err := net.SplitHostPort(req.raw.RemoteAddr)
	if err != nil {
		return req.raw.RemoteAddr
	}
	return host
}

// Fresh reports whether the response, as built so far by the handler, is
// still fresh with respect to this request's conditional headers
// (If-None-Match / If-Modified-Since), per RFC 7232. It only returns true
// for safe, successful methods; a response that has set neither ETag nor
// Last-Modified is never considered fresh.
//
// This resolves the "fresh/stale" Open Question from spec.md §9: these
// semantics are implemented, not stubbed (see SPEC_FULL.md §20).
func (req *Request) Fresh() bool {
	if req.Method() != http.MethodGet && req.Method() != http.MethodHead {
		return false
	}
	if req.res == nil {
		return false
	}
	status := req.res.status
	if status == 0 {
		status = http.StatusOK
	}
	if status < 200 || status >= 300 {
		if status != http.StatusNotModified {
			return false
		}
	}

	etag := req.res.header.Get("ETag")
	lastModified := req.res.header.Get("Last-Modified")
	if etag == "" && lastModified == "" {
		return false
	}

	if inm := req.raw.Header.Get("If-None-Match"); inm != "" {
		if inm == "*" {
			return true
		}
		if etag == "" {
			return false
		}
		for _, candidate := range strings.Split(inm, ",") {
			candidate = strings.TrimSpace(candidate)
			candidate = strings.TrimPrefix(candidate, "W/")
			if candidate == strings.TrimPrefix(etag, "W/") {
				return true
			}
		}
		return false
	}

	if ims := req.raw.Header.Get("If-Modified-Since"); ims != "" && lastModified != "" {
		imsTime, err1 := http.ParseTime(ims)
		lmTime, err2 := http.ParseTime(lastModified)
		if err1 == nil && err2 == nil {
			return !lmTime.After(imsTime)
		}
	}

	return false
}

// Stale is the complement of Fresh.
func (req *Request) Stale() bool {
	return !req.Fresh()
}
