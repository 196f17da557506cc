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
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Response wraps http.ResponseWriter with the fluent helper methods and
// the terminal-once guarantee spec.md §3 requires: once a response has
// been sent, further writes are no-ops rather than panics, mirroring the
// source ecosystem's tolerant double-send behavior while still letting
// callers detect it via Written.
type Response struct {
	w      http.ResponseWriter
	header http.Header // mirror of w.Header(), readable before WriteHeader

	status  int
	written bool
	size    int

	app *Application
	req *Request
}

func newResponse(w http.ResponseWriter, app *Application) *Response {
	return &Response{w: w, header: w.Header(), app: app}
}

// Written reports whether a status line has already been written.
func (res *Response) Written() bool { return res.written }

// StatusCode returns the status code set so far (0 if none yet — an
// eventual Send/End will default it to 200).
func (res *Response) StatusCode() int { return res.status }

// Status sets the HTTP status code for the eventual response without
// writing it yet, returning the Response for chaining.
func (res *Response) Status(code int) *Response {
	res.status = code
	return res
}

// Header returns the header map that will be sent with the response. It
// is writable until the response is sent.
func (res *Response) Header() http.Header { return res.header }

// Set sets a response header, sanitizing the value against CR/LF
// injection the way the source ecosystem's header setter does.
func (res *Response) Set(key, value string) *Response {
	res.header.Set(key, sanitizeHeaderValue(value))
	return res
}

// AppendHeader adds value as an additional header line, useful for
// multi-value headers like Set-Cookie or Link. Headers such as Set-Cookie
// must appear as separate lines rather than a single comma-joined value
// (RFC 6265 §4.1.1), so this adds rather than folds.
func (res *Response) AppendHeader(key, value string) *Response {
	res.header.Add(key, sanitizeHeaderValue(value))
	return res
}

func sanitizeHeaderValue(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}

// ContentType sets the Content-Type header, accepting either a short name
// ("json"), a file extension (".json"), or a full MIME type.
func (res *Response) ContentType(value string) *Response {
	if strings.Contains(value, "/") {
		return res.Set("Content-Type", value)
	}
	if full, ok := mimeShortNames[strings.TrimPrefix(value, ".")]; ok {
		return res.Set("Content-Type", full)
	}
	ext := value
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return res.Set("Content-Type", mt)
	}
	return res.Set("Content-Type", "application/octet-stream")
}

// ETag sets the response's ETag header, used by Request.Fresh/Stale.
func (res *Response) ETag(value string) *Response {
	return res.Set("ETag", value)
}

// LastModified sets the response's Last-Modified header (already
// RFC 1123-formatted by the caller), used by Request.Fresh/Stale.
func (res *Response) LastModified(httpDate string) *Response {
	return res.Set("Last-Modified", httpDate)
}

// Location sets the Location header, typically followed by Status(3xx).
func (res *Response) Location(url string) *Response {
	return res.Set("Location", url)
}

// Redirect sends a redirect response with the given status code (defaults
// to 302 if code is 0) and Location header.
func (res *Response) Redirect(code int, url string) {
	if code == 0 {
		code = http.StatusFound
	}
	res.Location(url)
	res.Send(code, nil)
}

func (res *Response) writeHeader(code int) {
	if res.written {
		return
	}
	if code == 0 {
		code = res.status
	}
	if code == 0 {
		code = http.StatusOK
	}
	res.status = code
	res.written = true
	res.w.WriteHeader(code)
}

// stripsBody reports whether the response for this method/status must not
// carry a body. HEAD, 204, and 304 all strip the body (spec.md §9 Open
// Question, resolved in SPEC_FULL.md §20).
func (res *Response) stripsBody(code int) bool {
	if res.req != nil && res.req.Method() == http.MethodHead {
		return true
	}
	return code == http.StatusNoContent || code == http.StatusNotModified
}

// Send writes code as the status and body as the response body verbatim.
// If the response must not carry a body (see stripsBody), body is
// discarded but Content-Length is still computed correctly by the
// standard library's chunked/identity framing.
func (res *Response) Send(code int, body []byte) {
	if res.written {
		return
	}
	if code == 0 {
		code = res.status
	}
	if code == 0 {
		code = http.StatusOK
	}
	if res.stripsBody(code) {
		body = nil
	}
	res.writeHeader(code)
	if len(body) > 0 {
		n, _ := res.w.Write(body)
		res.size += n
	}
}

// End finalizes the response with no body, using the status set via
// Status (or 200 if none was set).
func (res *Response) End() {
	res.Send(res.status, nil)
}

// String sends body as a text/plain response.
func (res *Response) String(code int, body string) {
	if res.header.Get("Content-Type") == "" {
		res.ContentType("text/plain; charset=utf-8")
	}
	res.Send(code, []byte(body))
}

// Stringf formats according to format and sends the result as text/plain.
func (res *Response) Stringf(code int, format string, args ...any) {
	res.String(code, fmt.Sprintf(format, args...))
}

// HTML sends body as a text/html response.
func (res *Response) HTML(code int, body string) {
	res.ContentType("text/html; charset=utf-8")
	res.Send(code, []byte(body))
}

// JSON marshals v and sends it as an application/json response, honoring
// the Application's "json spaces" and "json escape" settings.
func (res *Response) JSON(code int, v any) error {
	res.ContentType("application/json; charset=utf-8")
	spaces := 0
	escape := false
	if res.app != nil {
		if n, ok := res.app.Get("json spaces"); ok {
			if i, ok := n.(int); ok {
				spaces = i
			}
		}
		if e, ok := res.app.Get("json escape"); ok {
			escape, _ = e.(bool)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(escape)
	if spaces > 0 {
		enc.SetIndent("", strings.Repeat(" ", spaces))
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("webway: marshal json response: %w", err)
	}
	res.Send(code, bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return nil
}

// YAML marshals v and sends it as an application/yaml response, using
// gopkg.in/yaml.v3 — the domain-stack counterpart to JSON for clients
// that negotiate a YAML representation.
func (res *Response) YAML(code int, v any) error {
	res.ContentType("application/yaml; charset=utf-8")
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("webway: marshal yaml response: %w", err)
	}
	res.Send(code, data)
	return nil
}

// NoContent sends an empty 204 response.
func (res *Response) NoContent() {
	res.Send(http.StatusNoContent, nil)
}

// SetCookie appends a Set-Cookie header built from http.Cookie's own
// encoding rules.
func (res *Response) SetCookie(c *http.Cookie) *Response {
	if v := c.String(); v != "" {
		res.AppendHeader("Set-Cookie", v)
	}
	return res
}

// ClearCookie appends a Set-Cookie header that expires the named cookie
// immediately.
func (res *Response) ClearCookie(name string, path string) *Response {
	return res.SetCookie(&http.Cookie{
		Name:   name,
		Value:  "",
		Path:   path,
		MaxAge: -1,
	})
}

// Vary appends field to the Vary header.
func (res *Response) Vary(field string) *Response {
	return res.AppendHeader("Vary", field)
}

// Attachment sets Content-Disposition to attachment, optionally with a
// filename.
func (res *Response) Attachment(filename string) *Response {
	if filename == "" {
		return res.Set("Content-Disposition", "attachment")
	}
	return res.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// ContentLength sets the Content-Length header explicitly (usually
// unnecessary: Send computes it via the standard library writer).
func (res *Response) ContentLength(n int) *Response {
	return res.Set("Content-Length", strconv.Itoa(n))
}
