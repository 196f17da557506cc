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
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// StatusCoder lets an error declare its own HTTP status, the Go analogue
// of the source ecosystem's conventional "status"/"statusCode" error
// fields (spec.md §6/§7). Errors that don't implement it default to 500.
type StatusCoder interface {
	error
	StatusCode() int
}

// TypeCoder lets an error declare a machine-readable problem type slug,
// used to build the ProblemDetail "type" URI.
type TypeCoder interface {
	error
	ProblemType() string
}

// DetailsProvider lets an error attach structured extension data to its
// ProblemDetail response (e.g. per-field validation errors).
type DetailsProvider interface {
	error
	ProblemDetails() any
}

// WithStatus wraps err so it reports status from StatusCode().
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.status }

func statusFromError(err error) int {
	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode()
	}
	return http.StatusInternalServerError
}

// ProblemDetail is an RFC 9457 "application/problem+json" body, grounded
// directly on the sibling errors module's RFC9457 formatter.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}

// MarshalJSON merges Extensions inline while protecting reserved field
// names, exactly as the source formatter does.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		if k != "type" && k != "title" && k != "status" && k != "detail" && k != "instance" {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// problemFormatter builds ProblemDetail bodies for the final error
// fallback (spec.md §4.10).
type problemFormatter struct {
	baseURL string
}

func newProblemFormatter() *problemFormatter {
	return &problemFormatter{}
}

func (f *problemFormatter) build(req *Request, status int, err error) ProblemDetail {
	p := ProblemDetail{
		Title:      http.StatusText(status),
		Status:     status,
		Detail:     err.Error(),
		Instance:   req.OriginalPath(),
		Extensions: make(map[string]any),
	}

	p.Type = "about:blank"
	var typed TypeCoder
	if errors.As(err, &typed) {
		slug := typed.ProblemType()
		if f.baseURL != "" {
			p.Type = f.baseURL + "/" + slug
		} else {
			p.Type = slug
		}
	}

	p.Extensions["error_id"] = generateErrorID()

	var detailed DetailsProvider
	if errors.As(err, &detailed) {
		p.Extensions["errors"] = detailed.ProblemDetails()
	}

	return p
}

func generateErrorID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("err-%d", time.Now().UnixNano())
	}
	return "err-" + hex.EncodeToString(buf)
}

// writeProblem renders the final error/not-found fallback, content
// negotiated between JSON (application/problem+json), HTML, and plain
// text. The body never includes a stack trace, whatever the "env"
// setting says; its detail is the error's own message (err.Error()).
func (app *Application) writeProblem(req *Request, res *Response, status int, err error) {
	if res.Written() {
		return
	}
	p := app.errorFormatter.build(req, status, err)

	switch req.Accepts("json", "html", "text") {
	case "html":
		res.HTML(status, fmt.Sprintf(
			"<!DOCTYPE html><html><head><title>%d %s</title></head><body><pre>%s</pre></body></html>",
			p.Status, p.Title, p.Detail))
	case "text":
		res.String(status, fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail))
	default:
		body, marshalErr := json.Marshal(p)
		if marshalErr != nil {
			res.String(http.StatusInternalServerError, "internal server error")
			return
		}
		res.ContentType("application/problem+json; charset=utf-8")
		res.Send(status, body)
	}
}
