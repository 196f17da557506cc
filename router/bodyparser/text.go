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

package bodyparser

import (
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/rivaas-dev/webway/router"
)

// Text returns middleware that decodes a "text/plain" (or WithType's
// override) request body into
// Request.Body as a string, honoring the body's declared charset where
// the standard library can decode it (utf-8 only; non-UTF-8 charsets are
// reported as a parse failure rather than silently mojibaked).
func Text(opts ...Option) router.HandlerFunc {
	cfg := buildConfig(opts)
	want := cfg.contentType
	if want == "" {
		want = "text/plain"
	}

	return func(req *router.Request, res *router.Response, next router.NextFunc) {
		ct := req.Get("Content-Type")
		if ct == "" || !matchesContentType(ct, want) {
			next(nil)
			return
		}

		if cs := charsetOf(ct); cs != "utf-8" && cs != "us-ascii" {
			next(newParseError(TypeParseFailed, http.StatusUnsupportedMediaType, nil,
				"bodyparser: unsupported charset %q", cs))
			return
		}

		limited := &io.LimitedReader{R: req.Raw().Body, N: cfg.limit + 1}
		raw, err := io.ReadAll(limited)
		if err != nil {
			next(newParseError(TypeStreamError, http.StatusBadRequest, err, "bodyparser: failed reading request body: %v", err))
			return
		}
		if int64(len(raw)) > cfg.limit {
			next(newParseError(TypeTooLarge, http.StatusRequestEntityTooLarge, nil,
				"bodyparser: request body exceeds %d byte limit", cfg.limit))
			return
		}
		if !utf8.Valid(raw) {
			next(newParseError(TypeParseFailed, http.StatusBadRequest, nil, "bodyparser: body is not valid UTF-8"))
			return
		}

		req.SetBody(string(raw))
		next(nil)
	}
}
