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
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rivaas-dev/webway/router"
)

// JSON returns middleware that parses a JSON request body into
// Request.Body as a generic any (map[string]any for objects, []any for
// arrays). It only runs for requests whose Content-Type matches "json"
// (or WithType's override), and is a no-op for any other request — the
// same "be a no-op unless the body looks like mine" contract every parser
// in this package follows.
func JSON(opts ...Option) router.HandlerFunc {
	cfg := buildConfig(opts)
	want := cfg.contentType
	if want == "" {
		want = "application/json"
	}

	return func(req *router.Request, res *router.Response, next router.NextFunc) {
		ct := req.Get("Content-Type")
		if ct == "" || !matchesContentType(ct, want) {
			next(nil)
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
		if len(raw) == 0 {
			next(nil)
			return
		}

		if cfg.strict {
			trimmed := bytes.TrimLeft(raw, " \t\r\n")
			if len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '[' {
				next(newParseError(TypeParseFailed, http.StatusBadRequest, nil,
					"bodyparser: strict mode only accepts a JSON object or array"))
				return
			}
		}

		dec := json.NewDecoder(bytes.NewReader(raw))

		var value any
		if err := dec.Decode(&value); err != nil {
			next(newParseError(TypeParseFailed, http.StatusBadRequest, err, "bodyparser: invalid JSON: %v", err))
			return
		}
		if dec.More() {
			next(newParseError(TypeParseFailed, http.StatusBadRequest, nil, "bodyparser: request body must contain a single JSON value"))
			return
		}

		req.SetBody(value)
		next(nil)
	}
}
