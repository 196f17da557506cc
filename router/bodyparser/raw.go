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

	"github.com/rivaas-dev/webway/router"
)

// Raw returns middleware that reads the request body verbatim into
// Request.Body as []byte, subject only to the size limit — no
// content-type matching is applied unless WithType is given, since "raw"
// is meant as the universal fallback parser.
func Raw(opts ...Option) router.HandlerFunc {
	cfg := buildConfig(opts)

	return func(req *router.Request, res *router.Response, next router.NextFunc) {
		if cfg.contentType != "" {
			ct := req.Get("Content-Type")
			if ct == "" || !matchesContentType(ct, cfg.contentType) {
				next(nil)
				return
			}
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

		req.SetBody(raw)
		next(nil)
	}
}
