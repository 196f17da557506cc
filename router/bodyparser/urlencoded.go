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
	"net/url"
	"strings"

	"github.com/rivaas-dev/webway/router"
)

// URLEncoded returns middleware that parses an
// "application/x-www-form-urlencoded" body into Request.Body as
// map[string]any. In simple mode (WithExtended(false)) values are flat
// strings; in extended mode (the default) bracketed keys like "a[b]=1"
// build nested maps, matching the two parsing modes spec.md §4.7
// describes.
func URLEncoded(opts ...Option) router.HandlerFunc {
	cfg := buildConfig(opts)
	want := cfg.contentType
	if want == "" {
		want = "application/x-www-form-urlencoded"
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

		values, err := url.ParseQuery(string(raw))
		if err != nil {
			next(newParseError(TypeParseFailed, http.StatusBadRequest, err, "bodyparser: invalid urlencoded body: %v", err))
			return
		}

		const maxParams = 1000
		if len(values) > maxParams {
			next(newParseError(TypeTooManyParams, http.StatusBadRequest, nil,
				"bodyparser: request contains more than %d parameters", maxParams))
			return
		}

		var result map[string]any
		if cfg.extended {
			result = parseExtended(values)
		} else {
			result = make(map[string]any, len(values))
			for k, v := range values {
				if len(v) > 0 {
					result[k] = v[len(v)-1]
				}
			}
		}

		req.SetBody(result)
		next(nil)
	}
}

// parseExtended expands bracketed keys ("a[b][c]=x") into nested maps, in
// the style of the source ecosystem's "extended" urlencoded mode. Every
// bracket segment becomes a map key ("[0]" is the key "0", "[]" the key
// ""); no slices are built, and a repeated key keeps only its last value.
func parseExtended(values url.Values) map[string]any {
	root := make(map[string]any)
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[len(vals)-1]
		segments := splitBracketed(key)
		assignNested(root, segments, value)
	}
	return root
}

func splitBracketed(key string) []string {
	var segments []string
	first := strings.IndexByte(key, '[')
	if first < 0 {
		return []string{key}
	}
	segments = append(segments, key[:first])
	rest := key[first:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			break
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return segments
}

func assignNested(root map[string]any, segments []string, value string) {
	cur := root
	for i, seg := range segments {
		last := i == len(segments)-1
		if last {
			cur[seg] = value
			return
		}
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
}
