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

// Package cookie parses and signs cookies per SPEC_FULL.md §13: plain
// cookies, HMAC-signed cookies ("s:value.signature"), and JSON-serialized
// object cookies ("j:{...}").
package cookie

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Parse extracts every cookie from header (the raw "Cookie" request
// header value) into a name -> value map, leaving signed ("s:...") and
// JSON ("j:...") prefixes untouched — callers that expect those call
// ParseSigned or Unmarshal explicitly.
func Parse(header string) map[string]string {
	result := make(map[string]string)
	req := &http.Request{Header: http.Header{"Cookie": []string{header}}}
	for _, c := range req.Cookies() {
		result[c.Name] = c.Value
	}
	return result
}

// Unmarshal decodes a "j:"-prefixed JSON object cookie value into v. It
// returns false if value is not JSON-cookie-encoded.
func Unmarshal(value string, v any) (ok bool, err error) {
	if !strings.HasPrefix(value, "j:") {
		return false, nil
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(value, "j:")), v); err != nil {
		return true, err
	}
	return true, nil
}

// Marshal encodes v as a "j:"-prefixed JSON object cookie value.
func Marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return "j:" + string(data), nil
}
