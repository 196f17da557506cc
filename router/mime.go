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

import "strings"

// mimeShortNames maps the short names the source ecosystem accepts in
// Is/Accepts calls ("json", "html", ...) to their full MIME type.
var mimeShortNames = map[string]string{
	"json":       "application/json",
	"html":       "text/html",
	"text":       "text/plain",
	"xml":        "application/xml",
	"form":       "application/x-www-form-urlencoded",
	"urlencoded": "application/x-www-form-urlencoded",
	"multipart":  "multipart/form-data",
	"css":        "text/css",
	"javascript": "application/javascript",
}

// expandMIMEShortName resolves typ to a full MIME type (or pattern) if it
// is one of the recognized short names; otherwise it returns typ unchanged
// (it may already be a full type or a wildcard pattern like "image/*").
func expandMIMEShortName(typ string) string {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if full, ok := mimeShortNames[typ]; ok {
		return full
	}
	return typ
}

// mimeMatches reports whether candidate (a concrete "type/subtype") matches
// pattern, which may itself be concrete, "*/*", or "type/*".
func mimeMatches(candidate, pattern string) bool {
	if pattern == "*/*" || pattern == "*" {
		return true
	}
	candidate = strings.ToLower(candidate)
	pattern = strings.ToLower(pattern)
	if pattern == candidate {
		return true
	}
	cType, cSub, ok1 := splitMIME(candidate)
	pType, pSub, ok2 := splitMIME(pattern)
	if !ok1 || !ok2 {
		return false
	}
	if pType != "*" && pType != cType {
		return false
	}
	if pSub != "*" && pSub != cSub {
		return false
	}
	return true
}

func splitMIME(s string) (typ, sub string, ok bool) {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
