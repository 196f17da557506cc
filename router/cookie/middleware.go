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

package cookie

import "github.com/rivaas-dev/webway/router"

// localsCookies and localsSignedCookies are the Request.Locals() keys the
// Middleware populates, mirroring spec.md §4.8's req.cookies /
// req.signedCookies.
const (
	localsCookies       = "webway.cookies"
	localsSignedCookies = "webway.signedCookies"
)

// Middleware returns HandlerFunc that parses the incoming Cookie header
// and, when secret is non-empty, verifies any signed cookies against it.
// Parsed values are exposed via Cookies(req) and SignedCookies(req).
func Middleware(secret string) router.HandlerFunc {
	return func(req *router.Request, res *router.Response, next router.NextFunc) {
		header := req.Get("Cookie")
		if secret == "" {
			req.Locals()[localsCookies] = Parse(header)
			req.Locals()[localsSignedCookies] = map[string]string{}
		} else {
			plain, signed := ParseSigned(header, secret)
			req.Locals()[localsCookies] = plain
			req.Locals()[localsSignedCookies] = signed
		}
		next(nil)
	}
}

// Cookies returns the unsigned cookies parsed by Middleware for req, or an
// empty map if Middleware has not run.
func Cookies(req *router.Request) map[string]string {
	return lookup(req, localsCookies)
}

// SignedCookies returns the verified signed cookies parsed by Middleware
// for req, or an empty map if Middleware has not run or none verified.
func SignedCookies(req *router.Request) map[string]string {
	return lookup(req, localsSignedCookies)
}

func lookup(req *router.Request, key string) map[string]string {
	if v, ok := req.Locals()[key].(map[string]string); ok {
		return v
	}
	return map[string]string{}
}
