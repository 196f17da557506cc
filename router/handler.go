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

// NextFunc resumes dispatch at the layer following the one currently
// executing. Calling next(nil) continues normal dispatch; calling
// next(err) with a non-nil err switches the stack into error-handling
// mode, skipping every remaining normal layer until an error-handling
// layer (registered with UseError) is found.
//
// Calling next(ErrSkipRoute) skips the rest of the current route's own
// handler chain without entering error mode, moving on to the next layer
// that matches the path (the "next('route')" behavior of the source
// ecosystem).
type NextFunc func(err error)

// HandlerFunc is an ordinary middleware or route handler.
//
// A handler completes a layer by doing exactly one of:
//   - writing to the Response and returning without calling next
//   - calling next(nil) to continue to the next layer
//   - calling next(err) to jump into error-handling dispatch
//   - panicking, which is recovered and treated as next(err)
type HandlerFunc func(req *Request, res *Response, next NextFunc)

// ErrorHandlerFunc is a handler registered to run only while an error is
// being propagated. Its distinct signature (taking err as an explicit
// first argument) is what the source ecosystem expresses through dynamic
// arity inspection on an untyped callback; Go's type system gives the same
// guarantee statically (see SPEC_FULL.md §6).
type ErrorHandlerFunc func(err error, req *Request, res *Response, next NextFunc)

// ParamHandlerFunc preprocesses a named path parameter before any route
// handler on the matching layer runs. It is registered with Router.Param.
type ParamHandlerFunc func(req *Request, res *Response, next NextFunc, value string, name string)
