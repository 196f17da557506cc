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

// layerKind distinguishes the three shapes of layer a Router can hold.
type layerKind uint8

const (
	layerMiddleware layerKind = iota
	layerRoute
	layerErrorHandler
)

// layer is one entry in a Router's ordered stack. Layers are immutable
// once constructed; registration methods (Use, Get, Post, ...) build a new
// layer and append it, they never mutate an existing one.
type layer struct {
	pattern *routePattern
	method  string // "" matches any method; only meaningful for layerRoute
	kind    layerKind

	handle    HandlerFunc
	handleErr ErrorHandlerFunc

	// subrouter is non-nil when this layer mounts a nested Router (see
	// Router.Use(path, sub) and Application.Mount).
	subrouter *Router

	// routeGroupEnd is the index, within the owning Router's stack, one
	// past the last layer that belongs to the same Route(path) builder
	// call as this one. It lets dispatch resolve next(ErrSkipRoute)
	// without a separate notion of "current route" threaded through the
	// closure.
	routeGroupEnd int

	// name is used for introspection/diagnostics only.
	name string
}

func newMiddlewareLayer(pattern *routePattern, h HandlerFunc, name string) *layer {
	return &layer{pattern: pattern, kind: layerMiddleware, handle: h, name: name}
}

func newRouteLayer(pattern *routePattern, method string, h HandlerFunc, name string) *layer {
	return &layer{pattern: pattern, kind: layerRoute, method: method, handle: h, name: name}
}

func newErrorLayer(pattern *routePattern, h ErrorHandlerFunc, name string) *layer {
	return &layer{pattern: pattern, kind: layerErrorHandler, handleErr: h, name: name}
}

func newMountLayer(pattern *routePattern, sub *Router, name string) *layer {
	return &layer{pattern: pattern, kind: layerMiddleware, subrouter: sub, name: name}
}
