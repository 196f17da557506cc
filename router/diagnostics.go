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

// DiagnosticEvent is an informational event describing an edge case or
// potential misconfiguration the Application noticed while serving a
// request. Diagnostics are optional: the Application behaves identically
// whether or not a handler is attached.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	DiagXFFSuspicious      DiagnosticKind = "xff_suspicious_chain"
	DiagHeaderInjection    DiagnosticKind = "header_injection_blocked"
	DiagH2CEnabled         DiagnosticKind = "h2c_enabled"
	DiagRouteRegistered    DiagnosticKind = "route_registered"
	DiagBodyTooLarge       DiagnosticKind = "body_too_large"
	DiagUnhandledError     DiagnosticKind = "unhandled_error"
	DiagSessionStoreFailed DiagnosticKind = "session_store_failed"
)

// DiagnosticHandler receives diagnostic events from an Application.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a plain function to a DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) { f(e) }

func (app *Application) emit(kind DiagnosticKind, message string, fields map[string]any) {
	if app == nil || app.diagnostics == nil {
		return
	}
	app.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: message, Fields: fields})
}
