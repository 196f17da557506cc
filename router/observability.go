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

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityRecorder receives per-request timing and outcome
// information. An Application works identically whether or not one is
// attached (see Application.WithObservability); this mirrors the source
// ecosystem's pattern of treating metrics/tracing as an optional concern
// layered on top of, never required by, the routing core.
type ObservabilityRecorder interface {
	RecordRequest(method, routePattern string, status int, duration time.Duration)
}

// noopObservability discards everything.
type noopObservability struct{}

func (noopObservability) RecordRequest(string, string, int, time.Duration) {}

// PrometheusObservability is the reference ObservabilityRecorder backed by
// github.com/prometheus/client_golang, grounded on the teacher's
// router/metrics_providers.go Prometheus wiring.
type PrometheusObservability struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusObservability builds a PrometheusObservability and
// registers its collectors with reg. Pass prometheus.DefaultRegisterer to
// use the global registry.
func NewPrometheusObservability(reg prometheus.Registerer, namespace string) *PrometheusObservability {
	p := &PrometheusObservability{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests handled, labeled by method, route, and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds, labeled by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(p.requests, p.duration)
	return p
}

func (p *PrometheusObservability) RecordRequest(method, routePattern string, status int, duration time.Duration) {
	statusLabel := statusLabelFor(status)
	p.requests.WithLabelValues(method, routePattern, statusLabel).Inc()
	p.duration.WithLabelValues(method, routePattern).Observe(duration.Seconds())
}

func statusLabelFor(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}

// tracer is the package-wide OpenTelemetry tracer used to create
// per-request spans when an Application has tracing enabled.
var tracer = otel.Tracer("github.com/rivaas-dev/webway/router")

func startSpan(req *Request, name string) (trace.Span, func(status int, err error)) {
	if req.app == nil || !req.app.tracingEnabled {
		return trace.SpanFromContext(req.Context()), func(int, error) {}
	}
	ctx, span := tracer.Start(req.Context(), name,
		trace.WithAttributes(
			attribute.String("http.method", req.Method()),
			attribute.String("http.path", req.OriginalPath()),
		),
	)
	req.raw = req.raw.WithContext(ctx)
	req.span = span
	end := func(status int, err error) {
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
	return span, end
}
