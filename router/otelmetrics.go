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
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelMetricsObservability is an ObservabilityRecorder that records request
// count and duration as OpenTelemetry metric instruments, exported through
// the OTel Prometheus bridge (go.opentelemetry.io/otel/exporters/prometheus)
// rather than driving a prometheus.CounterVec/HistogramVec directly, as
// PrometheusObservability does. Grounded on the teacher's
// router/metrics.go / router/metrics_providers.go Prometheus-provider path
// (initPrometheusProvider's exporter-plus-meter-provider wiring), trimmed to
// the request-count/duration pair the observability surface needs.
type OTelMetricsObservability struct {
	provider        *sdkmetric.MeterProvider
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewOTelMetricsObservability builds an OTelMetricsObservability whose
// instruments are collected into reg (pass promclient.NewRegistry() for an
// isolated registry you serve yourself via promhttp.HandlerFor, or
// promclient.DefaultRegisterer to join the global one).
func NewOTelMetricsObservability(reg promclient.Registerer) (*OTelMetricsObservability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("webway: build otel prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("github.com/rivaas-dev/webway/router")

	requestCount, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests handled, labeled by method, route, and status class."),
	)
	if err != nil {
		return nil, fmt.Errorf("webway: create request count instrument: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds, labeled by method and route."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("webway: create request duration instrument: %w", err)
	}

	return &OTelMetricsObservability{
		provider:        provider,
		requestCount:    requestCount,
		requestDuration: requestDuration,
	}, nil
}

// RecordRequest implements ObservabilityRecorder.
func (o *OTelMetricsObservability) RecordRequest(method, routePattern string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", routePattern),
		attribute.String("http.status_class", statusLabelFor(status)),
	)
	ctx := context.Background()
	o.requestCount.Add(ctx, 1, attrs)
	o.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// Shutdown flushes pending metrics and stops the underlying meter provider.
// Call it during application shutdown if the process exits without scraping
// one final time.
func (o *OTelMetricsObservability) Shutdown(ctx context.Context) error {
	return o.provider.Shutdown(ctx)
}
