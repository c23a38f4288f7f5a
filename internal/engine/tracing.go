package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// tracing wraps one HTTP attempt in a span carrying the template name,
// status code, and latency, plus an OTel counter mirroring totalRequests.
// No exporter is configured by default — tracer/meter providers are the
// SDK's no-op implementations — so this stays a pure instrumentation seam
// rather than a long-term time-series store, consistent with that non-goal.
type tracing struct {
	tracer        trace.Tracer
	requestCounter metric.Int64Counter
}

func newTracing() *tracing {
	tracer := otel.GetTracerProvider().Tracer("loadgen/engine")
	meter := otel.GetMeterProvider().Meter("loadgen/engine")
	counter, _ := meter.Int64Counter("loadgen.requests.total")
	return &tracing{tracer: tracer, requestCounter: counter}
}

// StartRequestSpan opens a span for one HTTP attempt; call End on the
// returned function once the outcome is known.
func (t *tracing) StartRequestSpan(ctx context.Context, templateName string) (context.Context, func(statusCode int, latencyMs int64)) {
	ctx, span := t.tracer.Start(ctx, "loadgen.request")
	span.SetAttributes(attribute.String("loadgen.template", templateName))
	return ctx, func(statusCode int, latencyMs int64) {
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.Int64("loadgen.latency_ms", latencyMs),
		)
		span.End()
		if t.requestCounter != nil {
			t.requestCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("loadgen.template", templateName)))
		}
	}
}
