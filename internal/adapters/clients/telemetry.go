package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jsamuelsen/tarot-service/internal/adapters/clients"

// instruments traces and counts the requests of one Client.
type instruments struct {
	service  string
	tracer   trace.Tracer
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newInstruments(service string) (*instruments, error) {
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of generation provider requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Generation provider requests by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &instruments{
		service:  service,
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
		total:    total,
	}, nil
}

func (i *instruments) startSpan(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, "HTTP "+req.Method+" "+i.service,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", i.service),
		),
	)
}

// complete closes out a request that produced a response. result is the
// status class, e.g. "2xx".
func (i *instruments) complete(ctx context.Context, span trace.Span, method string, status int, d time.Duration) {
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
	}

	i.record(ctx, method, status, d, fmt.Sprintf("%dxx", status/100))
}

// fail closes out a request that produced no response.
func (i *instruments) fail(ctx context.Context, span trace.Span, method string, d time.Duration, err error) {
	span.SetStatus(codes.Error, err.Error())
	i.record(ctx, method, 0, d, "error")
}

func (i *instruments) record(ctx context.Context, method string, status int, d time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", i.service),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	opt := metric.WithAttributes(attrs...)
	i.duration.Record(ctx, d.Seconds(), opt)
	i.total.Add(ctx, 1, opt)
}
