package telemetry

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// HeaderTraceID echoes the trace of a request back to the caller.
const HeaderTraceID = "X-Trace-ID"

// unmatchedRoute labels requests no route matched, keeping raw paths out of
// metric attributes.
const unmatchedRoute = "unmatched"

// httpInstruments records server-side request metrics. Interpretation
// streams are counted separately from plain JSON responses since their
// durations are not comparable.
type httpInstruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		inst httpInstruments
		err  error
	)

	if inst.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time to serve a request, stream included"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if inst.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Requests served by route and status"),
	); err != nil {
		return nil, err
	}

	if inst.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests in progress, open event streams included"),
	); err != nil {
		return nil, err
	}

	return &inst, nil
}

// Middleware returns the otelgin tracing middleware followed by a handler
// that records request metrics and sets X-Trace-ID.
//
//	engine.Use(telemetry.Middleware("tarot-service")...)
func Middleware(serviceName string) []gin.HandlerFunc {
	inst, err := newHTTPInstruments(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		inst.handle,
	}
}

func (m *httpInstruments) handle(c *gin.Context) {
	// Headers of a stream are flushed before c.Next returns.
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		c.Header(HeaderTraceID, sc.TraceID().String())
	}

	if m == nil {
		c.Next()
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	route := c.FullPath()
	if route == "" {
		route = unmatchedRoute
	}

	base := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
	}

	m.inFlight.Add(ctx, 1, metric.WithAttributes(base...))
	defer m.inFlight.Add(ctx, -1, metric.WithAttributes(base...))

	c.Next()

	attrs := metric.WithAttributes(append(base,
		attribute.Int("http.status_code", c.Writer.Status()),
		attribute.Bool("stream", isEventStream(c)),
	)...)
	m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	m.total.Add(ctx, 1, attrs)
}

func isEventStream(c *gin.Context) bool {
	return strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream")
}
