package acl

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

const instrumentationName = "github.com/jsamuelsen/tarot-service/acl"

// Outcomes recorded on generation metrics.
const (
	outcomeOK          = "ok"
	outcomeQuota       = "quota_exhausted"
	outcomeUpstream    = "upstream_error"
	outcomeUnavailable = "unavailable"
	outcomeCanceled    = "canceled"
	outcomeError       = "error"
)

// InstrumentedGenerator wraps a Generator with a span per call and metrics
// for duration, outcome and streamed chunks.
type InstrumentedGenerator struct {
	next     ports.Generator
	provider string
	tracer   trace.Tracer

	duration metric.Float64Histogram
	calls    metric.Int64Counter
	chunks   metric.Int64Counter
}

var _ ports.Generator = (*InstrumentedGenerator)(nil)

// Instrument wraps next using the global tracer and meter providers.
func Instrument(next ports.Generator, provider string) *InstrumentedGenerator {
	meter := otel.Meter(instrumentationName)

	g := &InstrumentedGenerator{
		next:     next,
		provider: provider,
		tracer:   otel.Tracer(instrumentationName),
	}

	var err error

	g.duration, err = meter.Float64Histogram("tarot.generation.duration",
		metric.WithDescription("Generation duration in seconds, until the last chunk for streams"),
		metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}

	g.calls, err = meter.Int64Counter("tarot.generation.total",
		metric.WithDescription("Generation calls by mode and outcome"))
	if err != nil {
		otel.Handle(err)
	}

	g.chunks, err = meter.Int64Counter("tarot.generation.chunks",
		metric.WithDescription("Streamed text deltas relayed from the provider"))
	if err != nil {
		otel.Handle(err)
	}

	return g
}

// Generate implements ports.Generator.
func (g *InstrumentedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := g.start(ctx, "generate")
	start := time.Now()

	text, err := g.next.Generate(ctx, prompt)
	g.finish(ctx, span, "generate", start, err)

	return text, err
}

// Stream implements ports.Generator. The span ends when the channel closes.
func (g *InstrumentedGenerator) Stream(ctx context.Context, prompt string) (<-chan ports.StreamChunk, error) {
	spanCtx, span := g.start(ctx, "stream")
	start := time.Now()

	in, err := g.next.Stream(spanCtx, prompt)
	if err != nil {
		g.finish(spanCtx, span, "stream", start, err)
		return nil, err
	}

	out := make(chan ports.StreamChunk)

	go func() {
		defer close(out)

		var (
			count  int64
			outErr error
		)

		defer func() {
			if g.chunks != nil {
				g.chunks.Add(spanCtx, count, metric.WithAttributes(attribute.String("provider", g.provider)))
			}

			span.SetAttributes(attribute.Int64("generation.chunks", count))
			g.finish(spanCtx, span, "stream", start, outErr)
		}()

		for chunk := range in {
			if chunk.Err != nil {
				outErr = chunk.Err
			} else {
				count++
			}

			select {
			case out <- chunk:
			case <-ctx.Done():
				outErr = ctx.Err()
				drain(in)

				return
			}
		}

		if outErr == nil {
			outErr = ctx.Err()
		}
	}()

	return out, nil
}

func (g *InstrumentedGenerator) start(ctx context.Context, mode string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, "generation."+mode,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("generation.provider", g.provider)),
	)
}

func (g *InstrumentedGenerator) finish(ctx context.Context, span trace.Span, mode string, start time.Time, err error) {
	outcome := classifyOutcome(err)

	if err != nil && outcome != outcomeCanceled {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	span.SetAttributes(attribute.String("generation.outcome", outcome))
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("provider", g.provider),
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	)

	// Record on a context that outlives a cancelled request.
	ctx = context.WithoutCancel(ctx)

	if g.duration != nil {
		g.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}

	if g.calls != nil {
		g.calls.Add(ctx, 1, attrs)
	}
}

func classifyOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, context.Canceled):
		return outcomeCanceled
	case domain.IsQuotaExhausted(err):
		return outcomeQuota
	case domain.IsUpstream(err):
		return outcomeUpstream
	case domain.IsUnavailable(err):
		return outcomeUnavailable
	default:
		return outcomeError
	}
}

// drain discards the remaining chunks so the producer can exit.
func drain(ch <-chan ports.StreamChunk) {
	for range ch { //nolint:revive // empty block drains the channel
	}
}
