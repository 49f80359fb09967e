package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	reqctx "github.com/jsamuelsen/tarot-service/internal/app/context"
	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// StreamState is the lifecycle of one streamed interpretation.
type StreamState int

const (
	StreamOpen StreamState = iota
	StreamStreaming
	StreamCompleted
	StreamFailed
)

// String returns the state name used in logs.
func (s StreamState) String() string {
	switch s {
	case StreamOpen:
		return "open"
	case StreamStreaming:
		return "streaming"
	case StreamCompleted:
		return "completed"
	case StreamFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StreamSink receives the frames of a streamed interpretation. Exactly one
// of Done or Fail is called, and never after the client has gone away.
type StreamSink interface {
	Chunk(text string) error
	Done(readingID int64) error
	Fail(err error) error
}

// ErrClientGone reports that the stream consumer disconnected.
var ErrClientGone = errors.New("stream client disconnected")

// streamRelay forwards generator deltas to a sink and accumulates the text.
type streamRelay struct {
	sink   StreamSink
	logger *slog.Logger
	state  StreamState
	text   strings.Builder
	chunks int
}

func (r *streamRelay) transition(to StreamState) {
	r.logger.Log(context.Background(), logging.LevelTrace, "stream state changed",
		slog.String("from", r.state.String()),
		slog.String("to", to.String()),
	)
	r.state = to
}

// fail moves the relay to StreamFailed and reports err in-band unless the
// client is already gone.
func (r *streamRelay) fail(ctx context.Context, err error) error {
	r.transition(StreamFailed)

	if ctx.Err() != nil || errors.Is(err, ErrClientGone) {
		r.logger.InfoContext(ctx, "interpretation stream abandoned",
			slog.Int("chunks", r.chunks),
			slog.Any("error", err),
		)

		return err
	}

	r.logger.WarnContext(ctx, "interpretation stream failed",
		slog.Int("chunks", r.chunks),
		slog.Any("error", err),
	)

	if sinkErr := r.sink.Fail(err); sinkErr != nil {
		return errors.Join(err, fmt.Errorf("%w: %w", ErrClientGone, sinkErr))
	}

	return err
}

// pump relays chunks until the channel closes. The returned error is nil
// only when the generator finished cleanly.
func (r *streamRelay) pump(ctx context.Context, chunks <-chan ports.StreamChunk) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrClientGone, ctx.Err())
		case chunk, ok := <-chunks:
			if !ok {
				if ctx.Err() != nil {
					return fmt.Errorf("%w: %w", ErrClientGone, ctx.Err())
				}

				return nil
			}

			if chunk.Err != nil {
				return chunk.Err
			}

			if chunk.Text == "" {
				continue
			}

			if r.state == StreamOpen {
				r.transition(StreamStreaming)
			}

			r.text.WriteString(chunk.Text)
			r.chunks++

			if err := r.sink.Chunk(chunk.Text); err != nil {
				return fmt.Errorf("%w: %w", ErrClientGone, err)
			}
		}
	}
}

// recordReadingAction persists the streamed reading once the stream completes.
type recordReadingAction struct {
	readings *ReadingService
	req      domain.InterpretationRequest
	text     *strings.Builder
	saved    *domain.Reading
}

func (a *recordReadingAction) Execute(ctx context.Context) error {
	saved, err := a.readings.Record(ctx, readingFrom(a.req, a.text.String()))
	if err != nil {
		return err
	}

	a.saved = saved

	return nil
}

// Rollback is a no-op: the record is the only staged write.
func (a *recordReadingAction) Rollback(context.Context) error { return nil }

func (a *recordReadingAction) Description() string { return "record streamed reading" }

// Stream generates an interpretation incrementally, forwarding each delta to
// sink. The reading is recorded only after the generator finishes; a
// failure or a disconnected client leaves nothing behind.
//
// Callers answer request validation failures before opening the stream.
// Every later failure is reported through sink.Fail.
func (s *InterpretationService) Stream(ctx context.Context, req domain.InterpretationRequest, sink StreamSink) error {
	ctx, rc := reqctx.Ensure(ctx)
	ctx = logging.With(ctx, slog.String("operation", "interpret.stream"))

	relay := &streamRelay{
		sink:   sink,
		logger: logging.FromContext(ctx),
		state:  StreamOpen,
	}

	if err := ValidateRequest(&req); err != nil {
		return relay.fail(ctx, NewExecutionValidationError("input validation failed", err))
	}

	action := &recordReadingAction{readings: s.readings, req: req, text: &relay.text}
	if err := rc.AddAction(action); err != nil {
		return relay.fail(ctx, err)
	}

	prompt, err := s.buildPrompt(ctx, req)
	if err != nil {
		rc.Discard()

		return relay.fail(ctx, NewExecutionValidationError("assembling context", err))
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks, err := s.generator.Stream(streamCtx, prompt)
	if err != nil {
		rc.Discard()

		return relay.fail(ctx, NewPerformError("opening stream", err))
	}

	if err := relay.pump(streamCtx, chunks); err != nil {
		cancel()
		rc.Discard()

		return relay.fail(ctx, NewPerformError("streaming interpretation", err))
	}

	if strings.TrimSpace(relay.text.String()) == "" {
		rc.Discard()

		return relay.fail(ctx, NewVerifyError("checking interpretation",
			domain.NewUpstreamError("generator", 0, "empty interpretation")))
	}

	if err := rc.Commit(ctx); err != nil {
		return relay.fail(ctx, NewArchiveError("recording reading", err))
	}

	relay.transition(StreamCompleted)
	relay.logger.InfoContext(ctx, "interpretation stream completed",
		slog.Int64("reading_id", action.saved.ID),
		slog.Int("chunks", relay.chunks),
	)

	if err := sink.Done(action.saved.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrClientGone, err)
	}

	return nil
}
