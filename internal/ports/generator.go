package ports

import "context"

// StreamChunk is one delta of a streamed generation. A chunk with a non-nil
// Err is always the last value sent before the channel closes.
type StreamChunk struct {
	Text string
	Err  error
}

// Generator produces interpretation text from a prompt.
//
// Implementations must map provider failures to domain errors:
// domain.ErrQuotaExhausted for billing or rate-limit denials,
// domain.ErrUpstream for other provider failures, and
// domain.ErrUnavailable when the provider cannot be reached.
// Implementations do not retry.
type Generator interface {
	// Generate blocks until the full reply is available.
	Generate(ctx context.Context, prompt string) (string, error)

	// Stream starts a generation and returns a channel of deltas. The channel
	// is closed when the reply completes, fails, or ctx is cancelled.
	// Errors that occur before any bytes are exchanged are returned directly.
	Stream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}
