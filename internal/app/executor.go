package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
)

// Interpretations call the generator and then persist, in five steps:
// validate, perform, verify, archive, respond. A reading is archived only
// after the generated text has been verified, so a failed or empty
// generation never leaves a row behind.

// ExecutionStep names one of the five steps.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the step an operation stopped at.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s step: %s", e.Step, e.Message)
	}

	return fmt.Sprintf("%s step: %s: %v", e.Step, e.Message, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// NewExecutionValidationError tags cause as a validate step failure.
func NewExecutionValidationError(message string, cause error) error {
	return &ExecutionError{Step: StepValidate, Message: message, Cause: cause}
}

// NewPerformError tags cause as a perform step failure.
func NewPerformError(message string, cause error) error {
	return &ExecutionError{Step: StepPerform, Message: message, Cause: cause}
}

// NewVerifyError tags cause as a verify step failure.
func NewVerifyError(message string, cause error) error {
	return &ExecutionError{Step: StepVerify, Message: message, Cause: cause}
}

// NewArchiveError tags cause as an archive step failure.
func NewArchiveError(message string, cause error) error {
	return &ExecutionError{Step: StepArchive, Message: message, Cause: cause}
}

// GetExecutionStep reports the step at which err was raised.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

// Executor runs Operations. Its logger is used when the context carries none.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor falling back to logger, or slog.Default().
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation supplies the five steps. Nil steps are skipped and yield the
// zero value of their output.
type Operation[I, P, V, O any] struct {
	// Name appears as the operation attribute in logs and span events.
	Name string

	// Validate rejects bad input before anything is generated.
	Validate func(ctx context.Context, input I) error
	// Perform calls the generator.
	Perform func(ctx context.Context, input I) (P, error)
	// Verify checks what Perform produced before anything is stored.
	Verify func(ctx context.Context, input I, performed P) (V, error)
	// Archive persists the verified result.
	Archive func(ctx context.Context, input I, verified V) error
	// Respond shapes the result for the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// stepRunner logs and traces the steps of one Execute call.
type stepRunner struct {
	logger *slog.Logger
	span   trace.Span
}

// run invokes fn as step, wrapping any error with message. Failures of the
// validate and respond steps are the caller's problem and log at warn.
func (r stepRunner) run(ctx context.Context, step ExecutionStep, message string, fn func() error) error {
	start := time.Now()
	err := fn()

	r.span.AddEvent("step "+string(step), trace.WithAttributes(
		attribute.Bool("failed", err != nil),
	))

	if err == nil {
		r.logger.DebugContext(ctx, "step done",
			slog.String("step", string(step)),
			slog.Duration("duration", time.Since(start)))

		return nil
	}

	level := slog.LevelError
	if step == StepValidate || step == StepRespond {
		level = slog.LevelWarn
	}

	r.logger.Log(ctx, level, "step failed",
		slog.String("step", string(step)),
		slog.Any("error", err))

	return &ExecutionError{Step: step, Message: message, Cause: err}
}

// Execute runs op over input step by step, stopping at the first failure.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		performed P
		verified  V
		result    O
		zero      O
	)

	logger := exec.logger
	if ctxLogger := logging.FromContext(ctx); ctxLogger != slog.Default() {
		logger = ctxLogger
	}

	r := stepRunner{
		logger: logger.With(slog.String("operation", op.Name)),
		span:   trace.SpanFromContext(ctx),
	}
	start := time.Now()

	if op.Validate != nil {
		if err := r.run(ctx, StepValidate, "input validation failed", func() error {
			return op.Validate(ctx, input)
		}); err != nil {
			return zero, err
		}
	}

	if op.Perform != nil {
		if err := r.run(ctx, StepPerform, "generation failed", func() (err error) {
			performed, err = op.Perform(ctx, input)
			return err
		}); err != nil {
			return zero, err
		}
	}

	if op.Verify != nil {
		if err := r.run(ctx, StepVerify, "verification failed", func() (err error) {
			verified, err = op.Verify(ctx, input, performed)
			return err
		}); err != nil {
			return zero, err
		}
	}

	if op.Archive != nil {
		if err := r.run(ctx, StepArchive, "recording reading", func() error {
			return op.Archive(ctx, input, verified)
		}); err != nil {
			return zero, err
		}
	}

	if op.Respond != nil {
		if err := r.run(ctx, StepRespond, "response formatting failed", func() (err error) {
			result, err = op.Respond(ctx, input, verified)
			return err
		}); err != nil {
			return zero, err
		}
	}

	r.logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}
