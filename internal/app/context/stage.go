package context

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
)

// ErrAlreadyCommitted rejects staging or committing on a committed scope.
var ErrAlreadyCommitted = errors.New("request scope already committed")

// Action is a write held back until the request has succeeded, such as
// recording a streamed reading.
type Action interface {
	Execute(ctx context.Context) error
	// Rollback undoes a successful Execute when a later action fails.
	Rollback(ctx context.Context) error
	Description() string
}

func (rc *RequestContext) AddAction(action Action) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	rc.staged = append(rc.staged, action)

	return nil
}

// Commit runs the staged actions in order. When one fails, the ones already
// run are rolled back newest first and the scope stays uncommitted.
func (rc *RequestContext) Commit(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	for i, action := range rc.staged {
		if err := action.Execute(ctx); err != nil {
			rollback(ctx, rc.staged[:i])

			return fmt.Errorf("action %q failed: %w", action.Description(), err)
		}
	}

	rc.committed = true

	return nil
}

func rollback(ctx context.Context, done []Action) {
	for _, action := range slices.Backward(done) {
		if err := action.Rollback(ctx); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "rollback failed",
				slog.String("action", action.Description()),
				slog.Any("error", err),
			)
		}
	}
}

// Discard drops the staged actions without running them and returns how
// many there were. The scope stays open for new actions.
func (rc *RequestContext) Discard() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	n := len(rc.staged)
	rc.staged = nil

	return n
}

// Pending counts staged actions not yet committed.
func (rc *RequestContext) Pending() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return 0
	}

	return len(rc.staged)
}

// Actions returns a copy of the staged actions.
func (rc *RequestContext) Actions() []Action {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return slices.Clone(rc.staged)
}
