// Package context provides request-scoped state for the application layer.
//
// # Memoization
//
// Lookups repeated within one request (for example the spread of a reading)
// are fetched once:
//
//	spread, err := context.Fetch(ctx, "spread:2", func(ctx context.Context) (*domain.SpreadType, error) {
//	    return spreads.Get(ctx, 2)
//	})
//
// # Staged writes
//
// Writes that must only happen once a request succeeds are staged and
// committed at the end; a failed request discards them:
//
//	rc.AddAction(recordReading)
//	if streamFailed {
//	    rc.Discard()
//	} else if err := rc.Commit(ctx); err != nil {
//	    // executed actions were rolled back
//	}
package context
