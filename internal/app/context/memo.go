package context

import "context"

// GetOrFetch returns the value memoized under key, running fetch once when
// there is none. Concurrent callers for the same key share one fetch.
// Failures are handed to every waiting caller but not memoized.
func (rc *RequestContext) GetOrFetch(
	ctx context.Context,
	key string,
	fetch func(ctx context.Context) (any, error),
) (any, error) {
	if v, ok := rc.memo.Load(key); ok {
		return v, nil
	}

	v, err, _ := rc.flight.Do(key, func() (any, error) {
		if v, ok := rc.memo.Load(key); ok {
			return v, nil
		}

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		rc.memo.Store(key, v)

		return v, nil
	})

	return v, err
}

// Fetch is the typed form of GetOrFetch. Without a RequestContext in ctx it
// simply calls fetch.
func Fetch[T any](ctx context.Context, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	rc := FromContext(ctx)
	if rc == nil {
		return fetch(ctx)
	}

	v, err := rc.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return v.(T), nil //nolint:forcetypeassert // only Fetch[T] stores under a key it reads back
}
