package utils

import (
	"context"
	"fmt"
	"time"
)

// CallWithRetry calls fn until it succeeds, up to maxAttempts times, sleeping backoff between
// attempts. It gives up early when ctx ends. The last error is wrapped in the returned error.
func CallWithRetry[T any](ctx context.Context, fn func() (T, error), maxAttempts int, backoff time.Duration) (T, error) {
	var zero T
	var err error
	for i := 0; i < maxAttempts; i++ {
		var t T
		t, err = fn()
		if err == nil {
			return t, nil
		}
		if i == maxAttempts-1 {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return zero, fmt.Errorf("failed to call with retry: %w", ctx.Err())
		}
	}
	return zero, fmt.Errorf("failed to call with retry after %d attempts: %w", maxAttempts, err)
}
