package pipeline

import (
	"context"
	"errors"
	"time"

	"fleetops/internal/domain"
)

// Retry runs fn up to attempts times, retrying only transient persistence
// errors with linear backoff. Validation, not-found, and permanent
// persistence failures return immediately. The repository layer never
// retries on its own; this is the caller-level bounded retry.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
			}
		}

		err = fn()
		if err == nil {
			return nil
		}
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) || !pe.Transient {
			return err
		}
	}
	return err
}
