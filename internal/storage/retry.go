package storage

import (
	"context"
	"fmt"
	"time"
)

const (
	maxTxAttempts = 4
	txBackoff     = 20 * time.Millisecond
)

// RetryConflicts runs attempt until it succeeds or fails with an error isConflict does
// not accept. Conflicts back off exponentially; after the last attempt the conflict is
// reported as ErrTxConflict.
func RetryConflicts(ctx context.Context, isConflict func(error) bool, attempt func() error) error {
	backoff := txBackoff
	var lastErr error
	for n := 1; n <= maxTxAttempts; n++ {
		err := attempt()
		if err == nil || !isConflict(err) {
			return err
		}
		lastErr = err
		if n == maxTxAttempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %v", ErrTxConflict, lastErr)
}
