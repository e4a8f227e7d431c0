package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// DefaultRetryDelay is the base delay between upsert attempts.
const DefaultRetryDelay = 500 * time.Millisecond

// errInvalidAttempts is returned when fewer than one attempt is requested.
var errInvalidAttempts = errors.New("attempts must be positive")

// retryWithBackoff runs operation up to attempts times. The delay doubles
// after each failure. The last operation error is returned.
func retryWithBackoff(ctx context.Context, attempts int, baseDelay time.Duration, operation func() error) error {
	if attempts <= 0 {
		return errInvalidAttempts
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("succeeded on attempt %d", attempt)
			}
			return nil
		}

		if attempt == attempts {
			break
		}
		logger.Warn("attempt %d/%d failed: %v", attempt, attempts, lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
