package generation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy retries retryable gateway failures with exponential backoff
// and jitter: delay = BaseDelay * 2^attempt * [0.5, 1.0).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Backoff returns the delay before retry number attempt (zero-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// Do runs call until it succeeds, fails permanently, or MaxRetries retries
// have been spent. Cancellation during a backoff wait ends the loop with
// ErrTransientFailure.
func (p RetryPolicy) Do(
	ctx context.Context,
	logger *slog.Logger,
	call func(ctx context.Context) (string, error),
) (string, error) {
	maxRetries := max(p.MaxRetries, 0)

	for attempt := 0; ; attempt++ {
		text, err := call(ctx)
		if err == nil {
			if attempt > 0 {
				logger.InfoContext(ctx, "generative call succeeded after retry",
					slog.Int("attempt", attempt+1))
			}
			return text, nil
		}

		if !IsRetryable(err) || ctx.Err() != nil {
			return "", err
		}
		if attempt >= maxRetries {
			logger.WarnContext(ctx, "maximum retry attempts reached",
				slog.Int("max_retries", maxRetries),
				slog.String("error", err.Error()))
			return "", fmt.Errorf("after %d attempts: %w", attempt+1, err)
		}

		delay := p.Backoff(attempt)
		logger.InfoContext(ctx, "retrying generative call after delay",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
		}
	}
}
