package provider

import (
	"context"
	"time"

	"github.com/pagelingo/pagelingo/internal/observability"
)

const (
	// DefaultMaxAttempts bounds how often a retryable operation runs.
	DefaultMaxAttempts = 3

	initialBackoff = 1 * time.Second
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Logger         *observability.Logger

	// Sleep overrides the backoff wait. Tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: initialBackoff,
	}
}

// WithRetry runs op up to cfg.MaxAttempts times. Fatal-classified errors
// abort immediately; retryable errors back off exponentially
// (InitialBackoff × 2^(attempt-1)) between attempts. The last observed
// error is returned once attempts are exhausted.
func WithRetry(ctx context.Context, cfg RetryConfig, op func(ctx context.Context) (string, error)) (string, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = initialBackoff
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if IsFatal(err) {
			return "", err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		backoff := cfg.InitialBackoff << (attempt - 1)
		if cfg.Logger != nil {
			cfg.Logger.Warn().
				Int("attempt", attempt).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("translation attempt failed, retrying")
		}
		if err := sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// sleepContext waits for d, honoring context cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
